package services

import (
	"errors"
	"fmt"

	"inventory-dashboard-api/internal/storage"
)

// Error taxonomy. Every error returned by this package matches exactly one of
// these with errors.Is.
var (
	ErrNotFound          = storage.ErrNotFound
	ErrValidation        = errors.New("validation error")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrStorage           = errors.New("storage error")
)

// Validation failures
var (
	ErrMissingFields      = fmt.Errorf("%w: missing required fields", ErrValidation)
	ErrSameWarehouse      = fmt.Errorf("%w: cannot transfer to the same warehouse", ErrValidation)
	ErrInvalidQuantity    = fmt.Errorf("%w: quantity must be greater than 0", ErrValidation)
	ErrUnknownWarehouse   = fmt.Errorf("%w: destination warehouse does not exist", ErrValidation)
	ErrInvalidAlertStatus = fmt.Errorf("%w: alert status must be active, acknowledged or resolved", ErrValidation)
	ErrInvalidTransition  = fmt.Errorf("%w: transfer status transition not allowed", ErrValidation)
	ErrNegativeValue      = fmt.Errorf("%w: value must not be negative", ErrValidation)
)

// Error type codes used in API responses
const (
	ErrTypeNotFound          = "not_found"
	ErrTypeValidation        = "validation_error"
	ErrTypeInsufficientStock = "insufficient_stock"
	ErrTypeStorage           = "storage_error"
)

// ErrorType classifies err into one of the taxonomy codes
func ErrorType(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return ErrTypeValidation
	case errors.Is(err, ErrInsufficientStock):
		return ErrTypeInsufficientStock
	case errors.Is(err, ErrNotFound):
		return ErrTypeNotFound
	default:
		return ErrTypeStorage
	}
}

// storageErr passes taxonomy errors through and wraps everything else as ErrStorage
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInsufficientStock) || errors.Is(err, ErrStorage) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
