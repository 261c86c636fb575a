package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"inventory-dashboard-api/internal/models"
	"inventory-dashboard-api/internal/storage"
)

// GenerateAlerts returns existing followed by one new active alert for every
// critical, low or overstocked status whose product has no active alert yet.
// New ids continue from max(existing ids) and increase by one per new alert.
func GenerateAlerts(statuses []models.StockStatus, existing []models.Alert, now time.Time) []models.Alert {
	alerts := make([]models.Alert, len(existing), len(existing)+len(statuses))
	copy(alerts, existing)

	hasActive := make(map[int]bool, len(existing))
	for _, alert := range existing {
		if alert.Status == models.AlertStatusActive {
			hasActive[alert.ProductID] = true
		}
	}

	nextID := storage.NextID(existing)
	for _, status := range statuses {
		alertType, ok := alertTypeFor(status.Status)
		if !ok || hasActive[status.ProductID] {
			continue
		}

		alerts = append(alerts, models.Alert{
			ID:               nextID,
			ProductID:        status.ProductID,
			AlertType:        alertType,
			CurrentStock:     status.TotalStock,
			ReorderPoint:     status.ReorderPoint,
			RecommendedOrder: status.RecommendedOrder,
			Status:           models.AlertStatusActive,
			CreatedAt:        now,
		})
		hasActive[status.ProductID] = true
		nextID++
	}
	return alerts
}

func alertTypeFor(stockStatus string) (string, bool) {
	switch stockStatus {
	case models.StockStatusCritical:
		return models.AlertTypeCritical, true
	case models.StockStatusLow:
		return models.AlertTypeLow, true
	case models.StockStatusOverstocked:
		return models.AlertTypeOverstocked, true
	default:
		return "", false
	}
}

// AlertService exposes stock status calculation and the alert lifecycle
type AlertService struct {
	store  storage.Store
	events EventPublisher
	now    func() time.Time
}

func NewAlertService(store storage.Store, events EventPublisher) *AlertService {
	return &AlertService{
		store:  store,
		events: publisherOrNop(events),
		now:    time.Now,
	}
}

// StockStatuses computes the current status of every product
func (s *AlertService) StockStatuses(ctx context.Context) ([]models.StockStatus, error) {
	products, err := s.store.Products().List(ctx)
	if err != nil {
		return nil, storageErr("list products", err)
	}
	stock, err := s.store.Stock().List(ctx)
	if err != nil {
		return nil, storageErr("list stock", err)
	}
	return ComputeStockStatuses(products, stock), nil
}

func (s *AlertService) List(ctx context.Context, filter models.AlertFilter) ([]models.Alert, error) {
	alerts, err := s.store.Alerts().List(ctx)
	if err != nil {
		return nil, storageErr("list alerts", err)
	}

	filtered := make([]models.Alert, 0, len(alerts))
	for _, alert := range alerts {
		if filter.Matches(alert) {
			filtered = append(filtered, alert)
		}
	}
	return filtered, nil
}

// Generate runs the alert generator over the current stock and persists the
// full resulting collection. It returns every alert, old and new, and how many were created.
func (s *AlertService) Generate(ctx context.Context) ([]models.Alert, int, error) {
	var (
		all     []models.Alert
		created []models.Alert
	)

	err := s.store.Atomic(ctx, func(tx storage.Store) error {
		products, err := tx.Products().List(ctx)
		if err != nil {
			return err
		}
		stock, err := tx.Stock().List(ctx)
		if err != nil {
			return err
		}
		existing, err := tx.Alerts().List(ctx)
		if err != nil {
			return err
		}

		all = GenerateAlerts(ComputeStockStatuses(products, stock), existing, s.now())
		created = all[len(existing):]
		if len(created) == 0 {
			return nil
		}
		return tx.Alerts().ReplaceAll(ctx, all)
	})
	if err != nil {
		return nil, 0, storageErr("generate alerts", err)
	}

	for _, alert := range created {
		s.events.Publish(models.EventAlertCreated, alert.ID, alert)
	}

	slog.Info("Alerts generated",
		"new_alerts", len(created),
		"total_alerts", len(all))

	return all, len(created), nil
}

// Update moves an alert to a new status. Acknowledging records who and when;
// resolving records when. Notes are replaced only when supplied.
func (s *AlertService) Update(ctx context.Context, req models.UpdateAlertRequest) (models.Alert, error) {
	if req.ID == 0 || req.Status == "" {
		return models.Alert{}, ErrMissingFields
	}
	switch req.Status {
	case models.AlertStatusActive, models.AlertStatusAcknowledged, models.AlertStatusResolved:
	default:
		return models.Alert{}, fmt.Errorf("%w (got %q)", ErrInvalidAlertStatus, req.Status)
	}

	var updated models.Alert
	err := s.store.Atomic(ctx, func(tx storage.Store) error {
		alert, err := tx.Alerts().Get(ctx, req.ID)
		if err != nil {
			return err
		}

		now := s.now()
		alert.Status = req.Status
		switch req.Status {
		case models.AlertStatusAcknowledged:
			alert.AcknowledgedBy = req.AcknowledgedBy
			alert.AcknowledgedAt = &now
		case models.AlertStatusResolved:
			alert.ResolvedAt = &now
		}
		if req.Notes != nil && *req.Notes != "" {
			alert.Notes = req.Notes
		}

		updated, err = tx.Alerts().Update(ctx, alert)
		return err
	})
	if err != nil {
		return models.Alert{}, storageErr("update alert", err)
	}

	s.events.Publish(models.EventAlertUpdated, updated.ID, updated)
	return updated, nil
}
