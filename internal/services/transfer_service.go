package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"inventory-dashboard-api/internal/cache"
	"inventory-dashboard-api/internal/lock"
	"inventory-dashboard-api/internal/models"
	"inventory-dashboard-api/internal/storage"
)

// TransferOptions configures a TransferService
type TransferOptions struct {
	// AutoComplete records new transfers as completed instead of pending
	AutoComplete bool
	// Idempotency remembers transfers by Idempotency-Key; nil disables replay detection
	Idempotency *cache.TTLCache[models.Transfer]
}

// TransferService moves stock between warehouses and tracks transfer status
type TransferService struct {
	store        storage.Store
	events       EventPublisher
	idempotency  *cache.TTLCache[models.Transfer]
	keyLocks     *lock.Manager
	autoComplete bool
	now          func() time.Time
}

func NewTransferService(store storage.Store, events EventPublisher, opts TransferOptions) *TransferService {
	return &TransferService{
		store:        store,
		events:       publisherOrNop(events),
		idempotency:  opts.Idempotency,
		keyLocks:     lock.NewManager(),
		autoComplete: opts.AutoComplete,
		now:          time.Now,
	}
}

// validateTransfer checks the request shape in a fixed order and never touches storage
func validateTransfer(req models.CreateTransferRequest) error {
	if req.ProductID == 0 || req.FromWarehouseID == 0 || req.ToWarehouseID == 0 ||
		req.Quantity == nil || strings.TrimSpace(req.RequestedBy) == "" {
		return ErrMissingFields
	}
	if req.FromWarehouseID == req.ToWarehouseID {
		return ErrSameWarehouse
	}
	if *req.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}

// Create debits the source warehouse, credits the destination (creating its stock
// row when missing) and records the transfer, all in one atomic unit.
// A request carrying an Idempotency-Key seen within the cache TTL returns the
// transfer created the first time and moves no stock.
func (s *TransferService) Create(ctx context.Context, req models.CreateTransferRequest) (models.Transfer, error) {
	if err := validateTransfer(req); err != nil {
		return models.Transfer{}, err
	}

	if req.IdempotencyKey == "" || s.idempotency == nil {
		return s.create(ctx, req)
	}

	var transfer models.Transfer
	err := s.keyLocks.WithWriteLock(req.IdempotencyKey, func() error {
		if cached, ok := s.idempotency.Get(req.IdempotencyKey); ok {
			slog.Info("Replaying transfer for idempotency key",
				"idempotency_key", req.IdempotencyKey,
				"transfer_id", cached.ID)
			transfer = cached
			return nil
		}

		var err error
		transfer, err = s.create(ctx, req)
		if err != nil {
			return err
		}
		s.idempotency.Set(req.IdempotencyKey, transfer)
		return nil
	})
	return transfer, err
}

func (s *TransferService) create(ctx context.Context, req models.CreateTransferRequest) (models.Transfer, error) {
	quantity := *req.Quantity

	var (
		created models.Transfer
		touched []models.Stock
	)
	err := s.store.Atomic(ctx, func(tx storage.Store) error {
		source, err := tx.Stock().FindByProductWarehouse(ctx, req.ProductID, req.FromWarehouseID)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: product %d has no stock in warehouse %d", ErrInsufficientStock, req.ProductID, req.FromWarehouseID)
		}
		if err != nil {
			return err
		}
		if source.Quantity < quantity {
			return fmt.Errorf("%w: requested %d, available %d", ErrInsufficientStock, quantity, source.Quantity)
		}

		if _, err := tx.Warehouses().Get(ctx, req.ToWarehouseID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("%w (id %d)", ErrUnknownWarehouse, req.ToWarehouseID)
			}
			return err
		}

		touched, err = moveStock(ctx, tx, source, req.ToWarehouseID, quantity)
		if err != nil {
			return err
		}

		now := s.now()
		transfer := models.Transfer{
			ProductID:       req.ProductID,
			FromWarehouseID: req.FromWarehouseID,
			ToWarehouseID:   req.ToWarehouseID,
			Quantity:        quantity,
			Status:          models.TransferStatusPending,
			RequestedBy:     req.RequestedBy,
			RequestedAt:     now,
			Notes:           req.Notes,
		}
		if s.autoComplete {
			transfer.Status = models.TransferStatusCompleted
			transfer.CompletedAt = &now
		}

		created, err = tx.Transfers().Create(ctx, transfer)
		return err
	})
	if err != nil {
		return models.Transfer{}, storageErr("create transfer", err)
	}

	for _, row := range touched {
		s.events.Publish(models.EventStockUpdated, row.ID, row)
	}
	s.events.Publish(models.EventTransferCreated, created.ID, created)

	slog.Info("Transfer created",
		"transfer_id", created.ID,
		"product_id", created.ProductID,
		"from_warehouse_id", created.FromWarehouseID,
		"to_warehouse_id", created.ToWarehouseID,
		"quantity", created.Quantity,
		"status", created.Status)

	return created, nil
}

// moveStock debits from (already checked to hold quantity) and credits the
// product's row in warehouse to, creating that row if needed. It returns both rows.
func moveStock(ctx context.Context, tx storage.Store, from models.Stock, to, quantity int) ([]models.Stock, error) {
	from.Quantity -= quantity
	from, err := tx.Stock().Update(ctx, from)
	if err != nil {
		return nil, err
	}

	dest, err := tx.Stock().FindByProductWarehouse(ctx, from.ProductID, to)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		dest, err = tx.Stock().Create(ctx, models.Stock{
			ProductID:   from.ProductID,
			WarehouseID: to,
			Quantity:    quantity,
		})
	case err == nil:
		dest.Quantity += quantity
		dest, err = tx.Stock().Update(ctx, dest)
	}
	if err != nil {
		return nil, err
	}

	return []models.Stock{from, dest}, nil
}

// UpdateStatus completes or cancels a pending transfer. Cancelling moves the
// stock back from the destination to the source warehouse.
func (s *TransferService) UpdateStatus(ctx context.Context, id int, req models.UpdateTransferRequest) (models.Transfer, error) {
	if req.Status == "" {
		return models.Transfer{}, ErrMissingFields
	}
	if req.Status != models.TransferStatusCompleted && req.Status != models.TransferStatusCancelled {
		return models.Transfer{}, fmt.Errorf("%w: cannot move a transfer to %q", ErrInvalidTransition, req.Status)
	}

	var (
		updated models.Transfer
		touched []models.Stock
	)
	err := s.store.Atomic(ctx, func(tx storage.Store) error {
		transfer, err := tx.Transfers().Get(ctx, id)
		if err != nil {
			return err
		}
		if transfer.Status != models.TransferStatusPending {
			return fmt.Errorf("%w: transfer %d is already %s", ErrInvalidTransition, id, transfer.Status)
		}

		if req.Status == models.TransferStatusCancelled {
			dest, err := tx.Stock().FindByProductWarehouse(ctx, transfer.ProductID, transfer.ToWarehouseID)
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("%w: destination warehouse %d no longer holds product %d", ErrInsufficientStock, transfer.ToWarehouseID, transfer.ProductID)
			}
			if err != nil {
				return err
			}
			if dest.Quantity < transfer.Quantity {
				return fmt.Errorf("%w: destination holds %d of %d transferred units", ErrInsufficientStock, dest.Quantity, transfer.Quantity)
			}

			touched, err = moveStock(ctx, tx, dest, transfer.FromWarehouseID, transfer.Quantity)
			if err != nil {
				return err
			}
		}

		now := s.now()
		transfer.Status = req.Status
		transfer.CompletedAt = &now
		if req.Notes != nil && *req.Notes != "" {
			transfer.Notes = req.Notes
		}

		updated, err = tx.Transfers().Update(ctx, transfer)
		return err
	})
	if err != nil {
		return models.Transfer{}, storageErr("update transfer", err)
	}

	for _, row := range touched {
		s.events.Publish(models.EventStockUpdated, row.ID, row)
	}
	s.events.Publish(models.EventTransferUpdated, updated.ID, updated)

	slog.Info("Transfer status updated",
		"transfer_id", updated.ID,
		"status", updated.Status)

	return updated, nil
}

// List returns every transfer with product and warehouse labels resolved
func (s *TransferService) List(ctx context.Context) ([]models.TransferView, error) {
	transfers, err := s.store.Transfers().List(ctx)
	if err != nil {
		return nil, storageErr("list transfers", err)
	}
	labels, err := s.labels(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]models.TransferView, 0, len(transfers))
	for _, transfer := range transfers {
		views = append(views, labels.view(transfer))
	}
	return views, nil
}

func (s *TransferService) Get(ctx context.Context, id int) (models.TransferView, error) {
	transfer, err := s.store.Transfers().Get(ctx, id)
	if err != nil {
		return models.TransferView{}, storageErr("get transfer", err)
	}
	labels, err := s.labels(ctx)
	if err != nil {
		return models.TransferView{}, err
	}
	return labels.view(transfer), nil
}

func (s *TransferService) labels(ctx context.Context) (labeler, error) {
	products, err := s.store.Products().List(ctx)
	if err != nil {
		return labeler{}, storageErr("list products", err)
	}
	warehouses, err := s.store.Warehouses().List(ctx)
	if err != nil {
		return labeler{}, storageErr("list warehouses", err)
	}
	return labeler{products: products, warehouses: warehouses}, nil
}

type labeler struct {
	products   []models.Product
	warehouses []models.Warehouse
}

func (l labeler) view(t models.Transfer) models.TransferView {
	return models.TransferView{
		Transfer:          t,
		ProductName:       ProductLabel(l.products, t.ProductID),
		FromWarehouseName: WarehouseLabel(l.warehouses, t.FromWarehouseID),
		ToWarehouseName:   WarehouseLabel(l.warehouses, t.ToWarehouseID),
	}
}
