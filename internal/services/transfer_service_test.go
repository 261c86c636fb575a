package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-dashboard-api/internal/cache"
	"inventory-dashboard-api/internal/models"
	"inventory-dashboard-api/internal/storage/memory"
)

func newTransferService(store *memory.Store, publisher EventPublisher, opts TransferOptions) *TransferService {
	service := NewTransferService(store, publisher, opts)
	service.now = func() time.Time { return fixedNow }
	return service
}

func stockQuantity(t *testing.T, store *memory.Store, productID, warehouseID int) (int, bool) {
	t.Helper()
	for _, row := range store.Snapshot().Stock {
		if row.ProductID == productID && row.WarehouseID == warehouseID {
			return row.Quantity, true
		}
	}
	return 0, false
}

func TestTransferService_CreateMovesStockAndRecordsTransfer(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := newSeededStore()
	publisher := &recordingPublisher{}
	service := newTransferService(store, publisher, TransferOptions{})

	// Act
	transfer, err := service.Create(ctx, models.CreateTransferRequest{
		ProductID:       2,
		FromWarehouseID: 1,
		ToWarehouseID:   3,
		Quantity:        intPtr(15),
		RequestedBy:     "ops",
		Notes:           strPtr("rebalance"),
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, transfer.ID)
	assert.Equal(t, models.TransferStatusPending, transfer.Status)
	assert.Equal(t, fixedNow, transfer.RequestedAt)
	assert.Nil(t, transfer.CompletedAt)
	assert.Equal(t, 15, transfer.Quantity)
	assert.Equal(t, "rebalance", *transfer.Notes)

	source, _ := stockQuantity(t, store, 2, 1)
	dest, ok := stockQuantity(t, store, 2, 3)
	assert.Equal(t, 35, source)
	require.True(t, ok, "destination row is created")
	assert.Equal(t, 15, dest)

	snapshot := store.Snapshot()
	assert.Equal(t, 4, snapshot.Stock[3].ID, "new stock row takes the next id")
	assert.Equal(t, []models.Transfer{transfer}, snapshot.Transfers)
	assert.Equal(t, []string{models.EventStockUpdated, models.EventStockUpdated, models.EventTransferCreated}, publisher.types())
}

func TestTransferService_CreateCreditsExistingDestinationRow(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := newSeededStore()
	service := newTransferService(store, nil, TransferOptions{})

	// Act
	_, err := service.Create(ctx, models.CreateTransferRequest{
		ProductID: 1, FromWarehouseID: 1, ToWarehouseID: 2, Quantity: intPtr(5), RequestedBy: "ops",
	})

	// Assert
	require.NoError(t, err)
	source, _ := stockQuantity(t, store, 1, 1)
	dest, _ := stockQuantity(t, store, 1, 2)
	assert.Equal(t, 0, source, "a row may be drained to zero")
	assert.Equal(t, 8, dest)
	assert.Len(t, store.Snapshot().Stock, 3)
}

func TestTransferService_CreateRejectsInvalidRequests(t *testing.T) {
	testCases := []struct {
		name    string
		req     models.CreateTransferRequest
		wantErr error
	}{
		{
			name:    "missing product",
			req:     models.CreateTransferRequest{FromWarehouseID: 1, ToWarehouseID: 2, Quantity: intPtr(1), RequestedBy: "ops"},
			wantErr: ErrMissingFields,
		},
		{
			name:    "missing quantity",
			req:     models.CreateTransferRequest{ProductID: 1, FromWarehouseID: 1, ToWarehouseID: 2, RequestedBy: "ops"},
			wantErr: ErrMissingFields,
		},
		{
			name:    "missing requester",
			req:     models.CreateTransferRequest{ProductID: 1, FromWarehouseID: 1, ToWarehouseID: 2, Quantity: intPtr(1), RequestedBy: "  "},
			wantErr: ErrMissingFields,
		},
		{
			name:    "missing fields win over same warehouse",
			req:     models.CreateTransferRequest{ProductID: 1, FromWarehouseID: 1, ToWarehouseID: 1, Quantity: intPtr(1)},
			wantErr: ErrMissingFields,
		},
		{
			name:    "same warehouse",
			req:     models.CreateTransferRequest{ProductID: 1, FromWarehouseID: 1, ToWarehouseID: 1, Quantity: intPtr(1), RequestedBy: "ops"},
			wantErr: ErrSameWarehouse,
		},
		{
			name:    "same warehouse wins over bad quantity",
			req:     models.CreateTransferRequest{ProductID: 1, FromWarehouseID: 1, ToWarehouseID: 1, Quantity: intPtr(0), RequestedBy: "ops"},
			wantErr: ErrSameWarehouse,
		},
		{
			name:    "zero quantity",
			req:     models.CreateTransferRequest{ProductID: 1, FromWarehouseID: 1, ToWarehouseID: 2, Quantity: intPtr(0), RequestedBy: "ops"},
			wantErr: ErrInvalidQuantity,
		},
		{
			name:    "negative quantity",
			req:     models.CreateTransferRequest{ProductID: 1, FromWarehouseID: 1, ToWarehouseID: 2, Quantity: intPtr(-3), RequestedBy: "ops"},
			wantErr: ErrInvalidQuantity,
		},
		{
			name:    "more than available",
			req:     models.CreateTransferRequest{ProductID: 1, FromWarehouseID: 1, ToWarehouseID: 2, Quantity: intPtr(6), RequestedBy: "ops"},
			wantErr: ErrInsufficientStock,
		},
		{
			name:    "no stock row at source",
			req:     models.CreateTransferRequest{ProductID: 3, FromWarehouseID: 1, ToWarehouseID: 2, Quantity: intPtr(1), RequestedBy: "ops"},
			wantErr: ErrInsufficientStock,
		},
		{
			name:    "unknown destination warehouse",
			req:     models.CreateTransferRequest{ProductID: 1, FromWarehouseID: 1, ToWarehouseID: 42, Quantity: intPtr(1), RequestedBy: "ops"},
			wantErr: ErrUnknownWarehouse,
		},
		{
			name:    "missing fields win over unknown destination",
			req:     models.CreateTransferRequest{ProductID: 1, FromWarehouseID: 1, ToWarehouseID: 42, Quantity: intPtr(1)},
			wantErr: ErrMissingFields,
		},
		{
			name:    "same unknown warehouse on both sides",
			req:     models.CreateTransferRequest{ProductID: 1, FromWarehouseID: 42, ToWarehouseID: 42, Quantity: intPtr(1), RequestedBy: "ops"},
			wantErr: ErrSameWarehouse,
		},
		{
			name:    "bad quantity wins over unknown destination",
			req:     models.CreateTransferRequest{ProductID: 1, FromWarehouseID: 1, ToWarehouseID: 42, Quantity: intPtr(0), RequestedBy: "ops"},
			wantErr: ErrInvalidQuantity,
		},
		{
			name:    "insufficient stock wins over unknown destination",
			req:     models.CreateTransferRequest{ProductID: 1, FromWarehouseID: 1, ToWarehouseID: 42, Quantity: intPtr(6), RequestedBy: "ops"},
			wantErr: ErrInsufficientStock,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			ctx := context.Background()
			store := newSeededStore()
			publisher := &recordingPublisher{}
			service := newTransferService(store, publisher, TransferOptions{})
			before := store.Snapshot()

			// Act
			_, err := service.Create(ctx, tc.req)

			// Assert
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.wantErr), "got %v", err)
			assert.Equal(t, before, store.Snapshot(), "nothing is written on failure")
			assert.Empty(t, publisher.types())
		})
	}
}

func TestTransferService_ErrorTypes(t *testing.T) {
	assert.Equal(t, ErrTypeValidation, ErrorType(ErrSameWarehouse))
	assert.Equal(t, ErrTypeValidation, ErrorType(ErrUnknownWarehouse))
	assert.Equal(t, ErrTypeInsufficientStock, ErrorType(ErrInsufficientStock))
	assert.Equal(t, ErrTypeNotFound, ErrorType(ErrNotFound))
	assert.Equal(t, ErrTypeStorage, ErrorType(storageErr("op", errors.New("disk full"))))
}

func TestTransferService_AutoComplete(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service := newTransferService(newSeededStore(), nil, TransferOptions{AutoComplete: true})

	// Act
	transfer, err := service.Create(ctx, models.CreateTransferRequest{
		ProductID: 1, FromWarehouseID: 1, ToWarehouseID: 2, Quantity: intPtr(1), RequestedBy: "ops",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, models.TransferStatusCompleted, transfer.Status)
	require.NotNil(t, transfer.CompletedAt)
	assert.Equal(t, transfer.RequestedAt, *transfer.CompletedAt)
}

func TestTransferService_IdempotencyKeyReplaysTransfer(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := newSeededStore()
	idempotency := cache.NewTTLCache[models.Transfer]("test-idempotency", time.Minute, time.Minute)
	defer idempotency.Stop()
	service := newTransferService(store, nil, TransferOptions{Idempotency: idempotency})
	req := models.CreateTransferRequest{
		ProductID: 2, FromWarehouseID: 1, ToWarehouseID: 2, Quantity: intPtr(10), RequestedBy: "ops",
		IdempotencyKey: "key-1",
	}

	// Act
	var wg sync.WaitGroup
	results := make([]models.Transfer, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			transfer, err := service.Create(ctx, req)
			assert.NoError(t, err)
			results[i] = transfer
		}(i)
	}
	wg.Wait()

	// Assert
	for _, transfer := range results {
		assert.Equal(t, results[0], transfer)
	}
	source, _ := stockQuantity(t, store, 2, 1)
	assert.Equal(t, 40, source, "stock moves once")
	assert.Len(t, store.Snapshot().Transfers, 1)
}

func TestTransferService_IdempotencyKeysAreNotRetained(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := newSeededStore()
	idempotency := cache.NewTTLCache[models.Transfer]("test-idempotency", time.Millisecond, time.Minute)
	defer idempotency.Stop()
	service := newTransferService(store, nil, TransferOptions{Idempotency: idempotency})

	// Act
	var wg sync.WaitGroup
	for i := 0; i < 1000; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := service.Create(ctx, models.CreateTransferRequest{
				ProductID: 1, FromWarehouseID: 1, ToWarehouseID: 2, Quantity: intPtr(999), RequestedBy: "ops",
				IdempotencyKey: fmt.Sprintf("k-%d", i),
			})
			assert.ErrorIs(t, err, ErrInsufficientStock)
		}(i)
	}
	wg.Wait()
	_, err := service.Create(ctx, models.CreateTransferRequest{
		ProductID: 1, FromWarehouseID: 1, ToWarehouseID: 2, Quantity: intPtr(1), RequestedBy: "ops",
		IdempotencyKey: "k-ok",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 0, service.keyLocks.Len())
}

func TestTransferService_ConcurrentTransfersNeverOverdraw(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := newSeededStore()
	service := newTransferService(store, nil, TransferOptions{})

	// Act
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.Create(ctx, models.CreateTransferRequest{
				ProductID: 1, FromWarehouseID: 1, ToWarehouseID: 3, Quantity: intPtr(1), RequestedBy: "ops",
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.True(t, errors.Is(err, ErrInsufficientStock), "got %v", err)
		}()
	}
	wg.Wait()

	// Assert
	source, _ := stockQuantity(t, store, 1, 1)
	dest, _ := stockQuantity(t, store, 1, 3)
	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 0, source)
	assert.Equal(t, 5, dest)
	assert.Len(t, store.Snapshot().Transfers, 5)
}

func TestTransferService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	setup := func(t *testing.T) (*TransferService, *memory.Store, models.Transfer) {
		store := newSeededStore()
		service := newTransferService(store, nil, TransferOptions{})
		transfer, err := service.Create(ctx, models.CreateTransferRequest{
			ProductID: 2, FromWarehouseID: 1, ToWarehouseID: 2, Quantity: intPtr(20), RequestedBy: "ops",
		})
		require.NoError(t, err)
		return service, store, transfer
	}

	t.Run("complete", func(t *testing.T) {
		// Arrange
		service, store, transfer := setup(t)

		// Act
		updated, err := service.UpdateStatus(ctx, transfer.ID, models.UpdateTransferRequest{
			Status: models.TransferStatusCompleted,
			Notes:  strPtr("received"),
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.TransferStatusCompleted, updated.Status)
		require.NotNil(t, updated.CompletedAt)
		assert.Equal(t, fixedNow, *updated.CompletedAt)
		assert.Equal(t, "received", *updated.Notes)
		source, _ := stockQuantity(t, store, 2, 1)
		assert.Equal(t, 30, source, "completing does not move stock")
	})

	t.Run("empty notes keep the stored notes", func(t *testing.T) {
		// Arrange
		store := newSeededStore()
		service := newTransferService(store, nil, TransferOptions{})
		transfer, err := service.Create(ctx, models.CreateTransferRequest{
			ProductID: 2, FromWarehouseID: 1, ToWarehouseID: 2, Quantity: intPtr(5), RequestedBy: "ops",
			Notes: strPtr("urgent"),
		})
		require.NoError(t, err)

		// Act
		updated, err := service.UpdateStatus(ctx, transfer.ID, models.UpdateTransferRequest{
			Status: models.TransferStatusCompleted,
			Notes:  strPtr(""),
		})

		// Assert
		require.NoError(t, err)
		require.NotNil(t, updated.Notes)
		assert.Equal(t, "urgent", *updated.Notes)
	})

	t.Run("cancel reverses the movement", func(t *testing.T) {
		// Arrange
		service, store, transfer := setup(t)

		// Act
		updated, err := service.UpdateStatus(ctx, transfer.ID, models.UpdateTransferRequest{Status: models.TransferStatusCancelled})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.TransferStatusCancelled, updated.Status)
		source, _ := stockQuantity(t, store, 2, 1)
		dest, _ := stockQuantity(t, store, 2, 2)
		assert.Equal(t, 50, source)
		assert.Equal(t, 0, dest)
	})

	t.Run("cancel fails when destination no longer holds the stock", func(t *testing.T) {
		// Arrange
		service, store, transfer := setup(t)
		_, err := service.Create(ctx, models.CreateTransferRequest{
			ProductID: 2, FromWarehouseID: 2, ToWarehouseID: 3, Quantity: intPtr(15), RequestedBy: "ops",
		})
		require.NoError(t, err)
		before := store.Snapshot()

		// Act
		_, err = service.UpdateStatus(ctx, transfer.ID, models.UpdateTransferRequest{Status: models.TransferStatusCancelled})

		// Assert
		assert.True(t, errors.Is(err, ErrInsufficientStock), "got %v", err)
		assert.Equal(t, before, store.Snapshot())
	})

	t.Run("terminal states cannot change", func(t *testing.T) {
		// Arrange
		service, _, transfer := setup(t)
		_, err := service.UpdateStatus(ctx, transfer.ID, models.UpdateTransferRequest{Status: models.TransferStatusCompleted})
		require.NoError(t, err)

		// Act
		_, err = service.UpdateStatus(ctx, transfer.ID, models.UpdateTransferRequest{Status: models.TransferStatusCancelled})

		// Assert
		assert.True(t, errors.Is(err, ErrInvalidTransition), "got %v", err)
	})

	t.Run("back to pending is not allowed", func(t *testing.T) {
		// Arrange
		service, _, transfer := setup(t)

		// Act
		_, err := service.UpdateStatus(ctx, transfer.ID, models.UpdateTransferRequest{Status: models.TransferStatusPending})

		// Assert
		assert.True(t, errors.Is(err, ErrInvalidTransition), "got %v", err)
	})

	t.Run("unknown transfer", func(t *testing.T) {
		// Arrange
		service, _, _ := setup(t)

		// Act
		_, err := service.UpdateStatus(ctx, 99, models.UpdateTransferRequest{Status: models.TransferStatusCompleted})

		// Assert
		assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
	})
}

func TestTransferService_ListResolvesLabels(t *testing.T) {
	// Arrange
	ctx := context.Background()
	data := seedData()
	data.Transfers = []models.Transfer{
		{ID: 1, ProductID: 1, FromWarehouseID: 1, ToWarehouseID: 2, Quantity: 2, Status: models.TransferStatusPending, RequestedBy: "ops", RequestedAt: fixedNow},
		{ID: 2, ProductID: 77, FromWarehouseID: 1, ToWarehouseID: 88, Quantity: 1, Status: models.TransferStatusPending, RequestedBy: "ops", RequestedAt: fixedNow},
	}
	service := newTransferService(memory.NewStore(memory.WithData(data)), nil, TransferOptions{})

	// Act
	views, err := service.List(ctx)

	// Assert
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "Widget (W-1)", views[0].ProductName)
	assert.Equal(t, "Main (MAIN)", views[0].FromWarehouseName)
	assert.Equal(t, "East (EAST)", views[0].ToWarehouseName)
	assert.Equal(t, "Unknown", views[1].ProductName)
	assert.Equal(t, "Unknown", views[1].ToWarehouseName)

	view, err := service.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, views[1], view)

	_, err = service.Get(ctx, 3)
	assert.True(t, errors.Is(err, ErrNotFound))
}
