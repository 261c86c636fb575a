package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-dashboard-api/internal/models"
)

func TestCatalogService_CreateAssignsNextID(t *testing.T) {
	// Arrange
	ctx := context.Background()
	publisher := &recordingPublisher{}
	service := NewCatalogService(newSeededStore(), publisher)

	// Act
	product, err := service.CreateProduct(ctx, models.Product{
		ID: 500, SKU: "N-1", Name: "New", Category: "Misc",
		UnitCost: decimal.RequireFromString("3.25"), ReorderPoint: 4,
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 4, product.ID, "caller supplied id is ignored")
	assert.Equal(t, []string{models.EventProductCreated}, publisher.types())

	fetched, err := service.GetProduct(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, product, fetched)
}

func TestCatalogService_CreateRejectsNegativeValues(t *testing.T) {
	ctx := context.Background()
	service := NewCatalogService(newSeededStore(), nil)

	t.Run("unit cost", func(t *testing.T) {
		// Act
		_, err := service.CreateProduct(ctx, models.Product{Name: "Bad", UnitCost: decimal.NewFromInt(-1)})

		// Assert
		assert.True(t, errors.Is(err, ErrValidation), "got %v", err)
	})

	t.Run("reorder point", func(t *testing.T) {
		// Act
		_, err := service.CreateProduct(ctx, models.Product{Name: "Bad", ReorderPoint: -2})

		// Assert
		assert.True(t, errors.Is(err, ErrNegativeValue), "got %v", err)
	})

	t.Run("stock quantity", func(t *testing.T) {
		// Act
		_, err := service.CreateStock(ctx, models.Stock{ProductID: 1, WarehouseID: 3, Quantity: -1})

		// Assert
		assert.True(t, errors.Is(err, ErrNegativeValue), "got %v", err)
	})
}

func TestCatalogService_UpdateMergesSuppliedFields(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service := NewCatalogService(newSeededStore(), nil)

	// Act
	updated, err := service.UpdateProduct(ctx, 1, models.ProductPatch{
		Name:         strPtr("Widget Pro"),
		ReorderPoint: intPtr(12),
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, updated.ID)
	assert.Equal(t, "Widget Pro", updated.Name)
	assert.Equal(t, 12, updated.ReorderPoint)
	assert.Equal(t, "W-1", updated.SKU, "absent fields keep their value")
	assert.True(t, updated.UnitCost.Equal(decimal.RequireFromString("2.50")))
}

func TestCatalogService_UpdateRejectsNegativeQuantityWithoutWriting(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := newSeededStore()
	service := NewCatalogService(store, nil)
	before := store.Snapshot()

	// Act
	_, err := service.UpdateStock(ctx, 1, models.StockPatch{Quantity: intPtr(-4)})

	// Assert
	assert.True(t, errors.Is(err, ErrValidation), "got %v", err)
	assert.Equal(t, before, store.Snapshot())
}

func TestCatalogService_MissingRecords(t *testing.T) {
	ctx := context.Background()
	service := NewCatalogService(newSeededStore(), nil)

	testCases := []struct {
		name string
		call func() error
	}{
		{"get product", func() error { _, err := service.GetProduct(ctx, 99); return err }},
		{"update warehouse", func() error {
			_, err := service.UpdateWarehouse(ctx, 99, models.WarehousePatch{Name: strPtr("x")})
			return err
		}},
		{"delete stock", func() error { return service.DeleteStock(ctx, 99) }},
		{"delete product", func() error { return service.DeleteProduct(ctx, 99) }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			err := tc.call()

			// Assert
			assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
			assert.Equal(t, ErrTypeNotFound, ErrorType(err))
		})
	}
}

func TestCatalogService_DeleteWarehouse(t *testing.T) {
	// Arrange
	ctx := context.Background()
	publisher := &recordingPublisher{}
	service := NewCatalogService(newSeededStore(), publisher)

	// Act
	err := service.DeleteWarehouse(ctx, 3)

	// Assert
	require.NoError(t, err)
	warehouses, err := service.ListWarehouses(ctx)
	require.NoError(t, err)
	assert.Len(t, warehouses, 2)
	assert.Equal(t, []string{models.EventWarehouseDeleted}, publisher.types())
}
