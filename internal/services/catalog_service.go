package services

import (
	"context"
	"fmt"

	"inventory-dashboard-api/internal/models"
	"inventory-dashboard-api/internal/storage"
)

// CatalogService is plain CRUD over products, warehouses and stock rows
type CatalogService struct {
	store  storage.Store
	events EventPublisher
}

func NewCatalogService(store storage.Store, events EventPublisher) *CatalogService {
	return &CatalogService{
		store:  store,
		events: publisherOrNop(events),
	}
}

func validateProduct(p models.Product) error {
	if p.UnitCost.IsNegative() {
		return fmt.Errorf("%w (unitCost)", ErrNegativeValue)
	}
	if p.ReorderPoint < 0 {
		return fmt.Errorf("%w (reorderPoint)", ErrNegativeValue)
	}
	return nil
}

func validateWarehouse(models.Warehouse) error { return nil }

func validateStock(s models.Stock) error {
	if s.Quantity < 0 {
		return fmt.Errorf("%w (quantity)", ErrNegativeValue)
	}
	return nil
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.store.Products().List(ctx)
	return products, storageErr("list products", err)
}

func (s *CatalogService) GetProduct(ctx context.Context, id int) (models.Product, error) {
	product, err := s.store.Products().Get(ctx, id)
	return product, storageErr("get product", err)
}

func (s *CatalogService) CreateProduct(ctx context.Context, product models.Product) (models.Product, error) {
	return createRecord[models.Product](ctx, s.store.Products(), product, validateProduct, s.events, models.EventProductCreated)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id int, patch models.ProductPatch) (models.Product, error) {
	return patchRecord(ctx, s.store, pickProducts, id, patch.Apply, validateProduct, s.events, models.EventProductUpdated)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id int) error {
	return deleteRecord[models.Product](ctx, s.store.Products(), id, s.events, models.EventProductDeleted)
}

func (s *CatalogService) ListWarehouses(ctx context.Context) ([]models.Warehouse, error) {
	warehouses, err := s.store.Warehouses().List(ctx)
	return warehouses, storageErr("list warehouses", err)
}

func (s *CatalogService) GetWarehouse(ctx context.Context, id int) (models.Warehouse, error) {
	warehouse, err := s.store.Warehouses().Get(ctx, id)
	return warehouse, storageErr("get warehouse", err)
}

func (s *CatalogService) CreateWarehouse(ctx context.Context, warehouse models.Warehouse) (models.Warehouse, error) {
	return createRecord[models.Warehouse](ctx, s.store.Warehouses(), warehouse, validateWarehouse, s.events, models.EventWarehouseCreated)
}

func (s *CatalogService) UpdateWarehouse(ctx context.Context, id int, patch models.WarehousePatch) (models.Warehouse, error) {
	return patchRecord(ctx, s.store, pickWarehouses, id, patch.Apply, validateWarehouse, s.events, models.EventWarehouseUpdated)
}

func (s *CatalogService) DeleteWarehouse(ctx context.Context, id int) error {
	return deleteRecord[models.Warehouse](ctx, s.store.Warehouses(), id, s.events, models.EventWarehouseDeleted)
}

func (s *CatalogService) ListStock(ctx context.Context) ([]models.Stock, error) {
	stock, err := s.store.Stock().List(ctx)
	return stock, storageErr("list stock", err)
}

func (s *CatalogService) GetStock(ctx context.Context, id int) (models.Stock, error) {
	row, err := s.store.Stock().Get(ctx, id)
	return row, storageErr("get stock", err)
}

func (s *CatalogService) CreateStock(ctx context.Context, row models.Stock) (models.Stock, error) {
	return createRecord[models.Stock](ctx, s.store.Stock(), row, validateStock, s.events, models.EventStockCreated)
}

func (s *CatalogService) UpdateStock(ctx context.Context, id int, patch models.StockPatch) (models.Stock, error) {
	return patchRecord(ctx, s.store, pickStock, id, patch.Apply, validateStock, s.events, models.EventStockUpdated)
}

func (s *CatalogService) DeleteStock(ctx context.Context, id int) error {
	return deleteRecord[models.Stock](ctx, s.store.Stock(), id, s.events, models.EventStockDeleted)
}

func pickProducts(tx storage.Store) storage.Repository[models.Product]     { return tx.Products() }
func pickWarehouses(tx storage.Store) storage.Repository[models.Warehouse] { return tx.Warehouses() }
func pickStock(tx storage.Store) storage.Repository[models.Stock]          { return tx.Stock() }

func createRecord[T storage.Entity[T]](
	ctx context.Context,
	repo storage.Repository[T],
	item T,
	validate func(T) error,
	events EventPublisher,
	eventType string,
) (T, error) {
	if err := validate(item); err != nil {
		var zero T
		return zero, err
	}

	created, err := repo.Create(ctx, item)
	if err != nil {
		return created, storageErr("create", err)
	}
	events.Publish(eventType, created.EntityID(), created)
	return created, nil
}

// patchRecord reads, merges and writes back one record inside a transaction so
// concurrent patches of the same record cannot lose each other's fields
func patchRecord[T storage.Entity[T]](
	ctx context.Context,
	store storage.Store,
	pick func(storage.Store) storage.Repository[T],
	id int,
	apply func(T) T,
	validate func(T) error,
	events EventPublisher,
	eventType string,
) (T, error) {
	var updated T
	err := store.Atomic(ctx, func(tx storage.Store) error {
		repo := pick(tx)
		current, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}

		next := apply(current).WithID(id)
		if err := validate(next); err != nil {
			return err
		}

		updated, err = repo.Update(ctx, next)
		return err
	})
	if err != nil {
		var zero T
		return zero, storageErr("update", err)
	}

	events.Publish(eventType, id, updated)
	return updated, nil
}

func deleteRecord[T any](
	ctx context.Context,
	repo storage.Repository[T],
	id int,
	events EventPublisher,
	eventType string,
) error {
	if err := repo.Delete(ctx, id); err != nil {
		return storageErr("delete", err)
	}
	events.Publish(eventType, id, nil)
	return nil
}
