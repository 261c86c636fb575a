package storage

import (
	"context"
	"errors"
	"sort"

	"inventory-dashboard-api/internal/models"
)

// ErrNotFound is returned when no record matches the requested id
var ErrNotFound = errors.New("record not found")

// Collection names. They double as JSON file stems and lock keys.
const (
	CollectionProducts   = "products"
	CollectionWarehouses = "warehouses"
	CollectionStock      = "stock"
	CollectionTransfers  = "transfers"
	CollectionAlerts     = "alerts"
)

// Collections lists every collection a Store holds
var Collections = []string{
	CollectionProducts,
	CollectionWarehouses,
	CollectionStock,
	CollectionTransfers,
	CollectionAlerts,
}

// Entity is implemented by every persisted model. WithID returns a copy carrying the new id.
type Entity[T any] interface {
	EntityID() int
	WithID(id int) T
}

// Repository is the CRUD surface shared by every collection.
// Create assigns the next id (max + 1, or 1 when empty) and ignores any id on item.
// Update and Delete return ErrNotFound when the id does not exist.
type Repository[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id int) (T, error)
	Create(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, item T) (T, error)
	Delete(ctx context.Context, id int) error
}

type ProductRepository interface {
	Repository[models.Product]
}

type WarehouseRepository interface {
	Repository[models.Warehouse]
}

type StockRepository interface {
	Repository[models.Stock]
	// FindByProductWarehouse returns the lowest-id row for the pair, or ErrNotFound
	FindByProductWarehouse(ctx context.Context, productID, warehouseID int) (models.Stock, error)
}

type TransferRepository interface {
	Repository[models.Transfer]
}

type AlertRepository interface {
	Repository[models.Alert]
	// ReplaceAll overwrites the whole collection, keeping the ids carried by alerts
	ReplaceAll(ctx context.Context, alerts []models.Alert) error
}

// Store groups the repositories of one backend.
// Atomic runs fn against a transactional view: every write made through tx is
// committed together when fn returns nil and discarded when it returns an error.
// Inside fn only tx may be used; calling back into the outer Store can deadlock.
type Store interface {
	Products() ProductRepository
	Warehouses() WarehouseRepository
	Stock() StockRepository
	Transfers() TransferRepository
	Alerts() AlertRepository
	Atomic(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
	Driver() string
	Close() error
}

// NextID returns max(id)+1 over rows, or 1 when rows is empty
func NextID[T Entity[T]](rows []T) int {
	maxID := 0
	for _, row := range rows {
		if id := row.EntityID(); id > maxID {
			maxID = id
		}
	}
	return maxID + 1
}

// SortByID orders rows by ascending id in place
func SortByID[T Entity[T]](rows []T) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].EntityID() < rows[j].EntityID()
	})
}
