package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"inventory-dashboard-api/internal/lock"
	"inventory-dashboard-api/internal/models"
	"inventory-dashboard-api/internal/storage"
)

// Data is the full content of a store, one slice per collection
type Data struct {
	Products   []models.Product
	Warehouses []models.Warehouse
	Stock      []models.Stock
	Transfers  []models.Transfer
	Alerts     []models.Alert
}

// Persister receives the committed rows of every collection touched by a write.
// collections maps a collection name to its full []T content.
// A Persister must either write all of them or leave the previous files in place.
type Persister interface {
	Persist(ctx context.Context, collections map[string]any) error
}

// Store keeps every collection in memory. Writes are serialized per collection;
// Atomic holds all collection locks for the duration of its closure.
type Store struct {
	locks     *lock.Manager
	persister Persister
	driver    string

	products   *table[models.Product]
	warehouses *table[models.Warehouse]
	stock      *table[models.Stock]
	transfers  *table[models.Transfer]
	alerts     *table[models.Alert]
}

type Option func(*Store)

// WithData preloads the store
func WithData(data Data) Option {
	return func(s *Store) {
		s.products = newTable(data.Products)
		s.warehouses = newTable(data.Warehouses)
		s.stock = newTable(data.Stock)
		s.transfers = newTable(data.Transfers)
		s.alerts = newTable(data.Alerts)
	}
}

// WithPersister makes every committed write flow through p
func WithPersister(p Persister) Option {
	return func(s *Store) {
		s.persister = p
	}
}

// WithDriverName overrides the name reported by Driver
func WithDriverName(name string) Option {
	return func(s *Store) {
		s.driver = name
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		locks:  lock.NewManager(),
		driver: "memory",
	}
	WithData(Data{})(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Products() storage.ProductRepository     { return s.root().Products() }
func (s *Store) Warehouses() storage.WarehouseRepository { return s.root().Warehouses() }
func (s *Store) Stock() storage.StockRepository          { return s.root().Stock() }
func (s *Store) Transfers() storage.TransferRepository   { return s.root().Transfers() }
func (s *Store) Alerts() storage.AlertRepository         { return s.root().Alerts() }

func (s *Store) Driver() string                 { return s.driver }
func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }
func (s *Store) Close() error                   { return nil }

// Atomic runs fn with every collection locked. On error, or when persisting the
// dirty collections fails, all in-memory collections roll back to their state before fn.
func (s *Store) Atomic(ctx context.Context, fn func(tx storage.Store) error) error {
	return s.locks.WithWriteLocks(storage.Collections, func() error {
		snap := s.snapshot()
		tx := &txState{dirty: make(map[string]bool)}

		if err := fn(view{s: s, tx: tx}); err != nil {
			s.restore(snap)
			return err
		}

		if err := s.persist(ctx, tx.names()); err != nil {
			s.restore(snap)
			slog.Error("Rolled back transaction after persist failure",
				"collections", tx.names(),
				"error", err)
			return err
		}
		return nil
	})
}

// Snapshot returns a copy of every collection
func (s *Store) Snapshot() Data {
	var data Data
	_ = s.locks.WithWriteLocks(storage.Collections, func() error {
		data = s.snapshot()
		return nil
	})
	return data
}

func (s *Store) root() view {
	return view{s: s}
}

func (s *Store) snapshot() Data {
	return Data{
		Products:   s.products.list(),
		Warehouses: s.warehouses.list(),
		Stock:      s.stock.list(),
		Transfers:  s.transfers.list(),
		Alerts:     s.alerts.list(),
	}
}

func (s *Store) restore(data Data) {
	s.products.replace(data.Products)
	s.warehouses.replace(data.Warehouses)
	s.stock.replace(data.Stock)
	s.transfers.replace(data.Transfers)
	s.alerts.replace(data.Alerts)
}

// persist hands the current rows of names to the persister. Callers hold the write locks of names.
func (s *Store) persist(ctx context.Context, names []string) error {
	if s.persister == nil || len(names) == 0 {
		return nil
	}

	collections := make(map[string]any, len(names))
	for _, name := range names {
		switch name {
		case storage.CollectionProducts:
			collections[name] = s.products.list()
		case storage.CollectionWarehouses:
			collections[name] = s.warehouses.list()
		case storage.CollectionStock:
			collections[name] = s.stock.list()
		case storage.CollectionTransfers:
			collections[name] = s.transfers.list()
		case storage.CollectionAlerts:
			collections[name] = s.alerts.list()
		}
	}

	if err := s.persister.Persist(ctx, collections); err != nil {
		return fmt.Errorf("persist %v: %w", names, err)
	}
	return nil
}

// txState records which collections an Atomic closure wrote to
type txState struct {
	dirty map[string]bool
}

func (t *txState) names() []string {
	names := make([]string, 0, len(t.dirty))
	for name := range t.dirty {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// view is the storage.Store handed out by Store (tx == nil) and by Atomic (tx != nil)
type view struct {
	s  *Store
	tx *txState
}

func (v view) Products() storage.ProductRepository {
	return &repo[models.Product]{v: v, name: storage.CollectionProducts, t: v.s.products}
}

func (v view) Warehouses() storage.WarehouseRepository {
	return &repo[models.Warehouse]{v: v, name: storage.CollectionWarehouses, t: v.s.warehouses}
}

func (v view) Stock() storage.StockRepository {
	return &stockRepo{repo: &repo[models.Stock]{v: v, name: storage.CollectionStock, t: v.s.stock}}
}

func (v view) Transfers() storage.TransferRepository {
	return &repo[models.Transfer]{v: v, name: storage.CollectionTransfers, t: v.s.transfers}
}

func (v view) Alerts() storage.AlertRepository {
	return &alertRepo{repo: &repo[models.Alert]{v: v, name: storage.CollectionAlerts, t: v.s.alerts}}
}

func (v view) Atomic(ctx context.Context, fn func(tx storage.Store) error) error {
	if v.tx != nil {
		// already inside a transaction: join it
		return fn(v)
	}
	return v.s.Atomic(ctx, fn)
}

func (v view) Ping(ctx context.Context) error { return v.s.Ping(ctx) }
func (v view) Driver() string                 { return v.s.Driver() }
func (v view) Close() error                   { return nil }
