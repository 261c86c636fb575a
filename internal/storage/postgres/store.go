package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"inventory-dashboard-api/internal/models"
	"inventory-dashboard-api/internal/storage"
)

// Config holds the connection settings for Open
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogQueries      bool
}

// Store is a storage.Store backed by PostgreSQL through gorm.
// Atomic maps onto a database transaction.
type Store struct {
	db *gorm.DB
}

// Open connects, applies pool settings and migrates the schema
func Open(cfg Config) (*Store, error) {
	gormLogger := logger.Default.LogMode(logger.Silent)
	if cfg.LogQueries {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	slog.Info("Database connection established",
		"max_open_conns", cfg.MaxOpenConns,
		"max_idle_conns", cfg.MaxIdleConns,
		"conn_max_lifetime", cfg.ConnMaxLifetime.String())

	return New(db), nil
}

// New wraps an existing gorm handle without migrating
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the tables of every collection
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Product{},
		&models.Warehouse{},
		&models.Stock{},
		&models.Transfer{},
		&models.Alert{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

func (s *Store) Products() storage.ProductRepository {
	return &repo[models.Product]{db: s.db}
}

func (s *Store) Warehouses() storage.WarehouseRepository {
	return &repo[models.Warehouse]{db: s.db}
}

func (s *Store) Stock() storage.StockRepository {
	return &stockRepo{repo: &repo[models.Stock]{db: s.db}}
}

func (s *Store) Transfers() storage.TransferRepository {
	return &repo[models.Transfer]{db: s.db}
}

func (s *Store) Alerts() storage.AlertRepository {
	return &alertRepo{repo: &repo[models.Alert]{db: s.db}}
}

func (s *Store) Atomic(ctx context.Context, fn func(tx storage.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Driver() string { return "postgres" }

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// record is what the generic repository needs from a model
type record[T any] interface {
	storage.Entity[T]
	TableName() string
}

type repo[T record[T]] struct {
	db *gorm.DB
}

func (r *repo[T]) table() string {
	var zero T
	return zero.TableName()
}

func (r *repo[T]) List(ctx context.Context) ([]T, error) {
	rows := make([]T, 0)
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", r.table(), err)
	}
	return rows, nil
}

func (r *repo[T]) Get(ctx context.Context, id int) (T, error) {
	var row T
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return row, fmt.Errorf("%s id %d: %w", r.table(), id, storage.ErrNotFound)
	}
	if err != nil {
		return row, fmt.Errorf("get %s: %w", r.table(), err)
	}
	return row, nil
}

// Create assigns max(id)+1 while holding a table lock that blocks concurrent inserts
func (r *repo[T]) Create(ctx context.Context, item T) (T, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("LOCK TABLE " + r.table() + " IN SHARE ROW EXCLUSIVE MODE").Error; err != nil {
			return err
		}

		var maxID int
		if err := tx.Table(r.table()).Select("COALESCE(MAX(id), 0)").Scan(&maxID).Error; err != nil {
			return err
		}

		item = item.WithID(maxID + 1)
		return tx.Create(&item).Error
	})
	if err != nil {
		var zero T
		return zero, fmt.Errorf("create %s: %w", r.table(), err)
	}
	return item, nil
}

func (r *repo[T]) Update(ctx context.Context, item T) (T, error) {
	res := r.db.WithContext(ctx).Model(&item).Select("*").Updates(&item)
	if res.Error != nil {
		var zero T
		return zero, fmt.Errorf("update %s: %w", r.table(), res.Error)
	}
	if res.RowsAffected == 0 {
		var zero T
		return zero, fmt.Errorf("%s id %d: %w", r.table(), item.EntityID(), storage.ErrNotFound)
	}
	return item, nil
}

func (r *repo[T]) Delete(ctx context.Context, id int) error {
	var zero T
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&zero)
	if res.Error != nil {
		return fmt.Errorf("delete %s: %w", r.table(), res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s id %d: %w", r.table(), id, storage.ErrNotFound)
	}
	return nil
}

type stockRepo struct {
	*repo[models.Stock]
}

// FindByProductWarehouse locks the row it returns until the surrounding transaction ends
func (r *stockRepo) FindByProductWarehouse(ctx context.Context, productID, warehouseID int) (models.Stock, error) {
	var row models.Stock
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		Order("id").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return row, fmt.Errorf("stock for product %d in warehouse %d: %w", productID, warehouseID, storage.ErrNotFound)
	}
	if err != nil {
		return row, fmt.Errorf("find stock: %w", err)
	}
	return row, nil
}

type alertRepo struct {
	*repo[models.Alert]
}

func (r *alertRepo) ReplaceAll(ctx context.Context, alerts []models.Alert) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Alert{}).Error; err != nil {
			return fmt.Errorf("clear alerts: %w", err)
		}
		if len(alerts) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(alerts, 100).Error; err != nil {
			return fmt.Errorf("insert alerts: %w", err)
		}
		return nil
	})
}
