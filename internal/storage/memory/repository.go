package memory

import (
	"context"
	"fmt"

	"inventory-dashboard-api/internal/models"
	"inventory-dashboard-api/internal/storage"
)

type repo[T storage.Entity[T]] struct {
	v    view
	name string
	t    *table[T]
}

func (r *repo[T]) read(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.v.tx != nil {
		fn()
		return nil
	}
	return r.v.s.locks.WithReadLock(r.name, func() error {
		fn()
		return nil
	})
}

// write applies fn to the table. Outside a transaction the change is persisted
// immediately and undone if persisting fails.
func (r *repo[T]) write(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.v.tx != nil {
		if err := fn(); err != nil {
			return err
		}
		r.v.tx.dirty[r.name] = true
		return nil
	}

	return r.v.s.locks.WithWriteLock(r.name, func() error {
		before := r.t.list()
		if err := fn(); err != nil {
			return err
		}
		if err := r.v.s.persist(ctx, []string{r.name}); err != nil {
			r.t.replace(before)
			return err
		}
		return nil
	})
}

func (r *repo[T]) List(ctx context.Context) ([]T, error) {
	var rows []T
	err := r.read(ctx, func() {
		rows = r.t.list()
	})
	return rows, err
}

func (r *repo[T]) Get(ctx context.Context, id int) (T, error) {
	var (
		row    T
		getErr error
	)
	if err := r.read(ctx, func() {
		row, getErr = r.t.get(id)
	}); err != nil {
		return row, err
	}
	if getErr != nil {
		return row, fmt.Errorf("%s %w", r.name, getErr)
	}
	return row, nil
}

func (r *repo[T]) Create(ctx context.Context, item T) (T, error) {
	var created T
	err := r.write(ctx, func() error {
		created = r.t.create(item)
		return nil
	})
	return created, err
}

func (r *repo[T]) Update(ctx context.Context, item T) (T, error) {
	var updated T
	err := r.write(ctx, func() error {
		var err error
		updated, err = r.t.update(item)
		if err != nil {
			return fmt.Errorf("%s %w", r.name, err)
		}
		return nil
	})
	return updated, err
}

func (r *repo[T]) Delete(ctx context.Context, id int) error {
	return r.write(ctx, func() error {
		if err := r.t.delete(id); err != nil {
			return fmt.Errorf("%s %w", r.name, err)
		}
		return nil
	})
}

type stockRepo struct {
	*repo[models.Stock]
}

func (r *stockRepo) FindByProductWarehouse(ctx context.Context, productID, warehouseID int) (models.Stock, error) {
	var (
		found models.Stock
		ok    bool
	)
	if err := r.read(ctx, func() {
		for _, row := range r.t.rows {
			if row.ProductID == productID && row.WarehouseID == warehouseID {
				found, ok = row, true
				return
			}
		}
	}); err != nil {
		return found, err
	}
	if !ok {
		return found, fmt.Errorf("stock for product %d in warehouse %d: %w", productID, warehouseID, storage.ErrNotFound)
	}
	return found, nil
}

type alertRepo struct {
	*repo[models.Alert]
}

func (r *alertRepo) ReplaceAll(ctx context.Context, alerts []models.Alert) error {
	return r.write(ctx, func() error {
		r.t.replace(alerts)
		return nil
	})
}
