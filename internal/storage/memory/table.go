package memory

import (
	"fmt"

	"inventory-dashboard-api/internal/storage"
)

// table is an id-ordered slice of records. It does no locking of its own.
type table[T storage.Entity[T]] struct {
	rows []T
}

func newTable[T storage.Entity[T]](rows []T) *table[T] {
	t := &table[T]{rows: make([]T, len(rows))}
	copy(t.rows, rows)
	storage.SortByID(t.rows)
	return t
}

func (t *table[T]) list() []T {
	out := make([]T, len(t.rows))
	copy(out, t.rows)
	return out
}

func (t *table[T]) indexOf(id int) int {
	for i, row := range t.rows {
		if row.EntityID() == id {
			return i
		}
	}
	return -1
}

func (t *table[T]) get(id int) (T, error) {
	if i := t.indexOf(id); i >= 0 {
		return t.rows[i], nil
	}
	var zero T
	return zero, fmt.Errorf("id %d: %w", id, storage.ErrNotFound)
}

func (t *table[T]) create(item T) T {
	item = item.WithID(storage.NextID(t.rows))
	t.rows = append(t.rows, item)
	return item
}

func (t *table[T]) update(item T) (T, error) {
	i := t.indexOf(item.EntityID())
	if i < 0 {
		var zero T
		return zero, fmt.Errorf("id %d: %w", item.EntityID(), storage.ErrNotFound)
	}
	t.rows[i] = item
	return item, nil
}

func (t *table[T]) delete(id int) error {
	i := t.indexOf(id)
	if i < 0 {
		return fmt.Errorf("id %d: %w", id, storage.ErrNotFound)
	}
	t.rows = append(t.rows[:i], t.rows[i+1:]...)
	return nil
}

func (t *table[T]) replace(rows []T) {
	t.rows = make([]T, len(rows))
	copy(t.rows, rows)
	storage.SortByID(t.rows)
}
