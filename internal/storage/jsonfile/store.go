package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"inventory-dashboard-api/internal/models"
	"inventory-dashboard-api/internal/storage"
	"inventory-dashboard-api/internal/storage/memory"
)

// Persister writes each collection to <dir>/<collection>.json as an indented JSON array
type Persister struct {
	dir    string
	rename func(oldpath, newpath string) error
}

func newPersister(dir string) *Persister {
	return &Persister{dir: dir, rename: os.Rename}
}

// Open loads every collection file under dir and returns a store that writes back to them.
// Missing files are treated as empty collections.
func Open(dir string) (*memory.Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	p := newPersister(dir)
	data, err := p.Load()
	if err != nil {
		return nil, err
	}

	slog.Info("JSON file store opened",
		"data_dir", dir,
		"products", len(data.Products),
		"warehouses", len(data.Warehouses),
		"stock_rows", len(data.Stock),
		"transfers", len(data.Transfers),
		"alerts", len(data.Alerts))

	return memory.NewStore(
		memory.WithData(data),
		memory.WithPersister(p),
		memory.WithDriverName("json"),
	), nil
}

func (p *Persister) path(collection string) string {
	return filepath.Join(p.dir, collection+".json")
}

// Load reads all collection files
func (p *Persister) Load() (memory.Data, error) {
	var (
		data memory.Data
		err  error
	)
	if data.Products, err = loadCollection[models.Product](p.path(storage.CollectionProducts)); err != nil {
		return data, err
	}
	if data.Warehouses, err = loadCollection[models.Warehouse](p.path(storage.CollectionWarehouses)); err != nil {
		return data, err
	}
	if data.Stock, err = loadCollection[models.Stock](p.path(storage.CollectionStock)); err != nil {
		return data, err
	}
	if data.Transfers, err = loadCollection[models.Transfer](p.path(storage.CollectionTransfers)); err != nil {
		return data, err
	}
	if data.Alerts, err = loadCollection[models.Alert](p.path(storage.CollectionAlerts)); err != nil {
		return data, err
	}
	return data, nil
}

func loadCollection[T any](path string) ([]T, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var rows []T
	if len(raw) == 0 {
		return []T{}, nil
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}
	return rows, nil
}

// previousFile is the on-disk state of a collection before a Persist call
type previousFile struct {
	data   []byte
	exists bool
}

// Persist writes every collection in two phases: all temp files first, then the renames.
// If any temp file fails, nothing is renamed and the previous files stay untouched.
// If a rename fails, the collections already renamed are restored to their previous
// contents so the files keep matching the rolled back in-memory state.
func (p *Persister) Persist(ctx context.Context, collections map[string]any) error {
	names := make([]string, 0, len(collections))
	for name := range collections {
		names = append(names, name)
	}
	sort.Strings(names)

	staged := make([]string, 0, len(names))
	previous := make(map[string]previousFile, len(names))
	cleanup := func(names []string) {
		for _, name := range names {
			if err := os.Remove(p.path(name) + ".tmp"); err != nil && !errors.Is(err, os.ErrNotExist) {
				slog.Warn("Failed to remove temp file", "collection", name, "error", err)
			}
		}
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			cleanup(staged)
			return err
		}

		prev, err := os.ReadFile(p.path(name))
		switch {
		case err == nil:
			previous[name] = previousFile{data: prev, exists: true}
		case errors.Is(err, os.ErrNotExist):
			previous[name] = previousFile{}
		default:
			cleanup(staged)
			return fmt.Errorf("failed to read current %s: %w", name, err)
		}

		data, err := json.MarshalIndent(collections[name], "", "  ")
		if err != nil {
			cleanup(staged)
			return fmt.Errorf("failed to marshal %s: %w", name, err)
		}

		tempFile := p.path(name) + ".tmp"
		if err := os.WriteFile(tempFile, data, 0644); err != nil {
			cleanup(append(staged, name))
			return fmt.Errorf("failed to write temp file for %s: %w", name, err)
		}
		staged = append(staged, name)
	}

	for i, name := range staged {
		if err := p.rename(p.path(name)+".tmp", p.path(name)); err != nil {
			cleanup(staged[i:])
			p.restore(staged[:i], previous)
			return fmt.Errorf("failed to rename temp file for %s: %w", name, err)
		}
	}

	slog.Debug("Collections saved", "collections", names, "data_dir", p.dir)
	return nil
}

// restore puts back the previous contents of collections whose rename already happened
func (p *Persister) restore(names []string, previous map[string]previousFile) {
	for _, name := range names {
		prev := previous[name]

		var err error
		if prev.exists {
			err = os.WriteFile(p.path(name), prev.data, 0644)
		} else {
			err = os.Remove(p.path(name))
		}
		if err != nil {
			slog.Error("Failed to restore collection file, disk no longer matches memory",
				"collection", name,
				"data_dir", p.dir,
				"error", err)
			continue
		}
		slog.Warn("Collection file restored after failed save", "collection", name, "data_dir", p.dir)
	}
}
