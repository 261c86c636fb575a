package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"inventory-dashboard-api/internal/models"
)

// Queue is an append-only change feed addressed by offset. Events are kept in
// memory up to MaxEvents and mirrored to a JSON file by a background writer.
type Queue struct {
	mu         sync.RWMutex
	events     []models.Event
	nextOffset int64
	changed    chan struct{}

	filePath  string
	maxEvents int
	flush     chan struct{}
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	now       func() time.Time
}

// Config holds configuration for the queue. An empty FilePath keeps events in memory only.
type Config struct {
	FilePath  string
	MaxEvents int
}

func NewQueue(cfg Config) (*Queue, error) {
	if cfg.MaxEvents <= 0 {
		cfg.MaxEvents = 10000
	}

	q := &Queue{
		events:    make([]models.Event, 0),
		changed:   make(chan struct{}),
		filePath:  cfg.FilePath,
		maxEvents: cfg.MaxEvents,
		flush:     make(chan struct{}, 1),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
		now:       time.Now,
	}

	if q.filePath != "" {
		if err := os.MkdirAll(filepath.Dir(q.filePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create events directory: %w", err)
		}
		if err := q.loadFromFile(); err != nil {
			slog.Warn("Failed to load events from file, starting fresh", "error", err)
			q.events = make([]models.Event, 0)
			q.nextOffset = 0
		}
	}

	go q.writer()

	slog.Info("Event queue initialized",
		"file_path", q.filePath,
		"max_events", q.maxEvents,
		"loaded_events", len(q.events),
		"next_offset", q.nextOffset)

	return q, nil
}

// Publish appends an event and wakes every waiting reader
func (q *Queue) Publish(eventType string, entityID int, data any) {
	q.mu.Lock()
	event := models.Event{
		Offset:    q.nextOffset,
		ID:        uuid.NewString(),
		Timestamp: q.now().UTC().Format(time.RFC3339Nano),
		EventType: eventType,
		EntityID:  entityID,
		Data:      data,
	}
	q.nextOffset++
	q.events = append(q.events, event)

	if len(q.events) > q.maxEvents {
		keep := q.maxEvents * 3 / 4
		removed := len(q.events) - keep
		q.events = append([]models.Event(nil), q.events[removed:]...)
		slog.Info("Event queue rotated",
			"removed_events", removed,
			"remaining_events", len(q.events))
	}

	close(q.changed)
	q.changed = make(chan struct{})
	q.mu.Unlock()

	select {
	case q.flush <- struct{}{}:
	default:
		// a flush is already pending and will include this event
	}

	slog.Debug("Event published",
		"offset", event.Offset,
		"event_type", eventType,
		"entity_id", entityID)
}

// Events returns up to limit events with offset >= fromOffset, the offset to
// poll next, and whether more events were left out by the limit
func (q *Queue) Events(fromOffset int64, limit int) ([]models.Event, int64, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	start := -1
	for i, event := range q.events {
		if event.Offset >= fromOffset {
			start = i
			break
		}
	}
	if start == -1 {
		next := fromOffset
		if next > q.nextOffset || next < 0 {
			next = q.nextOffset
		}
		return []models.Event{}, next, false
	}

	end := start + limit
	hasMore := end < len(q.events)
	if end > len(q.events) {
		end = len(q.events)
	}

	result := make([]models.Event, end-start)
	copy(result, q.events[start:end])
	return result, result[len(result)-1].Offset + 1, hasMore
}

// Wait blocks until an event with offset >= fromOffset exists, ctx is done, or timeout elapses.
// It reports whether such an event is available.
func (q *Queue) Wait(ctx context.Context, fromOffset int64, timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		q.mu.RLock()
		available := fromOffset < q.nextOffset
		changed := q.changed
		q.mu.RUnlock()

		if available {
			return true
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return false
		case <-timer.C:
			return false
		}
	}
}

// CurrentOffset returns the offset the next event will get
func (q *Queue) CurrentOffset() int64 {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.nextOffset
}

// Close stops the background writer and saves a final snapshot
func (q *Queue) Close() error {
	var err error
	q.closeOnce.Do(func() {
		slog.Info("Shutting down event queue")
		close(q.stop)
		<-q.done
		err = q.saveToFile()
	})
	return err
}

func (q *Queue) writer() {
	defer close(q.done)
	for {
		select {
		case <-q.flush:
			if err := q.saveToFile(); err != nil {
				slog.Error("Failed to save events to file", "error", err)
			}
		case <-q.stop:
			slog.Info("Event queue writer stopping")
			return
		}
	}
}

type fileData struct {
	Events     []models.Event `json:"events"`
	NextOffset int64          `json:"nextOffset"`
}

func (q *Queue) loadFromFile() error {
	raw, err := os.ReadFile(q.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read events file: %w", err)
	}

	var data fileData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("failed to unmarshal events: %w", err)
	}

	if data.Events != nil {
		q.events = data.Events
	}
	q.nextOffset = data.NextOffset
	return nil
}

func (q *Queue) saveToFile() error {
	if q.filePath == "" {
		return nil
	}

	q.mu.RLock()
	data, err := json.MarshalIndent(fileData{Events: q.events, NextOffset: q.nextOffset}, "", "  ")
	q.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal events: %w", err)
	}

	tempFile := q.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp events file: %w", err)
	}
	if err := os.Rename(tempFile, q.filePath); err != nil {
		return fmt.Errorf("failed to rename temp events file: %w", err)
	}
	return nil
}
