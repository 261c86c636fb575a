package cache

import (
	"log/slog"
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache is a thread-safe map whose entries expire after a fixed TTL.
// A background goroutine removes expired entries every cleanup interval until Stop is called.
type TTLCache[V any] struct {
	name          string
	items         map[string]entry[V]
	mutex         sync.RWMutex
	ttl           time.Duration
	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	stopOnce      sync.Once
	now           func() time.Time
}

func NewTTLCache[V any](name string, ttl, cleanupInterval time.Duration) *TTLCache[V] {
	c := &TTLCache[V]{
		name:        name,
		items:       make(map[string]entry[V]),
		ttl:         ttl,
		stopCleanup: make(chan struct{}),
		now:         time.Now,
	}

	c.cleanupTicker = time.NewTicker(cleanupInterval)
	go c.cleanupExpiredEntries()

	slog.Info("TTL cache initialized",
		"cache", name,
		"ttl", ttl.String(),
		"cleanup_interval", cleanupInterval.String())

	return c
}

func (c *TTLCache[V]) Set(key string, value V) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items[key] = entry[V]{
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	}
	slog.Debug("Cache entry set", "cache", c.name, "key", key)
}

// Get returns the value for key if present and not expired
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	e, exists := c.items[key]
	if !exists || c.now().After(e.expiresAt) {
		var zero V
		return zero, false
	}

	slog.Debug("Cache hit", "cache", c.name, "key", key)
	return e.value, true
}

func (c *TTLCache[V]) Delete(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.items, key)
}

// Clear drops every entry
func (c *TTLCache[V]) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items = make(map[string]entry[V])
}

// ActiveSize returns the number of non-expired entries
func (c *TTLCache[V]) ActiveSize() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	now := c.now()
	active := 0
	for _, e := range c.items {
		if !now.After(e.expiresAt) {
			active++
		}
	}
	return active
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (c *TTLCache[V]) Stop() {
	c.stopOnce.Do(func() {
		c.cleanupTicker.Stop()
		close(c.stopCleanup)
		slog.Info("TTL cache stopped", "cache", c.name)
	})
}

func (c *TTLCache[V]) cleanupExpiredEntries() {
	for {
		select {
		case <-c.cleanupTicker.C:
			c.performCleanup()
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *TTLCache[V]) performCleanup() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	expired := 0
	for key, e := range c.items {
		if now.After(e.expiresAt) {
			delete(c.items, key)
			expired++
		}
	}

	if expired > 0 {
		slog.Debug("Cache cleanup completed",
			"cache", c.name,
			"expired_entries", expired,
			"remaining_entries", len(c.items))
	}
}
