package lock

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// refLock is a mutex shared by every caller currently holding or waiting on its key
type refLock struct {
	mu   sync.RWMutex
	refs int
}

// Manager hands out one RWMutex per key. Storage uses collection names as keys
// so writes to different collections never wait on each other. A key's mutex
// is dropped once no caller holds or waits on it, so one-off keys do not accumulate.
type Manager struct {
	locks    map[string]*refLock
	locksMux sync.Mutex
}

func NewManager() *Manager {
	return &Manager{
		locks: make(map[string]*refLock),
	}
}

// acquire returns the lock for key with its reference taken
func (m *Manager) acquire(key string) *refLock {
	m.locksMux.Lock()
	defer m.locksMux.Unlock()

	l, exists := m.locks[key]
	if !exists {
		l = &refLock{}
		m.locks[key] = l
		slog.Debug("Created new lock", "key", key)
	}
	l.refs++
	return l
}

// release drops one reference and forgets the lock when it was the last
func (m *Manager) release(key string, l *refLock) {
	m.locksMux.Lock()
	defer m.locksMux.Unlock()

	l.refs--
	if l.refs == 0 {
		delete(m.locks, key)
	}
}

// Len returns the number of keys currently held or waited on
func (m *Manager) Len() int {
	m.locksMux.Lock()
	defer m.locksMux.Unlock()
	return len(m.locks)
}

// WithWriteLock runs fn while holding the write lock for key
func (m *Manager) WithWriteLock(key string, fn func() error) error {
	start := time.Now()
	l := m.acquire(key)
	defer m.release(key, l)

	l.mu.Lock()
	defer l.mu.Unlock()

	err := fn()

	slog.Debug("Write lock released", "key", key, "duration", time.Since(start).String())
	return err
}

// WithReadLock runs fn while holding the read lock for key
func (m *Manager) WithReadLock(key string, fn func() error) error {
	l := m.acquire(key)
	defer m.release(key, l)

	l.mu.RLock()
	defer l.mu.RUnlock()

	return fn()
}

// WithWriteLocks runs fn while holding the write locks of every key.
// Keys are acquired in sorted order so two callers can never deadlock each other.
func (m *Manager) WithWriteLocks(keys []string, fn func() error) error {
	ordered := make([]string, 0, len(keys))
	ordered = append(ordered, keys...)
	sort.Strings(ordered)

	start := time.Now()
	type heldLock struct {
		key string
		l   *refLock
	}
	held := make([]heldLock, 0, len(ordered))
	defer func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].l.mu.Unlock()
			m.release(held[i].key, held[i].l)
		}
	}()

	for i, key := range ordered {
		if i > 0 && key == ordered[i-1] {
			continue
		}
		l := m.acquire(key)
		l.mu.Lock()
		held = append(held, heldLock{key: key, l: l})
	}

	err := fn()

	slog.Debug("Write locks released",
		"keys", ordered,
		"duration", time.Since(start).String())
	return err
}
