// Package cache provides a TTL key/value store used to avoid redundant
// remote calls. It is strictly an optimization layer: a miss is an ordinary
// return value and every caller must be able to refetch.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// Store is a TTL cache with lazy eviction: an expired entry is removed on the
// read that observes its expiry, and that read reports a miss. There is no
// background sweep.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	nowTime func() time.Time // nowTime function (injectable for testing)
}

// StoreOption defines a function type to modify the Store instance.
type StoreOption func(*Store)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

func New(options ...StoreOption) *Store {
	s := &Store{
		entries: make(map[string]entry),
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Set stores value under key with an expiry of now + ttl, overwriting any
// existing entry for key.
func (s *Store) Set(key string, value any, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry{
		value:     value,
		expiresAt: s.nowTime().Add(ttl),
	}
}

// Get returns the stored value for key. An expired entry is evicted and
// reported as a miss, indistinguishable from a key never set.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if s.nowTime().After(e.expiresAt) {
		s.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have refreshed
		// the entry between the two locks.
		if current, ok := s.entries[key]; ok && s.nowTime().After(current.expiresAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false
	}

	return e.value, true
}

// Invalidate removes the entry for key, forcing the next read to refetch.
func (s *Store) Invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
}

// InvalidatePrefix removes every entry whose key starts with prefix. Used when
// a mutation affects a family of cached reads (e.g., per-period entry reports).
func (s *Store) InvalidatePrefix(prefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(s.entries, key)
		}
	}
}

// Clear removes all entries. Called on logout and on connectivity restore.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]entry)
}

// Len reports the number of entries currently held, including entries that
// have expired but not yet been lazily evicted.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}
