package cache

import (
	"context"
	"sync"
	"time"
)

// Store holds encoded cache entries with an expiry.
type Store interface {
	// Get returns the value and true on a live hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

const maxCleanupInterval = 5 * time.Minute

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	now func() time.Time

	mu          sync.RWMutex
	entries     map[string]memoryEntry
	lastCleanup time.Time
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok || !s.now().Before(entry.expiresAt) {
		return nil, false, nil
	}
	return entry.value, true, nil
}

// Set implements Store.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	now := s.now()
	s.mu.Lock()
	s.entries[key] = memoryEntry{value: value, expiresAt: now.Add(ttl)}
	s.cleanupExpiredLocked(now, ttl)
	s.mu.Unlock()
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	for _, k := range keys {
		delete(s.entries, k)
	}
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemoryStore) cleanupExpiredLocked(now time.Time, ttl time.Duration) {
	interval := min(ttl, maxCleanupInterval)
	if !s.lastCleanup.IsZero() && now.Sub(s.lastCleanup) < interval {
		return
	}
	for key, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, key)
		}
	}
	s.lastCleanup = now
}
