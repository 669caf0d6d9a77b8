package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryCache is an in-memory implementation of Cache.
// Suitable for single-instance deployments.
type MemoryCache struct {
	entries map[string]memoryEntry
	mu      sync.RWMutex
}

// NewMemoryCache creates a new in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
	}
}

// Get retrieves an entry, treating expired entries as misses.
func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, exists := m.entries[key]
	if !exists || time.Now().After(entry.expiresAt) {
		return nil, ErrCacheMiss
	}

	// Return a copy to prevent external modifications
	data := make([]byte, len(entry.data))
	copy(data, entry.data)
	return data, nil
}

// Set stores an entry that expires after ttl.
func (m *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	m.entries[key] = memoryEntry{
		data:      stored,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Delete removes entries from the cache.
func (m *MemoryCache) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.entries, key)
	}
	return nil
}

// Ensure MemoryCache implements Cache interface
var _ Cache = (*MemoryCache)(nil)
