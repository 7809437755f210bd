package cache

import (
	"sync"
	"time"
)

// MemoryCache is a mutex-guarded map cache with lazy TTL expiry. Unlike the
// Ristretto cache it never rejects a Set, so it suits small keyspaces where
// dropping an entry is not acceptable.
type MemoryCache struct {
	mu    sync.Mutex
	items map[string]memoryEntry
}

type memoryEntry struct {
	value     interface{}
	expiresAt time.Time // Zero means no expiry
}

// NewMemoryCache creates an empty memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string]memoryEntry)}
}

// Get retrieves a value, expiring it lazily if its TTL has passed.
func (m *MemoryCache) Get(key string) (interface{}, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.items[key]
	if !ok {
		return nil, false
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		delete(m.items, key)
		return nil, false
	}
	return entry.value, true
}

// Set stores a value. A non-positive TTL stores it without expiry. Always
// succeeds.
func (m *MemoryCache) Set(key string, value interface{}, ttl time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	m.items[key] = entry
	return true
}

// Delete removes a value.
func (m *MemoryCache) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
}

// Clear removes all values.
func (m *MemoryCache) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[string]memoryEntry)
}

// Close is a no-op; the memory cache holds no external resources.
func (m *MemoryCache) Close() {}
