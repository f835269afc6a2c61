package forecast

import (
	"sync"
	"time"
)

// DefaultCacheTTL is how long a cached forecast is served.
const DefaultCacheTTL = 5 * time.Minute

// CacheEntry is a cached value and the time it was stored.
type CacheEntry[V any] struct {
	Value      V
	InsertedAt time.Time
}

// Cache is a TTL cache owned by its caller. Freshness is decided against the
// time passed in, never against a global clock.
type Cache[V any] struct {
	ttl     time.Duration
	entries map[string]CacheEntry[V]
	mu      sync.Mutex
}

// NewCache creates a cache. A non-positive ttl uses DefaultCacheTTL.
func NewCache[V any](ttl time.Duration) *Cache[V] {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	return &Cache[V]{
		ttl:     ttl,
		entries: make(map[string]CacheEntry[V]),
	}
}

// TTL returns the cache's time to live.
func (c *Cache[V]) TTL() time.Duration {
	return c.ttl
}

// IsFresh reports whether entry is still valid at now.
func (c *Cache[V]) IsFresh(entry CacheEntry[V], now time.Time) bool {
	return now.Sub(entry.InsertedAt) < c.ttl
}

// Get returns the value for key if present and fresh at now.
func (c *Cache[V]) Get(key string, now time.Time) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || !c.IsFresh(entry, now) {
		var zero V

		return zero, false
	}

	return entry.Value, true
}

// Put stores value under key as inserted at now.
func (c *Cache[V]) Put(key string, value V, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = CacheEntry[V]{Value: value, InsertedAt: now}
}

// Purge drops every entry that is stale at now and returns how many were dropped.
func (c *Cache[V]) Purge(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	purged := 0

	for key, entry := range c.entries {
		if !c.IsFresh(entry, now) {
			delete(c.entries, key)

			purged++
		}
	}

	return purged
}

// Len returns the number of stored entries, fresh or not.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}
