package gateway

import (
	"sync"
	"time"
)

// DefaultTTL is the entry lifetime used when Set is called with a
// non-positive TTL.
const DefaultTTL = 5 * time.Minute

// Cache is a key/value store with per-entry TTL. Staleness is checked
// lazily on read: an expired entry behaves as a miss but occupies memory
// until overwritten or explicitly cleared. There is no background sweeper.
type Cache[V any] struct {
	mu         sync.Mutex
	entries    map[string]cacheEntry[V]
	defaultTTL time.Duration
	now        func() time.Time
}

type cacheEntry[V any] struct {
	value     V
	createdAt time.Time
	ttl       time.Duration
}

// NewCache creates a cache. defaultTTL applies to Set calls that pass a
// non-positive TTL; a non-positive defaultTTL falls back to DefaultTTL.
func NewCache[V any](defaultTTL time.Duration) *Cache[V] {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &Cache[V]{
		entries:    make(map[string]cacheEntry[V]),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// Get returns the cached value for key. The second return is false when the
// key is absent or the entry has outlived its TTL.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.createdAt) >= e.ttl {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, overwriting any existing entry and stamping
// a fresh creation time. A non-positive ttl uses the cache default.
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry[V]{value: value, createdAt: c.now(), ttl: ttl}
}

// Invalidate removes the entry for key, if any.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes all entries.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry[V])
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
