// Package fetch - cache.go keeps recently fetched pages in memory.
package fetch

import (
	"context"
	"sync"
	"time"
)

// DefaultCacheTTL is how long a fetched page is reused.
const DefaultCacheTTL = 15 * time.Minute

// FetchFunc fetches a single URL.
type FetchFunc func(ctx context.Context, urlStr string) (*Result, error)

type cacheEntry struct {
	result  *Result
	fetched time.Time
}

// Cache wraps a FetchFunc and reuses successful results for a TTL.
// Failed fetches are not cached. It is safe for concurrent use.
type Cache struct {
	fetch FetchFunc
	ttl   time.Duration
	now   func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCache creates a cache in front of fetch. A zero ttl uses DefaultCacheTTL.
func NewCache(fetch FetchFunc, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		fetch:   fetch,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Fetch returns a cached result when fresh, otherwise fetches and stores it.
// The bool reports whether the result came from the cache.
func (c *Cache) Fetch(ctx context.Context, urlStr string) (*Result, bool, error) {
	c.mu.Lock()
	entry, ok := c.entries[urlStr]
	if ok && c.now().Sub(entry.fetched) < c.ttl {
		c.mu.Unlock()
		copied := *entry.result
		return &copied, true, nil
	}
	c.mu.Unlock()

	result, err := c.fetch(ctx, urlStr)
	if err != nil {
		return result, false, err
	}

	c.mu.Lock()
	stored := *result
	c.entries[urlStr] = cacheEntry{result: &stored, fetched: c.now()}
	c.mu.Unlock()
	return result, false, nil
}

// Len returns the number of cached entries, including stale ones.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
