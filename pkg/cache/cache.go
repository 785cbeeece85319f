// Package cache provides the two caching layers used across a session: a
// bounded in-memory LRU for hot lookups (normalization results, translated
// strings, analysis verdicts) and a SQLite-backed store that persists
// translations across sessions.
package cache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Stats is a point-in-time snapshot of cache effectiveness.
type Stats struct {
	Hits     uint64 `json:"hits"`
	Misses   uint64 `json:"misses"`
	Size     int    `json:"size"`
	Capacity int    `json:"capacity"`
}

// Cache is a fixed-capacity LRU. Get refreshes recency, Set inserts or
// overwrites and evicts the least recently used entry when full. Safe for
// concurrent use.
type Cache[K comparable, V any] struct {
	lru      *lru.Cache[K, V]
	capacity int
	hits     atomic.Uint64
	misses   atomic.Uint64
}

// New creates a cache holding at most size entries.
func New[K comparable, V any](size int) (*Cache[K, V], error) {
	l, err := lru.New[K, V](size)
	if err != nil {
		return nil, err
	}
	return &Cache[K, V]{lru: l, capacity: size}, nil
}

// Get returns the cached value and refreshes its recency.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	v, ok := c.lru.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Set inserts or overwrites a value.
func (c *Cache[K, V]) Set(key K, value V) {
	c.lru.Add(key, value)
}

// Len returns the current entry count.
func (c *Cache[K, V]) Len() int {
	return c.lru.Len()
}

// Purge drops every entry. Hit and miss counters are kept.
func (c *Cache[K, V]) Purge() {
	c.lru.Purge()
}

// Stats returns a snapshot of the counters.
func (c *Cache[K, V]) Stats() Stats {
	return Stats{
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Size:     c.lru.Len(),
		Capacity: c.capacity,
	}
}
