// Package cache keeps parsed files between runs, keyed by path and content
// hash, so a watch re-run only parses what changed.
package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
)

// DefaultMaxEntries bounds a cache created with a non-positive size
const DefaultMaxEntries = 4096

type entry[V any] struct {
	value    V
	hash     uint64
	cachedAt int64 // Unix nano
}

// ContentCache maps a key to the value derived from the key's content. A
// lookup hits only while the content is byte-identical to what was stored.
type ContentCache[V any] struct {
	mu         sync.RWMutex
	entries    map[string]*entry[V]
	maxEntries int

	// Atomic counters
	hits      int64
	misses    int64
	evictions int64

	createdAt time.Time
}

// NewContentCache creates a cache holding at most maxEntries values
func NewContentCache[V any](maxEntries int) *ContentCache[V] {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &ContentCache[V]{
		entries:    make(map[string]*entry[V]),
		maxEntries: maxEntries,
		createdAt:  time.Now(),
	}
}

// Get returns the value stored for key when content still matches. A nil
// cache always misses.
func (c *ContentCache[V]) Get(key string, content []byte) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && e.hash == xxhash.Sum64(content) {
		atomic.AddInt64(&c.hits, 1)
		return e.value, true
	}
	atomic.AddInt64(&c.misses, 1)
	return zero, false
}

// Put stores value for key and content, replacing an older version and
// evicting the oldest entry when full
func (c *ContentCache[V]) Put(key string, content []byte, value V) {
	if c == nil {
		return
	}
	e := &entry[V]{value: value, hash: xxhash.Sum64(content), cachedAt: time.Now().UnixNano()}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}
	c.entries[key] = e
}

// evictOldest removes the least recently stored entry; c.mu must be held
func (c *ContentCache[V]) evictOldest() {
	var oldestKey string
	oldestTime := int64(-1)
	for key, e := range c.entries {
		if oldestTime < 0 || e.cachedAt < oldestTime {
			oldestKey, oldestTime = key, e.cachedAt
		}
	}
	if oldestTime >= 0 {
		delete(c.entries, oldestKey)
		atomic.AddInt64(&c.evictions, 1)
	}
}

// Len returns the number of cached entries
func (c *ContentCache[V]) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns cache statistics
func (c *ContentCache[V]) Stats() CacheStats {
	if c == nil {
		return CacheStats{}
	}
	hits := atomic.LoadInt64(&c.hits)
	misses := atomic.LoadInt64(&c.misses)

	hitRate := float64(0)
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return CacheStats{
		Hits:      hits,
		Misses:    misses,
		Evictions: atomic.LoadInt64(&c.evictions),
		HitRate:   hitRate,
		Entries:   c.Len(),
		Uptime:    time.Since(c.createdAt),
	}
}

// CacheStats holds cache statistics
type CacheStats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	HitRate   float64
	Entries   int
	Uptime    time.Duration
}

// Clear removes all entries and resets statistics
func (c *ContentCache[V]) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*entry[V])
	c.mu.Unlock()

	atomic.StoreInt64(&c.hits, 0)
	atomic.StoreInt64(&c.misses, 0)
	atomic.StoreInt64(&c.evictions, 0)
}
