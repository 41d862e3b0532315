package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentCache_BasicOperations(t *testing.T) {
	c := NewContentCache[string](10)

	_, ok := c.Get("a.xml", []byte("<component/>"))
	assert.False(t, ok)

	c.Put("a.xml", []byte("<component/>"), "parsed")
	v, ok := c.Get("a.xml", []byte("<component/>"))
	require.True(t, ok)
	assert.Equal(t, "parsed", v)

	// changed content misses
	_, ok = c.Get("a.xml", []byte("<component name='x'/>"))
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
	assert.InDelta(t, 1.0/3.0, stats.HitRate, 0.001)
	assert.Equal(t, 1, stats.Entries)
}

func TestContentCache_ReplaceDoesNotEvict(t *testing.T) {
	c := NewContentCache[int](1)
	c.Put("a", []byte("1"), 1)
	c.Put("a", []byte("2"), 2)

	v, ok := c.Get("a", []byte("2"))
	require.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Zero(t, c.Stats().Evictions)
}

func TestContentCache_SizeEviction(t *testing.T) {
	c := NewContentCache[int](2)
	c.Put("a", []byte("a"), 1)
	time.Sleep(time.Millisecond)
	c.Put("b", []byte("b"), 2)
	time.Sleep(time.Millisecond)
	c.Put("c", []byte("c"), 3)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, int64(1), c.Stats().Evictions)
	_, ok := c.Get("a", []byte("a"))
	assert.False(t, ok, "oldest entry is evicted")
	_, ok = c.Get("c", []byte("c"))
	assert.True(t, ok)
}

func TestContentCache_NilAndClear(t *testing.T) {
	var none *ContentCache[int]
	_, ok := none.Get("a", nil)
	assert.False(t, ok)
	none.Put("a", nil, 1)
	assert.Zero(t, none.Len())
	assert.Equal(t, CacheStats{}, none.Stats())

	c := NewContentCache[int](0)
	c.Put("a", []byte("a"), 1)
	c.Clear()
	assert.Zero(t, c.Len())
	assert.Zero(t, c.Stats().Hits)
}

func TestContentCache_ConcurrentAccess(t *testing.T) {
	c := NewContentCache[int](64)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("k%d", i%16)
				c.Put(key, []byte(key), i)
				c.Get(key, []byte(key))
			}
		}(g)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 64)
	stats := c.Stats()
	assert.Equal(t, int64(800), stats.Hits+stats.Misses)
}
