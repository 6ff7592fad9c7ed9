package embedding

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

func TestCacheKey(t *testing.T) {
	key := CacheKey("  some chunk text \n")

	assert.Len(t, key, 64)
	assert.Equal(t, key, CacheKey("some chunk text"))
	assert.NotEqual(t, key, CacheKey("Some chunk text"))
}

func TestNewCache(t *testing.T) {
	unbounded, err := NewCache(0)
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, unbounded)

	bounded, err := NewCache(10)
	require.NoError(t, err)
	assert.IsType(t, &LRUCache{}, bounded)

	_, err = NewCache(-1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCaches(t *testing.T) {
	lruCache, err := NewLRUCache(100)
	require.NoError(t, err)

	for name, cache := range map[string]driven.EmbeddingCache{
		"memory": NewMemoryCache(),
		"lru":    lruCache,
	} {
		t.Run(name, func(t *testing.T) {
			_, ok := cache.Get("missing")
			assert.False(t, ok)

			cache.Put("k", []float32{1, 2})
			v, ok := cache.Get("k")
			require.True(t, ok)
			assert.Equal(t, []float32{1, 2}, v)

			assert.Equal(t, domain.CacheStats{Size: 1, Hits: 1, Misses: 1}, cache.Stats())

			cache.Clear()
			_, ok = cache.Get("k")
			assert.False(t, ok)
			stats := cache.Stats()
			assert.Zero(t, stats.Size)
			assert.Equal(t, int64(2), stats.Misses, "counters survive Clear")
		})
	}
}

func TestLRUCache_Evicts(t *testing.T) {
	cache, err := NewLRUCache(2)
	require.NoError(t, err)

	cache.Put("a", []float32{1})
	cache.Put("b", []float32{2})
	_, _ = cache.Get("a")
	cache.Put("c", []float32{3})

	_, okA := cache.Get("a")
	_, okB := cache.Get("b")
	_, okC := cache.Get("c")
	assert.True(t, okA)
	assert.False(t, okB, "least recently used entry is evicted")
	assert.True(t, okC)
	assert.Equal(t, 2, cache.Stats().Size)
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache := NewMemoryCache()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%5)
			cache.Put(key, []float32{float32(i)})
			cache.Get(key)
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, cache.Stats().Size)
	assert.Equal(t, int64(20), cache.Stats().Hits)
}
