package embedding

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// CacheKey returns the cache key for text: the hex SHA-256 of the trimmed text.
func CacheKey(text string) string {
	return domain.HashContent(strings.TrimSpace(text))
}

// NewCache returns an unbounded cache when maxEntries is 0, or an LRU cache
// holding at most maxEntries vectors.
func NewCache(maxEntries int) (driven.EmbeddingCache, error) {
	if maxEntries < 0 {
		return nil, fmt.Errorf("%w: cache size %d", domain.ErrInvalidInput, maxEntries)
	}
	if maxEntries == 0 {
		return NewMemoryCache(), nil
	}
	return NewLRUCache(maxEntries)
}

// Ensure implementations satisfy the interface.
var (
	_ driven.EmbeddingCache = (*MemoryCache)(nil)
	_ driven.EmbeddingCache = (*LRUCache)(nil)
)

// counters tracks cache lookups.
type counters struct {
	hits   atomic.Int64
	misses atomic.Int64
}

func (c *counters) record(ok bool) {
	if ok {
		c.hits.Add(1)
		return
	}
	c.misses.Add(1)
}

// MemoryCache is an unbounded cache. Entries live until Clear.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]float32
	counters
}

// NewMemoryCache creates an empty unbounded cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]float32)}
}

// Get returns the vector stored under key.
func (c *MemoryCache) Get(key string) ([]float32, bool) {
	c.mu.RLock()
	v, ok := c.entries[key]
	c.mu.RUnlock()
	c.record(ok)
	return v, ok
}

// Put stores a vector under key.
func (c *MemoryCache) Put(key string, embedding []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = embedding
}

// Clear removes all entries.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]float32)
}

// Stats returns the entry count and lookup counters.
func (c *MemoryCache) Stats() domain.CacheStats {
	c.mu.RLock()
	size := len(c.entries)
	c.mu.RUnlock()
	return domain.CacheStats{Size: size, Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// LRUCache evicts the least recently used vector once full.
type LRUCache struct {
	entries *lru.Cache[string, []float32]
	counters
}

// NewLRUCache creates a cache holding at most size vectors.
func NewLRUCache(size int) (*LRUCache, error) {
	entries, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &LRUCache{entries: entries}, nil
}

// Get returns the vector stored under key and marks it recently used.
func (c *LRUCache) Get(key string) ([]float32, bool) {
	v, ok := c.entries.Get(key)
	c.record(ok)
	return v, ok
}

// Put stores a vector under key, evicting the oldest entry when full.
func (c *LRUCache) Put(key string, embedding []float32) {
	c.entries.Add(key, embedding)
}

// Clear removes all entries.
func (c *LRUCache) Clear() {
	c.entries.Purge()
}

// Stats returns the entry count and lookup counters.
func (c *LRUCache) Stats() domain.CacheStats {
	return domain.CacheStats{Size: c.entries.Len(), Hits: c.hits.Load(), Misses: c.misses.Load()}
}
