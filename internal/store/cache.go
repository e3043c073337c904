// Package store provides the bounded in-memory cache used for resolved songs.
package store

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// DefaultCapacity is the number of entries kept when no capacity is configured.
	DefaultCapacity = 100
	// bloomFalsePositiveRate is the target false positive rate of the key filter.
	bloomFalsePositiveRate = 0.01
	// bloomRebuildFactor bounds how many keys the filter accumulates, relative to the
	// capacity, before it is rebuilt from the keys still cached.
	bloomRebuildFactor = 4
)

// Stats reports cache activity counters.
type Stats struct {
	Size      int    `json:"size"`
	Capacity  int    `json:"capacity"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
}

// Cache is a thread-safe least-recently-used cache keyed by string.
// A Bloom filter answers lookups for keys that were never added without touching the LRU.
type Cache[V any] struct {
	mu       sync.Mutex
	lru      *lru.Cache[string, V]
	bloom    *bloom.BloomFilter
	capacity int
	added    int

	hits      uint64
	misses    uint64
	evictions uint64
}

// NewCache creates a cache holding at most capacity entries.
// A capacity of zero or less selects DefaultCapacity.
func NewCache[V any](capacity int) *Cache[V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	c := &Cache[V]{
		capacity: capacity,
		bloom:    newFilter(capacity),
	}

	// lru.NewWithEvict only fails for non-positive sizes
	c.lru, _ = lru.NewWithEvict[string, V](capacity, func(string, V) {
		c.evictions++
	})

	return c
}

func newFilter(capacity int) *bloom.BloomFilter {
	return bloom.NewWithEstimates(uint(capacity*bloomRebuildFactor), bloomFalsePositiveRate)
}

// Get returns the cached value for key and marks it most recently used.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	if !c.bloom.TestString(key) {
		c.misses++
		return zero, false
	}

	value, ok := c.lru.Get(key)
	if !ok {
		c.misses++
		return zero, false
	}

	c.hits++
	return value, true
}

// Add stores value under key, evicting the least recently used entry when full.
func (c *Cache[V]) Add(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lru.Contains(key) {
		c.lru.Add(key, value)
		return
	}

	c.lru.Add(key, value)
	c.bloom.AddString(key)
	c.added++

	if c.added >= c.capacity*bloomRebuildFactor {
		c.rebuildFilter()
	}
}

// rebuildFilter drops evicted keys from the filter.
func (c *Cache[V]) rebuildFilter() {
	c.bloom = newFilter(c.capacity)
	keys := c.lru.Keys()
	for _, key := range keys {
		c.bloom.AddString(key)
	}
	c.added = len(keys)
}

// contains reports whether key is cached without updating its recency.
func (c *Cache[V]) contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.bloom.TestString(key) && c.lru.Contains(key)
}

// Len returns the number of cached entries.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// purge removes every entry. Counters are kept.
func (c *Cache[V]) purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	evictions := c.evictions
	c.lru.Purge()
	c.evictions = evictions
	c.bloom = newFilter(c.capacity)
	c.added = 0
}

// Stats returns a snapshot of the cache counters.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Size:      c.lru.Len(),
		Capacity:  c.capacity,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}
