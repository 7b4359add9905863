package cache

import "sync"

// Cache is a generic thread-safe LRU cache.
// When the cache holds more than capacity entries the least recently used
// one is evicted.
//
// Cache must not be copied after creation (has mutex).
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	entries  map[K]*cacheEntry[K, V]
	order    lruList[K]
	capacity int

	hits      uint64
	misses    uint64
	evictions uint64
}

type cacheEntry[K comparable, V any] struct {
	value V
	node  *lruNode[K]
}

// New creates a new cache holding at most capacity entries.
// A capacity of 0 or less means unlimited.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	return &Cache[K, V]{
		entries:  make(map[K]*cacheEntry[K, V]),
		capacity: capacity,
	}
}

// GetOrCreate returns the cached value for key or stores the result of
// create. create is called under the lock, so it runs at most once per key.
func (c *Cache[K, V]) GetOrCreate(key K, create func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		c.hits++
		c.order.MoveToFront(entry.node)
		return entry.value
	}
	c.misses++
	value := create()
	c.insert(key, value)
	return value
}

// Stats returns cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Len:       len(c.entries),
		Capacity:  c.capacity,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

// insert adds a new entry and evicts down to capacity.
// Caller must hold c.mu.
func (c *Cache[K, V]) insert(key K, value V) {
	c.entries[key] = &cacheEntry[K, V]{value: value, node: c.order.PushFront(key)}
	for c.capacity > 0 && len(c.entries) > c.capacity {
		oldest, ok := c.order.RemoveOldest()
		if !ok {
			return
		}
		delete(c.entries, oldest)
		c.evictions++
	}
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Capacity is the maximum number of entries, 0 when unlimited.
	Capacity int
	// Hits is the number of lookups that found an entry.
	Hits uint64
	// Misses is the number of lookups that did not.
	Misses uint64
	// HitRate is Hits / (Hits + Misses), 0 before any lookup.
	HitRate float64
	// Evictions is the number of entries removed to respect Capacity.
	Evictions uint64
}
