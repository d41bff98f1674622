package cache

import "sync"

// Cache is a concurrency-safe string-keyed memo.
type Cache[T any] struct {
	mu    sync.Mutex
	items map[string]T
}

// New creates an empty Cache.
func New[T any]() *Cache[T] {
	return &Cache[T]{
		items: make(map[string]T),
	}
}

// GetOrCompute returns the cached value for key, computing and storing it on a miss.
// compute runs under the cache lock and must not call back into the cache.
func (c *Cache[T]) GetOrCompute(key string, compute func() T) T {
	c.mu.Lock()
	defer c.mu.Unlock()

	if value, ok := c.items[key]; ok {
		return value
	}

	value := compute()
	c.items[key] = value

	return value
}

// Len returns the number of cached entries.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.items)
}
