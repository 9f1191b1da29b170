// Package cache is a small concurrency-safe key-value cache.
package cache

import (
	"io"
	"sync"
)

// Cache maps keys to values. Values that implement io.Closer are closed by
// Cleanup.
type Cache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

// New creates an empty cache
func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{items: make(map[K]V)}
}

// Get returns the cached value for key
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[key]
	return v, ok
}

// Set stores value under key
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
}

// Delete removes key
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Len returns the number of cached entries
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Clear drops every entry without closing it
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]V)
}

// Cleanup closes every io.Closer value and empties the cache. It returns
// the first close error.
func (c *Cache[K, V]) Cleanup() error {
	c.mu.Lock()
	items := c.items
	c.items = make(map[K]V)
	c.mu.Unlock()

	var first error
	for _, v := range items {
		if closer, ok := any(v).(io.Closer); ok {
			if err := closer.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}
