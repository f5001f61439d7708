// Package lru provides a fixed-capacity key-value store with strict
// least-recently-used eviction. The search engine uses it to keep a small
// working set of full document bodies resident while the index itself only
// holds postings.
package lru

import "container/list"

// Cache is a bounded key-value store. Reads promote the entry to most
// recently used; inserting past capacity evicts from the least recently
// used end. Not safe for concurrent use without external locking.
type Cache[K comparable, V any] struct {
	capacity int
	order    *list.List
	items    map[K]*list.Element
}

type entry[K comparable, V any] struct {
	key   K
	value V
}

// New returns a cache bounded to capacity entries. A capacity below one is
// raised to one.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache[K, V]{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[K]*list.Element, capacity),
	}
}

// Get returns the value for key and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		return el.Value.(entry[K, V]).value, true
	}
	var zero V
	return zero, false
}

// Put inserts or replaces the value for key at the most recently used end,
// then evicts from the least recently used end until the cache is back
// within capacity.
func (c *Cache[K, V]) Put(key K, value V) {
	if el, ok := c.items[key]; ok {
		c.order.Remove(el)
		delete(c.items, key)
	}
	el := c.order.PushFront(entry[K, V]{key: key, value: value})
	c.items[key] = el
	for c.order.Len() > c.capacity {
		c.evictOldest()
	}
}

// Remove deletes key if present.
func (c *Cache[K, V]) Remove(key K) {
	if el, ok := c.items[key]; ok {
		c.order.Remove(el)
		delete(c.items, key)
	}
}

// Clear drops every entry.
func (c *Cache[K, V]) Clear() {
	c.order.Init()
	clear(c.items)
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int { return c.order.Len() }

// Capacity returns the configured maximum entry count.
func (c *Cache[K, V]) Capacity() int { return c.capacity }

// Contains reports whether key is cached without touching recency.
func (c *Cache[K, V]) Contains(key K) bool {
	_, ok := c.items[key]
	return ok
}

// Items returns a snapshot of the cached entries. Iteration order carries
// no meaning and recency is not affected.
func (c *Cache[K, V]) Items() map[K]V {
	out := make(map[K]V, len(c.items))
	for k, el := range c.items {
		out[k] = el.Value.(entry[K, V]).value
	}
	return out
}

func (c *Cache[K, V]) evictOldest() {
	oldest := c.order.Back()
	if oldest == nil {
		return
	}
	c.order.Remove(oldest)
	delete(c.items, oldest.Value.(entry[K, V]).key)
}
