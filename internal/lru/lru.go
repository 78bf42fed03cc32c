package lru

import "sync"

type entry[K comparable, V any] struct {
	key   K
	value V
	prev  *entry[K, V]
	next  *entry[K, V]
}

// Metrics is a point-in-time snapshot of cache effectiveness counters.
type Metrics struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Size      int
}

// Cache is a thread-safe bounded cache with least-recently-used eviction.
// Lookups and inserts are O(1) using a hashmap into a doubly-linked list;
// head.next is the most recently used entry, tail.prev the least.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	items    map[K]*entry[K, V]

	// list sentinels
	head *entry[K, V]
	tail *entry[K, V]

	hits      uint64
	misses    uint64
	evictions uint64
}

// New creates a cache bounded to capacity entries.
// A non-positive capacity falls back to 1.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	if capacity <= 0 {
		capacity = 1
	}

	c := &Cache[K, V]{
		capacity: capacity,
		items:    make(map[K]*entry[K, V], capacity),
		head:     &entry[K, V]{},
		tail:     &entry[K, V]{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head

	return c
}

// Get returns the value cached for key and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.items[key]
	if !ok {
		c.misses++

		var zero V
		return zero, false
	}

	c.moveToFront(ent)
	c.hits++

	return ent.value, true
}

// Add inserts or updates the value for key, marking it most recently used.
// When the cache is full the least recently used entry is evicted.
func (c *Cache[K, V]) Add(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		ent.value = value
		c.moveToFront(ent)

		return
	}

	ent := &entry[K, V]{key: key, value: value}
	c.addToFront(ent)
	c.items[key] = ent

	for len(c.items) > c.capacity {
		c.evictOldest()
	}
}

// Remove drops the entry for key, reporting whether it was present.
func (c *Cache[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.items[key]
	if !ok {
		return false
	}
	c.removeEntry(ent)

	return true
}

// Contains reports whether key is cached without updating recency.
func (c *Cache[K, V]) Contains(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.items[key]

	return ok
}

// Len returns the current number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.items)
}

// Capacity returns the maximum number of entries the cache holds.
func (c *Cache[K, V]) Capacity() int {
	return c.capacity
}

// Clear drops every entry. Counters are not reset.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[K]*entry[K, V], c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
}

// Metrics returns a snapshot of the hit, miss, and eviction counters.
func (c *Cache[K, V]) Metrics() Metrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Metrics{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Size:      len(c.items),
	}
}

// internal methods, caller must hold mu

func (c *Cache[K, V]) addToFront(ent *entry[K, V]) {
	ent.prev = c.head
	ent.next = c.head.next
	c.head.next.prev = ent
	c.head.next = ent
}

func (c *Cache[K, V]) moveToFront(ent *entry[K, V]) {
	ent.prev.next = ent.next
	ent.next.prev = ent.prev
	c.addToFront(ent)
}

func (c *Cache[K, V]) removeEntry(ent *entry[K, V]) {
	ent.prev.next = ent.next
	ent.next.prev = ent.prev
	delete(c.items, ent.key)
}

func (c *Cache[K, V]) evictOldest() {
	oldest := c.tail.prev
	if oldest == c.head {
		return
	}
	c.removeEntry(oldest)
	c.evictions++
}
