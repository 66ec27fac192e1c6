// Package cache provides the LRU result cache sitting in front of the
// search pipeline.
//
// The access order is kept in an index-based slot arena (a slice of slots
// plus a free list) instead of a pointer-linked list; the map stores slot
// indices. Get and Put are O(1).
package cache

import (
	"sync"
	"sync/atomic"
)

const none = -1

type slot[V any] struct {
	key        string
	value      V
	prev, next int
}

// LRU is a fixed-capacity least-recently-used cache keyed by normalized
// query strings. Safe for concurrent use.
type LRU[V any] struct {
	mu       sync.Mutex
	capacity int
	slots    []slot[V]
	free     []int
	index    map[string]int
	head     int // most recently used
	tail     int // least recently used

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates an LRU with the given capacity. Capacities below 1 are
// raised to 1.
func New[V any](capacity int) *LRU[V] {
	if capacity < 1 {
		capacity = 1
	}
	return &LRU[V]{
		capacity: capacity,
		slots:    make([]slot[V], 0, capacity),
		index:    make(map[string]int, capacity),
		head:     none,
		tail:     none,
	}
}

// Get returns the cached value for key and promotes the entry to most
// recently used.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[key]
	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	c.hits.Add(1)
	c.moveToFront(i)
	return c.slots[i].value, true
}

// Put inserts or updates an entry. When the cache is full the least
// recently used entry is evicted first.
func (c *LRU[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i, ok := c.index[key]; ok {
		c.slots[i].value = value
		c.moveToFront(i)
		return
	}

	if len(c.index) >= c.capacity {
		c.removeSlot(c.tail)
	}

	i := c.alloc()
	c.slots[i].key = key
	c.slots[i].value = value
	c.index[key] = i
	c.pushFront(i)
}

// Remove drops an entry if present.
func (c *LRU[V]) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i, ok := c.index[key]; ok {
		c.removeSlot(i)
	}
}

// Invalidate removes every entry for which pred returns true.
func (c *LRU[V]) Invalidate(pred func(key string, value V) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var victims []int
	for key, i := range c.index {
		if pred(key, c.slots[i].value) {
			victims = append(victims, i)
		}
	}
	for _, i := range victims {
		c.removeSlot(i)
	}
}

// Purge drops all entries but keeps hit/miss counters.
func (c *LRU[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.slots = c.slots[:0]
	c.free = c.free[:0]
	c.index = make(map[string]int, c.capacity)
	c.head = none
	c.tail = none
}

// Len returns the number of cached entries.
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.index)
}

// Stats returns the cumulative hit and miss counts.
func (c *LRU[V]) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// CountMiss records a miss that was detected outside the cache, e.g. a hit
// whose validated result list turned out empty.
func (c *LRU[V]) CountMiss() {
	c.hits.Add(-1)
	c.misses.Add(1)
}

func (c *LRU[V]) alloc() int {
	if n := len(c.free); n > 0 {
		i := c.free[n-1]
		c.free = c.free[:n-1]
		return i
	}
	c.slots = append(c.slots, slot[V]{})
	return len(c.slots) - 1
}

func (c *LRU[V]) pushFront(i int) {
	c.slots[i].prev = none
	c.slots[i].next = c.head
	if c.head != none {
		c.slots[c.head].prev = i
	}
	c.head = i
	if c.tail == none {
		c.tail = i
	}
}

func (c *LRU[V]) unlink(i int) {
	s := &c.slots[i]
	if s.prev != none {
		c.slots[s.prev].next = s.next
	} else {
		c.head = s.next
	}
	if s.next != none {
		c.slots[s.next].prev = s.prev
	} else {
		c.tail = s.prev
	}
	s.prev, s.next = none, none
}

func (c *LRU[V]) moveToFront(i int) {
	if c.head == i {
		return
	}
	c.unlink(i)
	c.pushFront(i)
}

func (c *LRU[V]) removeSlot(i int) {
	if i == none {
		return
	}
	c.unlink(i)
	delete(c.index, c.slots[i].key)
	var zero V
	c.slots[i].key = ""
	c.slots[i].value = zero
	c.free = append(c.free, i)
}
