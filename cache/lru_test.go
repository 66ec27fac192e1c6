package cache

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPut(t *testing.T) {
	c := New[int](4)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Put("a", 1)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, c.Len())

	// Update in place.
	c.Put("a", 2)
	v, _ = c.Get("a")
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Len())
}

func TestCapacityNeverExceeded(t *testing.T) {
	const capacity = 8
	c := New[int](capacity)

	for i := 0; i < 100; i++ {
		c.Put(fmt.Sprintf("q%d", i), i)
		assert.LessOrEqual(t, c.Len(), capacity)
	}
	assert.Equal(t, capacity, c.Len())
}

func TestEvictsExactlyLRU(t *testing.T) {
	// Scenario: capacity 2, queries "a", "b", "c" evict "a"; a following
	// "a" lookup misses.
	c := New[int](2)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestGetPromotes(t *testing.T) {
	c := New[int](2)
	c.Put("a", 1)
	c.Put("b", 2)

	// Touch "a" so "b" becomes the eviction victim.
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Put("c", 3)
	_, ok = c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
}

func TestRemove(t *testing.T) {
	c := New[int](4)
	c.Put("a", 1)
	c.Remove("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())

	// Removing an absent key is a no-op.
	c.Remove("never")
}

func TestInvalidate(t *testing.T) {
	c := New[[]string](8)
	c.Put("q1", []string{"/a/x", "/a/y"})
	c.Put("q2", []string{"/b/z"})
	c.Put("q3", []string{"/a/x"})

	c.Invalidate(func(key string, paths []string) bool {
		for _, p := range paths {
			if p == "/a/x" {
				return true
			}
		}
		return false
	})

	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("q2")
	assert.True(t, ok)
}

func TestSlotReuseAfterChurn(t *testing.T) {
	c := New[int](4)

	for round := 0; round < 50; round++ {
		for i := 0; i < 4; i++ {
			c.Put(fmt.Sprintf("r%d-k%d", round, i), i)
		}
	}
	// The arena never grows past capacity worth of slots.
	assert.LessOrEqual(t, len(c.slots), 4+1)
	assert.Equal(t, 4, c.Len())
}

func TestStats(t *testing.T) {
	c := New[int](2)
	c.Put("a", 1)

	c.Get("a")
	c.Get("a")
	c.Get("miss")

	hits, misses := c.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)

	// A validated-empty hit is reclassified as a miss.
	c.Get("a")
	c.CountMiss()
	hits, misses = c.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(2), misses)
}

func TestPurge(t *testing.T) {
	c := New[int](4)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Purge()
	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestMinimumCapacity(t *testing.T) {
	c := New[int](0)
	c.Put("a", 1)
	c.Put("b", 2)
	assert.Equal(t, 1, c.Len())
}
