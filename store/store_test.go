package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(key string) Entry {
	return Entry{Path: key, Key: key, Base: "x", AddedAt: time.Now()}
}

func TestAddLookupGet(t *testing.T) {
	s := New()

	id, created := s.Add(entry("/a/b.txt"))
	assert.True(t, created)

	got, ok := s.Lookup("/a/b.txt")
	require.True(t, ok)
	assert.Equal(t, id, got)

	e, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, "/a/b.txt", e.Key)
	assert.Equal(t, 1, s.Len())
}

func TestAddIdempotent(t *testing.T) {
	s := New()

	id1, created := s.Add(entry("/a/b.txt"))
	assert.True(t, created)

	id2, created := s.Add(entry("/a/b.txt"))
	assert.False(t, created)
	assert.Equal(t, id1, id2)
	assert.Equal(t, 1, s.Len())
}

func TestRemoveRecyclesID(t *testing.T) {
	s := New()

	id1, _ := s.Add(entry("/a/b.txt"))
	s.Add(entry("/a/c.txt"))

	rid, e, ok := s.Remove("/a/b.txt")
	require.True(t, ok)
	assert.Equal(t, id1, rid)
	assert.Equal(t, "/a/b.txt", e.Key)
	assert.False(t, s.Exists("/a/b.txt"))
	assert.Equal(t, 1, s.Len())

	// The freed ID is handed out again.
	id3, created := s.Add(entry("/a/d.txt"))
	assert.True(t, created)
	assert.Equal(t, id1, id3)
}

func TestRemoveAbsent(t *testing.T) {
	s := New()
	_, _, ok := s.Remove("/nope")
	assert.False(t, ok)
}

func TestRange(t *testing.T) {
	s := New()
	s.Add(entry("/a"))
	s.Add(entry("/b"))
	s.Add(entry("/c"))

	seen := 0
	s.Range(func(id uint32, e Entry) bool {
		seen++
		return true
	})
	assert.Equal(t, 3, seen)

	// Early stop.
	seen = 0
	s.Range(func(id uint32, e Entry) bool {
		seen++
		return false
	})
	assert.Equal(t, 1, seen)
}
