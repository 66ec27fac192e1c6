// Package store holds the canonical registry of indexed paths.
//
// Both the trie and the trigram index reference paths through compact
// uint32 IDs handed out here, so posting lists stay small and entries are
// never duplicated across index structures.
package store

import (
	"sync"
	"time"
)

// Entry is the canonical record for one indexed path.
type Entry struct {
	// Path is the original path as supplied by the caller.
	Path string
	// Key is the normalized form used by all index structures.
	Key string
	// Base is the final path component of Key.
	Base string
	// Ext is the extension of Base including the leading dot, or "".
	Ext string
	// AddedAt is the time the entry was first inserted.
	AddedAt time.Time
}

// PathStore is an in-memory ID registry over path entries.
// IDs of removed entries are recycled through a free list.
type PathStore struct {
	mu      sync.RWMutex
	entries map[uint32]Entry
	byKey   map[string]uint32
	nextID  uint32
	free    []uint32
}

// New creates an empty PathStore.
func New() *PathStore {
	return &PathStore{
		entries: make(map[uint32]Entry),
		byKey:   make(map[string]uint32),
	}
}

// Add registers an entry and returns its ID. If the normalized key is
// already present the existing ID is returned with created=false and the
// stored entry is left untouched, making Add idempotent.
func (s *PathStore) Add(e Entry) (id uint32, created bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byKey[e.Key]; ok {
		return id, false
	}

	if n := len(s.free); n > 0 {
		id = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		id = s.nextID
		s.nextID++
	}

	s.entries[id] = e
	s.byKey[e.Key] = id
	return id, true
}

// Get returns the entry for an ID.
func (s *PathStore) Get(id uint32) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return e, ok
}

// Lookup returns the ID registered for a normalized key.
func (s *PathStore) Lookup(key string) (uint32, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byKey[key]
	return id, ok
}

// Exists reports whether a normalized key is registered.
func (s *PathStore) Exists(key string) bool {
	_, ok := s.Lookup(key)
	return ok
}

// Remove deletes the entry for a normalized key and recycles its ID.
// It returns the removed entry so callers can strike it from the indexes.
func (s *PathStore) Remove(key string) (uint32, Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byKey[key]
	if !ok {
		return 0, Entry{}, false
	}
	e := s.entries[id]
	delete(s.entries, id)
	delete(s.byKey, key)
	s.free = append(s.free, id)
	return id, e, true
}

// Len returns the number of registered entries.
func (s *PathStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Range calls fn for every entry until fn returns false.
// The iteration order is unspecified.
func (s *PathStore) Range(fn func(id uint32, e Entry) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, e := range s.entries {
		if !fn(id, e) {
			return
		}
	}
}
