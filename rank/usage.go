package rank

import (
	"sync"
	"time"
)

type usageStat struct {
	count uint64
	last  time.Time
}

// Usage tracks per-path selection frequency and recency. It is mutated
// only by explicit selection events (the engine's Touch), never by plain
// searches.
type Usage struct {
	mu sync.RWMutex
	m  map[string]usageStat
}

// NewUsage creates an empty tracker.
func NewUsage() *Usage {
	return &Usage{m: make(map[string]usageStat)}
}

// Record notes a selection of the given normalized key at time now.
func (u *Usage) Record(key string, now time.Time) {
	u.mu.Lock()
	defer u.mu.Unlock()
	s := u.m[key]
	s.count++
	s.last = now
	u.m[key] = s
}

// Lookup returns the selection count and last-access time for a key.
func (u *Usage) Lookup(key string) (count uint64, last time.Time, ok bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	s, ok := u.m[key]
	return s.count, s.last, ok
}

// Forget drops the stats for a key, e.g. after the path was removed.
func (u *Usage) Forget(key string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.m, key)
}

// Len returns the number of tracked keys.
func (u *Usage) Len() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.m)
}
