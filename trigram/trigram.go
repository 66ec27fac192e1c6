// Package trigram implements the approximate-matching fallback index.
//
// Every basename is shredded into overlapping 3-byte shingles; each shingle
// owns a posting list (a roaring bitmap of path IDs). A query unions the
// posting lists of its own shingles to maximize recall and scores each
// candidate with a Dice coefficient over the two shingle sets.
//
// The index is consulted only when prefix search under-produces; it is a
// fallback path, not a parallel primary.
package trigram

import (
	"slices"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/pathseek/queue"
)

// Candidate is one fuzzy match with its text similarity in [0, 1].
type Candidate struct {
	ID    uint32
	Score float64
}

// Index maps 3-byte shingles to posting lists of path IDs.
type Index struct {
	mu sync.RWMutex
	// postings is keyed by shingle. Basenames shorter than 3 bytes are
	// indexed under their whole string as a single pseudo-shingle.
	postings map[string]*roaring.Bitmap
	// sizes remembers |shingles(basename)| per ID for Dice scoring.
	sizes map[uint32]int
}

// New creates an empty Index.
func New() *Index {
	return &Index{
		postings: make(map[string]*roaring.Bitmap),
		sizes:    make(map[uint32]int),
	}
}

// Add indexes a basename under the given path ID. Re-adding an ID is a
// no-op; callers must Remove before indexing a changed basename.
func (idx *Index) Add(id uint32, basename string) {
	grams := Shingles(basename)
	if len(grams) == 0 {
		return
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, ok := idx.sizes[id]; ok {
		return
	}
	idx.sizes[id] = len(grams)
	for g := range grams {
		bm, ok := idx.postings[g]
		if !ok {
			bm = roaring.New()
			idx.postings[g] = bm
		}
		bm.Add(id)
	}
}

// Remove strikes the ID from every posting list of the basename's shingle
// set. Empty posting lists are dropped so orphaned shingles cannot linger.
func (idx *Index) Remove(id uint32, basename string) {
	grams := Shingles(basename)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	for g := range grams {
		if bm, ok := idx.postings[g]; ok {
			bm.Remove(id)
			if bm.IsEmpty() {
				delete(idx.postings, g)
			}
		}
	}
	delete(idx.sizes, id)
}

// Len returns the number of indexed basenames.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.sizes)
}

// Search returns up to k candidates sharing at least one shingle with the
// query, best first. Scores are Dice coefficients:
// 2*|shared| / (|query shingles| + |candidate shingles|).
func (idx *Index) Search(query string, k int) []Candidate {
	grams := Shingles(query)
	if len(grams) == 0 || k <= 0 {
		return nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	// Union of postings for recall; shared-shingle counts for scoring.
	shared := make(map[uint32]int)
	for g := range grams {
		if bm, ok := idx.postings[g]; ok {
			it := bm.Iterator()
			for it.HasNext() {
				shared[it.Next()]++
			}
		}
	}
	if len(shared) == 0 {
		return nil
	}

	// Keep the k best via a bounded min-heap. Candidates are fed in
	// ascending ID order so the selection at the score boundary is
	// reproducible for identical index state.
	ids := make([]uint32, 0, len(shared))
	for id := range shared {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	pq := queue.NewMin(k)
	for _, id := range ids {
		score := 2 * float64(shared[id]) / float64(len(grams)+idx.sizes[id])
		pq.PushBounded(queue.Item{ID: id, Score: score}, k)
	}

	items := pq.Drain() // worst to best
	out := make([]Candidate, len(items))
	for i, item := range items {
		out[len(items)-1-i] = Candidate{ID: item.ID, Score: item.Score}
	}
	return out
}

// Shingles returns the set of overlapping 3-byte windows of s. Strings
// shorter than 3 bytes map to themselves as a single pseudo-shingle; the
// empty string maps to nothing.
func Shingles(s string) map[string]struct{} {
	if s == "" {
		return nil
	}
	set := make(map[string]struct{})
	if len(s) < 3 {
		set[s] = struct{}{}
		return set
	}
	for i := 0; i+3 <= len(s); i++ {
		set[s[i:i+3]] = struct{}{}
	}
	return set
}
