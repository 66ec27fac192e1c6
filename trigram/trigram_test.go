package trigram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShingles(t *testing.T) {
	got := Shingles("report")
	want := []string{"rep", "epo", "por", "ort"}
	assert.Len(t, got, len(want))
	for _, g := range want {
		assert.Contains(t, got, g)
	}
}

func TestShinglesShort(t *testing.T) {
	// Sub-3-length strings are indexed under themselves.
	got := Shingles("ab")
	require.Len(t, got, 1)
	assert.Contains(t, got, "ab")

	got = Shingles("a")
	assert.Contains(t, got, "a")

	assert.Empty(t, Shingles(""))
}

func TestSearchOverlap(t *testing.T) {
	idx := New()
	idx.Add(1, "report.txt")
	idx.Add(2, "report_final.txt")
	idx.Add(3, "image.png")

	// "rpt" shares no contiguous trigram with "report", but "repo" does
	// with both report files.
	cands := idx.Search("repo", 10)
	require.NotEmpty(t, cands)

	found := map[uint32]float64{}
	for _, c := range cands {
		found[c.ID] = c.Score
	}
	assert.Contains(t, found, uint32(1))
	assert.Contains(t, found, uint32(2))
	assert.NotContains(t, found, uint32(3))

	// Shorter basename shares the same trigrams over a smaller set, so it
	// scores higher.
	assert.Greater(t, found[1], found[2])
}

func TestSearchUnionNotIntersect(t *testing.T) {
	idx := New()
	idx.Add(1, "main.go")

	// Only one of the query shingles ("ain") matches; union semantics must
	// still surface the candidate.
	cands := idx.Search("aints", 10)
	require.Len(t, cands, 1)
	assert.Equal(t, uint32(1), cands[0].ID)
	assert.Greater(t, cands[0].Score, 0.0)
	assert.Less(t, cands[0].Score, 1.0)
}

func TestSearchExactScoresOne(t *testing.T) {
	idx := New()
	idx.Add(1, "report")

	cands := idx.Search("report", 1)
	require.Len(t, cands, 1)
	assert.InDelta(t, 1.0, cands[0].Score, 1e-9)
}

func TestSearchTopK(t *testing.T) {
	idx := New()
	idx.Add(1, "abc")
	idx.Add(2, "abcd")
	idx.Add(3, "abcde")
	idx.Add(4, "abcdef")

	cands := idx.Search("abc", 2)
	require.Len(t, cands, 2)
	// Best first; the exact match wins.
	assert.Equal(t, uint32(1), cands[0].ID)
	assert.GreaterOrEqual(t, cands[0].Score, cands[1].Score)
}

func TestRemoveStrikesAllPostings(t *testing.T) {
	idx := New()
	idx.Add(1, "report.txt")
	idx.Add(2, "reply.txt")

	idx.Remove(1, "report.txt")
	assert.Equal(t, 1, idx.Len())

	for _, q := range []string{"report", "ort", "txt"} {
		for _, c := range idx.Search(q, 10) {
			assert.NotEqual(t, uint32(1), c.ID, "query %q still surfaced removed id", q)
		}
	}

	// The other document is untouched.
	cands := idx.Search("reply", 10)
	require.Len(t, cands, 1)
	assert.Equal(t, uint32(2), cands[0].ID)
}

func TestRemoveDropsEmptyPostings(t *testing.T) {
	idx := New()
	idx.Add(1, "abc")
	idx.Remove(1, "abc")

	idx.mu.RLock()
	defer idx.mu.RUnlock()
	assert.Empty(t, idx.postings)
	assert.Empty(t, idx.sizes)
}

func TestAddIdempotent(t *testing.T) {
	idx := New()
	idx.Add(1, "report")
	idx.Add(1, "report")
	assert.Equal(t, 1, idx.Len())

	cands := idx.Search("report", 10)
	require.Len(t, cands, 1)
	assert.InDelta(t, 1.0, cands[0].Score, 1e-9)
}

func TestShortBasenameRoundTrip(t *testing.T) {
	idx := New()
	idx.Add(1, "ab")

	cands := idx.Search("ab", 10)
	require.Len(t, cands, 1)
	assert.Equal(t, uint32(1), cands[0].ID)

	idx.Remove(1, "ab")
	assert.Empty(t, idx.Search("ab", 10))
}

func TestSearchDeterministic(t *testing.T) {
	idx := New()
	names := []string{"alpha.go", "alphb.go", "alphc.go", "alphd.go", "alphe.go"}
	for i, n := range names {
		idx.Add(uint32(i), n)
	}

	first := idx.Search("alph", 3)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, idx.Search("alph", 3))
	}
}
