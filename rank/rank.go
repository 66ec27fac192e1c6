// Package rank merges trie and trigram candidates and orders them with
// contextual signals: current directory, usage history, recency, exact
// basename hits and extension filters.
package rank

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/hupe1980/pathseek/internal/norm"
	"github.com/hupe1980/pathseek/store"
)

// MatchKind tags where a candidate came from.
type MatchKind uint8

const (
	// MatchPrefix marks a candidate produced by trie prefix search.
	MatchPrefix MatchKind = iota
	// MatchFuzzy marks a candidate produced by the trigram fallback.
	MatchFuzzy
)

// Candidate is a raw match prior to contextual scoring.
type Candidate struct {
	ID    uint32
	Entry store.Entry
	Kind  MatchKind
	// Base is the text-match score: 1 for prefix matches, the Dice
	// similarity (< 1) for fuzzy matches.
	Base float64
}

// Context carries the caller-supplied signals for one search.
type Context struct {
	// Query is the folded query string.
	Query string
	// CurrentDir is the caller's normalized working directory, or "".
	CurrentDir string
	// Extensions is the folded allow-list including leading dots, or nil.
	Extensions []string
}

// Result is one ranked search hit.
type Result struct {
	// Path is the original path as indexed.
	Path string
	// Key is the normalized form.
	Key string
	// Score is the final combined score, higher is better.
	Score float64
}

// Weights configures the additive scoring terms.
type Weights struct {
	// Base scales the text-match score from the index.
	Base float64
	// CurrentDir is added when the candidate lives under the caller's
	// working directory.
	CurrentDir float64
	// Frequency scales log(1 + selection count).
	Frequency float64
	// Recency scales an exponential decay over time since last selection.
	Recency float64
	// RecencyHalfLife is the age at which the recency bonus halves.
	RecencyHalfLife time.Duration
	// ExactBase is added when the query equals the candidate's basename,
	// with or without extension.
	ExactBase float64
	// Extension is added when the candidate's extension is in the
	// caller's allow-list.
	Extension float64
}

// DefaultWeights are tuned so the text match dominates and context breaks
// near-ties.
var DefaultWeights = Weights{
	Base:            1.0,
	CurrentDir:      0.3,
	Frequency:       0.15,
	Recency:         0.2,
	RecencyHalfLife: 30 * time.Minute,
	ExactBase:       0.35,
	Extension:       0.1,
}

// Ranker scores and orders candidates. Safe for concurrent use; all
// mutable state lives in the Usage tracker.
type Ranker struct {
	weights Weights
	usage   *Usage
}

// New creates a Ranker over the given usage tracker.
func New(weights Weights, usage *Usage) *Ranker {
	return &Ranker{weights: weights, usage: usage}
}

// Rank scores the candidates, sorts them best first and truncates to
// limit. Ties are broken by shorter total path, then lexicographically,
// so identical inputs always produce identical output ordering.
func (r *Ranker) Rank(rc Context, cands []Candidate, now time.Time, limit int) []Result {
	out := make([]Result, 0, len(cands))
	for _, c := range cands {
		out = append(out, Result{
			Path:  c.Entry.Path,
			Key:   c.Entry.Key,
			Score: r.score(rc, c, now),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if len(out[i].Path) != len(out[j].Path) {
			return len(out[i].Path) < len(out[j].Path)
		}
		return out[i].Path < out[j].Path
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (r *Ranker) score(rc Context, c Candidate, now time.Time) float64 {
	w := r.weights
	score := w.Base * c.Base

	if rc.CurrentDir != "" && norm.HasPrefixDir(c.Entry.Key, rc.CurrentDir) {
		score += w.CurrentDir
	}

	if count, last, ok := r.usage.Lookup(c.Entry.Key); ok {
		score += w.Frequency * math.Log1p(float64(count))
		if age := now.Sub(last); age >= 0 && w.RecencyHalfLife > 0 {
			score += w.Recency * math.Exp(-math.Ln2*age.Seconds()/w.RecencyHalfLife.Seconds())
		}
	}

	if rc.Query != "" {
		base := c.Entry.Base
		stem := strings.TrimSuffix(base, c.Entry.Ext)
		if rc.Query == base || rc.Query == stem {
			score += w.ExactBase
		}
	}

	if len(rc.Extensions) > 0 && c.Entry.Ext != "" {
		for _, ext := range rc.Extensions {
			if ext == c.Entry.Ext {
				score += w.Extension
				break
			}
		}
	}

	return score
}
