// Package pathseek provides an embedded path autocomplete engine.
//
// This file implements a fluent search API for querying Engine instances.
package pathseek

import (
	"context"
	"time"

	"github.com/hupe1980/pathseek/internal/norm"
	"github.com/hupe1980/pathseek/rank"
)

// Search creates a new fluent search builder for the given query.
//
// Example:
//
//	resp, err := eng.Search("report").
//	    Limit(10).
//	    CurrentDir("/home/me/projects/q3").
//	    Extensions(".md", ".pdf").
//	    Execute(ctx)
func (e *Engine) Search(query string) *SearchBuilder {
	return &SearchBuilder{
		e:     e,
		query: query,
	}
}

// SearchBuilder is a fluent builder for constructing search queries.
type SearchBuilder struct {
	e     *Engine
	query string

	limit      int
	currentDir string
	extensions []string
}

// Limit sets the maximum number of results to return. Values above the
// engine's configured maximum are clamped; zero means the configured
// maximum.
func (sb *SearchBuilder) Limit(n int) *SearchBuilder {
	sb.limit = n
	return sb
}

// CurrentDir supplies the caller's working directory. Results living under
// it are boosted.
func (sb *SearchBuilder) CurrentDir(dir string) *SearchBuilder {
	sb.currentDir = dir
	return sb
}

// Extensions restricts the boost to files with one of the given
// extensions (leading dot included, e.g. ".go").
func (sb *SearchBuilder) Extensions(exts ...string) *SearchBuilder {
	sb.extensions = exts
	return sb
}

// Result is one ranked search hit.
type Result struct {
	// Path is the original path as it was indexed.
	Path string

	// Score is the combined relevance score; higher is better.
	Score float64
}

// SearchResponse carries the ranked hits for one query.
type SearchResponse struct {
	// Results are the hits ordered best-first.
	Results []Result

	// Indexing reports whether the index may still be incomplete: a bulk
	// scan was in flight when the query ran, or nothing has been indexed
	// yet. An empty result set with Indexing set means "not indexed yet",
	// not "no such path".
	Indexing bool
}

// Execute runs the search and returns the ranked results.
func (sb *SearchBuilder) Execute(ctx context.Context) (SearchResponse, error) {
	e := sb.e
	start := time.Now()

	if err := e.guard(); err != nil {
		return SearchResponse{}, err
	}
	if sb.limit < 0 {
		err := ErrInvalidLimit
		e.metrics.RecordSearch(sb.limit, time.Since(start), err)
		e.logger.LogSearch(ctx, sb.query, 0, err)
		return SearchResponse{}, err
	}
	limit := sb.limit
	if limit == 0 || limit > e.opts.maxResults {
		limit = e.opts.maxResults
	}

	folded := e.norm.Fold(sb.query)
	cands, err := e.candidates(ctx, folded)
	if err != nil {
		e.metrics.RecordSearch(limit, time.Since(start), err)
		e.logger.LogSearch(ctx, sb.query, 0, err)
		return SearchResponse{}, err
	}

	rc := rank.Context{
		Query:      folded,
		Extensions: sb.foldedExtensions(),
	}
	if sb.currentDir != "" {
		rc.CurrentDir = e.norm.Key(sb.currentDir)
	}
	ranked := e.ranker.Rank(rc, cands, time.Now(), limit)

	results := make([]Result, len(ranked))
	for i, r := range ranked {
		results[i] = Result{Path: r.Path, Score: r.Score}
	}

	duration := time.Since(start)
	e.metrics.RecordSearch(limit, duration, nil)
	e.searchOps.Add(1)
	e.searchNano.Add(duration.Nanoseconds())
	e.logger.LogSearch(ctx, sb.query, len(results), nil)

	return SearchResponse{
		Results:  results,
		Indexing: e.scanning.Load() > 0 || !e.ready.Load(),
	}, nil
}

// MustExecute runs the search, panicking on error.
// Use this only in tests or when you're certain the query is valid.
func (sb *SearchBuilder) MustExecute(ctx context.Context) SearchResponse {
	resp, err := sb.Execute(ctx)
	if err != nil {
		panic(err)
	}
	return resp
}

// First returns only the best result, or an error if none matched.
func (sb *SearchBuilder) First(ctx context.Context) (Result, error) {
	sb.limit = 1
	resp, err := sb.Execute(ctx)
	if err != nil {
		return Result{}, err
	}
	if len(resp.Results) == 0 {
		return Result{}, ErrNotFound
	}
	return resp.Results[0], nil
}

// Count executes the search and returns the number of results.
func (sb *SearchBuilder) Count(ctx context.Context) (int, error) {
	resp, err := sb.Execute(ctx)
	if err != nil {
		return 0, err
	}
	return len(resp.Results), nil
}

// Exists checks if at least one result matches the search.
func (sb *SearchBuilder) Exists(ctx context.Context) (bool, error) {
	sb.limit = 1
	resp, err := sb.Execute(ctx)
	if err != nil {
		return false, err
	}
	return len(resp.Results) > 0, nil
}

func (sb *SearchBuilder) foldedExtensions() []string {
	if len(sb.extensions) == 0 {
		return nil
	}
	out := make([]string, len(sb.extensions))
	for i, ext := range sb.extensions {
		out[i] = sb.e.norm.Fold(ext)
	}
	return out
}

// candidates returns the merged prefix and fuzzy candidate set for a
// folded query, consulting the cache first. Concurrent identical queries
// are coalesced into a single index traversal.
func (e *Engine) candidates(ctx context.Context, folded string) ([]rank.Candidate, error) {
	if cached, ok := e.cache.Get(folded); ok {
		if live, clean := e.liveOnly(cached); clean {
			return live, nil
		}
		// A cached hit that refers to since-removed paths counts as a
		// miss and is recomputed.
		e.cache.CountMiss()
		e.cache.Remove(folded)
	}

	v, err, _ := e.sf.Do(folded, func() (interface{}, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cands := e.gather(folded)
		// Empty lists are not cached: a negative answer racing an insert
		// could otherwise stick until the next invalidation.
		if len(cands) > 0 {
			e.cache.Put(folded, cands)
		}
		return cands, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]rank.Candidate), nil
}

// gather runs the two-tier match: trie prefix search first, trigram
// fallback only when the prefix tier under-produces.
func (e *Engine) gather(folded string) []rank.Candidate {
	budget := e.opts.maxResults

	ids := e.trie.SearchPrefix(folded, budget)
	cands := make([]rank.Candidate, 0, len(ids))
	seen := make(map[uint32]struct{}, len(ids))
	for _, id := range ids {
		en, ok := e.store.Get(id)
		if !ok {
			continue
		}
		seen[id] = struct{}{}
		cands = append(cands, rank.Candidate{
			ID:    id,
			Entry: en,
			Kind:  rank.MatchPrefix,
			Base:  1.0,
		})
	}

	if len(cands) >= budget {
		return cands
	}

	for _, fc := range e.grams.Search(norm.Base(folded), budget) {
		if _, dup := seen[fc.ID]; dup {
			continue
		}
		en, ok := e.store.Get(fc.ID)
		if !ok {
			continue
		}
		cands = append(cands, rank.Candidate{
			ID:    fc.ID,
			Entry: en,
			Kind:  rank.MatchFuzzy,
			Base:  fc.Score,
		})
		if len(cands) >= budget {
			break
		}
	}
	return cands
}

// liveOnly validates a cached candidate list against the registry. clean
// is false when any candidate has been removed (or its ID recycled for a
// different path) since the list was cached.
func (e *Engine) liveOnly(cands []rank.Candidate) (live []rank.Candidate, clean bool) {
	for _, c := range cands {
		en, ok := e.store.Get(c.ID)
		if !ok || en.Key != c.Entry.Key {
			return nil, false
		}
	}
	return cands, true
}
