// Package pathseek provides a low-latency embedded path autocomplete and
// fuzzy-search engine for Go.
//
// Pathseek keeps every indexed path in memory and answers interactive
// queries with production-ready features including:
//
//   - Adaptive radix trie for prefix completion with path compression
//   - Trigram fallback index with Roaring Bitmap posting lists for
//     approximate basename matching
//   - Context-aware ranking: current directory, usage frequency, recency
//     decay, exact basename hits and extension filters
//   - O(1) LRU result cache with hit/miss accounting
//   - Background indexing: bounded update queue, paced bulk scans and an
//     fsnotify-backed file-system watcher
//   - Coalescing of concurrent identical queries via singleflight
//
// # Quick Start
//
// Create an engine and index a tree:
//
//	ctx := context.Background()
//	eng, err := pathseek.New(
//	    pathseek.WithMaxResults(20),
//	    pathseek.WithLogLevel(slog.LevelInfo),
//	)
//	if err != nil {
//	    panic(err)
//	}
//	defer eng.Close()
//
//	if _, err := eng.AddPathsRecursive(ctx, "/home/me/projects"); err != nil {
//	    panic(err)
//	}
//
// Search with the fluent API:
//
//	resp, err := eng.Search("report").
//	    Limit(10).
//	    CurrentDir("/home/me/projects/q3").
//	    Extensions(".md", ".pdf").
//	    Execute(ctx)
//
// Keep the index live while the tree changes:
//
//	if err := eng.Watch(ctx, "/home/me/projects"); err != nil {
//	    panic(err)
//	}
package pathseek

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/hupe1980/pathseek/art"
	"github.com/hupe1980/pathseek/cache"
	"github.com/hupe1980/pathseek/indexer"
	"github.com/hupe1980/pathseek/internal/norm"
	"github.com/hupe1980/pathseek/rank"
	"github.com/hupe1980/pathseek/store"
	"github.com/hupe1980/pathseek/trigram"
)

// Engine is an in-process path autocomplete and fuzzy-search engine.
// All methods are safe for concurrent use.
type Engine struct {
	opts    options
	logger  *Logger
	metrics MetricsCollector

	norm   *norm.Normalizer
	store  *store.PathStore
	trie   *art.Tree
	grams  *trigram.Index
	cache  *cache.LRU[[]rank.Candidate]
	usage  *rank.Usage
	ranker *rank.Ranker

	worker  *indexer.Worker
	scanner *indexer.Scanner
	watcher indexer.Watcher

	// writeMu serializes cross-structure mutations so the trie, the
	// trigram index and the registry never observe a half-applied update.
	writeMu sync.Mutex

	sf singleflight.Group

	mu        sync.Mutex // protects states and watcherOn
	states    map[string]indexer.State
	watcherOn bool

	ready      atomic.Bool
	closed     atomic.Bool
	scanning   atomic.Int64
	searchOps  atomic.Int64
	searchNano atomic.Int64
}

// New creates an Engine and starts its update queue worker.
func New(optFns ...Option) (*Engine, error) {
	opts := applyOptions(optFns)

	e := &Engine{
		opts:    opts,
		logger:  opts.logger,
		metrics: opts.metricsCollector,
		norm:    norm.New(opts.caseSensitive),
		store:   store.New(),
		trie:    art.New(),
		grams:   trigram.New(),
		cache:   cache.New[[]rank.Candidate](opts.cacheCapacity),
		usage:   rank.NewUsage(),
		states:  make(map[string]indexer.State),
	}
	e.ranker = rank.New(opts.weights, e.usage)
	e.scanner = indexer.NewScanner(opts.lister, opts.scanConcurrency, opts.scanRate, opts.logger.Logger)

	e.watcher = opts.watcher
	if e.watcher == nil {
		e.watcher = indexer.NewFsnotifyWatcher(opts.logger.Logger)
	}

	e.worker = indexer.NewWorker(opts.queueSize, e.applyEvent, opts.logger.Logger)
	e.worker.Start()

	return e, nil
}

// Close stops the watcher and drains the update queue. Subsequent
// operations return ErrClosed. Close is idempotent.
func (e *Engine) Close() error {
	if e == nil {
		return nil
	}
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	var firstErr error
	e.mu.Lock()
	watcherOn := e.watcherOn
	e.mu.Unlock()
	if watcherOn {
		if err := e.watcher.Close(); err != nil {
			firstErr = err
		}
	}
	e.worker.Close()
	return firstErr
}

// Ready reports whether at least one path has been indexed. Searches on a
// not-yet-ready engine succeed with empty results and Indexing set on the
// response.
func (e *Engine) Ready() bool {
	return e.ready.Load()
}

// AddPath indexes a single path. Adding an already indexed path is a no-op.
func (e *Engine) AddPath(ctx context.Context, path string) error {
	start := time.Now()
	err := e.guard()
	if err == nil {
		err = e.applyInsert(path)
	}
	e.metrics.RecordInsert(time.Since(start), err)
	e.logger.LogInsert(ctx, path, err)
	return err
}

// RemovePath removes a path from the index. Removing an unknown path is a
// no-op.
func (e *Engine) RemovePath(ctx context.Context, path string) error {
	start := time.Now()
	err := e.guard()
	if err == nil {
		err = e.applyRemove(path)
	}
	e.metrics.RecordRemove(time.Since(start), err)
	e.logger.LogRemove(ctx, path, err)
	return err
}

// RenamePath atomically replaces oldPath with newPath. The new path is
// inserted before the old one is removed so a concurrent search never
// observes the file absent from both locations.
func (e *Engine) RenamePath(ctx context.Context, oldPath, newPath string) error {
	err := e.guard()
	if err == nil {
		err = e.applyRename(oldPath, newPath)
	}
	e.logger.LogRename(ctx, oldPath, newPath, err)
	return err
}

// Touch records a user selection of path, boosting its frequency and
// recency signals in future rankings. Returns ErrNotFound if the path is
// not indexed.
func (e *Engine) Touch(path string) error {
	if err := e.guard(); err != nil {
		return err
	}
	key := e.norm.Key(path)
	if !e.store.Exists(key) {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	e.usage.Record(key, time.Now())
	return nil
}

// AddPathsRecursive walks root and indexes every discovered path. The walk
// is paced by the configured scan rate and honors ctx cancellation.
// Returns the number of paths indexed.
func (e *Engine) AddPathsRecursive(ctx context.Context, root string) (int, error) {
	if err := e.guard(); err != nil {
		return 0, err
	}
	return e.scan(ctx, root)
}

// Watch performs an initial scan of root and then applies file-system
// events to the index until the engine is closed. The per-root lifecycle
// is observable through WatchState.
func (e *Engine) Watch(ctx context.Context, root string) error {
	if err := e.guard(); err != nil {
		return err
	}

	e.mu.Lock()
	if !e.watcherOn {
		if err := e.watcher.Start(e.enqueue); err != nil {
			e.mu.Unlock()
			e.logger.LogWatch(ctx, root, err)
			return err
		}
		e.watcherOn = true
	}
	key := e.norm.Key(root)
	e.states[key] = indexer.StateScanning
	e.mu.Unlock()

	if _, err := e.scan(ctx, root); err != nil {
		e.setState(key, indexer.StateIdle)
		e.logger.LogWatch(ctx, root, err)
		return err
	}

	if err := e.watcher.Add(root); err != nil {
		e.setState(key, indexer.StateIdle)
		e.logger.LogWatch(ctx, root, err)
		return err
	}
	e.setState(key, indexer.StateWatching)
	e.logger.LogWatch(ctx, root, nil)
	return nil
}

// WatchState returns the lifecycle state of a watched root.
func (e *Engine) WatchState(root string) indexer.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.states[e.norm.Key(root)]
}

// Rebuild drops every indexed path under root and rescans it from scratch.
// Use this after bulk changes that bypassed the watcher.
func (e *Engine) Rebuild(ctx context.Context, root string) (int, error) {
	if err := e.guard(); err != nil {
		return 0, err
	}

	rootKey := e.norm.Key(root)
	var doomed []string
	e.store.Range(func(id uint32, en store.Entry) bool {
		if en.Key == rootKey || norm.HasPrefixDir(en.Key, rootKey) {
			doomed = append(doomed, en.Path)
		}
		return true
	})
	for _, p := range doomed {
		if err := e.applyRemove(p); err != nil {
			return 0, err
		}
	}
	return e.scan(ctx, root)
}

// Stats summarizes engine state for monitoring.
type Stats struct {
	// IndexedCount is the number of paths currently indexed.
	IndexedCount int
	// CacheHitRate is hits/(hits+misses) over the result cache, in [0, 1].
	CacheHitRate float64
	// AverageSearchTime is the mean latency over all searches so far.
	AverageSearchTime time.Duration
}

// Stats returns a snapshot of engine statistics.
func (e *Engine) Stats() Stats {
	hits, misses := e.cache.Stats()
	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	var avg time.Duration
	if ops := e.searchOps.Load(); ops > 0 {
		avg = time.Duration(e.searchNano.Load() / ops)
	}
	return Stats{
		IndexedCount:      e.store.Len(),
		CacheHitRate:      hitRate,
		AverageSearchTime: avg,
	}
}

// CheckIntegrity cross-checks the trie against the path registry and
// returns an ErrIndexCorruption describing the first inconsistency found.
func (e *Engine) CheckIntegrity() error {
	if err := e.guard(); err != nil {
		return err
	}
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	if tl, sl := e.trie.Len(), e.store.Len(); tl != sl {
		return &ErrIndexCorruption{
			Detail: fmt.Sprintf("trie holds %d keys but registry holds %d entries", tl, sl),
		}
	}

	var bad error
	e.trie.Walk(func(key string, id uint32) bool {
		en, ok := e.store.Get(id)
		if !ok {
			bad = &ErrIndexCorruption{
				Detail: fmt.Sprintf("trie key %q references unknown id %d", key, id),
			}
			return false
		}
		if en.Key != key {
			bad = &ErrIndexCorruption{
				Detail: fmt.Sprintf("trie key %q resolves to registry key %q", key, en.Key),
			}
			return false
		}
		return true
	})
	return bad
}

func (e *Engine) guard() error {
	if e.closed.Load() {
		return ErrClosed
	}
	return nil
}

func (e *Engine) setState(key string, s indexer.State) {
	e.mu.Lock()
	e.states[key] = s
	e.mu.Unlock()
}

// enqueue is the watcher sink. Events for a closed engine are dropped.
func (e *Engine) enqueue(ev indexer.Event) {
	_ = e.worker.Enqueue(context.Background(), ev)
}

// applyEvent is the update queue apply function.
func (e *Engine) applyEvent(ev indexer.Event) error {
	switch ev.Type {
	case indexer.Created:
		return e.applyInsert(ev.Path)
	case indexer.Removed:
		return e.applyRemove(ev.Path)
	case indexer.Renamed:
		return e.applyRename(ev.OldPath, ev.Path)
	default:
		return fmt.Errorf("unknown event type %d", ev.Type)
	}
}

func (e *Engine) scan(ctx context.Context, root string) (int, error) {
	start := time.Now()
	e.scanning.Add(1)
	defer e.scanning.Add(-1)

	n, err := e.scanner.Scan(ctx, root, func(path string, isDir bool) error {
		return e.applyInsert(path)
	})
	e.metrics.RecordScan(n, time.Since(start))
	e.logger.LogScan(ctx, root, n, err)
	return n, err
}

func (e *Engine) applyInsert(path string) error {
	if !norm.Valid(path) {
		return &ErrInvalidPath{Path: path, Reason: "empty, relative-only or contains NUL"}
	}
	key := e.norm.Key(path)

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	id, created := e.store.Add(store.Entry{
		Path:    path,
		Key:     key,
		Base:    norm.Base(key),
		Ext:     norm.Ext(key),
		AddedAt: time.Now(),
	})
	if !created {
		return nil
	}
	e.trie.Insert(key, id)
	e.grams.Add(id, norm.Base(key))
	e.invalidateFor(key)
	e.ready.Store(true)
	return nil
}

func (e *Engine) applyRemove(path string) error {
	if !norm.Valid(path) {
		return &ErrInvalidPath{Path: path, Reason: "empty, relative-only or contains NUL"}
	}
	key := e.norm.Key(path)

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	id, en, ok := e.store.Remove(key)
	if !ok {
		return nil
	}
	e.trie.Delete(key)
	e.grams.Remove(id, en.Base)
	e.usage.Forget(key)
	e.invalidateFor(key)
	return nil
}

func (e *Engine) applyRename(oldPath, newPath string) error {
	// Insert before delete: a concurrent search sees the path at its old
	// location, its new location, or both, but never at neither.
	if err := e.applyInsert(newPath); err != nil {
		return err
	}
	return e.applyRemove(oldPath)
}

// invalidateFor drops cached result lists a mutation of key could have
// changed. Stale entries that slip through are caught lazily at read time
// by the existence check in Search.
func (e *Engine) invalidateFor(key string) {
	base := norm.Base(key)
	e.cache.Invalidate(func(query string, _ []rank.Candidate) bool {
		return strings.HasPrefix(key, query) || strings.Contains(base, query)
	})
}
