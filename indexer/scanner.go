package indexer

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// State is the lifecycle of a watched root.
type State uint8

const (
	// StateIdle means the root has not been scanned.
	StateIdle State = iota
	// StateScanning means the initial recursive walk is in progress.
	StateScanning
	// StateWatching is the terminal steady state: incremental events only.
	StateWatching
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateWatching:
		return "watching"
	default:
		return "unknown"
	}
}

// Lister is the directory-listing collaborator supplying (path, isDir)
// tuples for bulk indexing. Implementations must honor ctx cancellation.
type Lister interface {
	Walk(ctx context.Context, root string, fn func(path string, isDir bool) error) error
}

// OSLister walks the local file system. Unreadable entries are skipped,
// never fatal. Directory names in SkipNames are pruned entirely.
type OSLister struct {
	SkipNames map[string]struct{}
}

var _ Lister = (*OSLister)(nil)

// NewOSLister creates an OSLister that prunes the usual noise directories.
func NewOSLister() *OSLister {
	return &OSLister{
		SkipNames: map[string]struct{}{
			".git":         {},
			"node_modules": {},
		},
	}
}

// Walk implements Lister on top of filepath.WalkDir.
func (l *OSLister) Walk(ctx context.Context, root string, fn func(path string, isDir bool) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			// Unstatable entry: skip and keep walking.
			return nil
		}
		if d.IsDir() {
			if _, skip := l.SkipNames[d.Name()]; skip && path != root {
				return filepath.SkipDir
			}
		}
		return fn(path, d.IsDir())
	})
}

// scanChunkSize is the granularity at which a scan settles up with the
// rate limiter: one reservation of this many tokens per chunk of paths,
// so long bulk scans yield to concurrent searches between chunks.
const scanChunkSize = 128

// Scanner performs the initial recursive indexing walk for a root. Scans
// are cancellable through their context, bounded in parallelism by a
// semaphore and paced by a rate limiter.
type Scanner struct {
	lister  Lister
	sem     *semaphore.Weighted
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewScanner creates a Scanner. maxConcurrent bounds simultaneous scans
// (< 1 means 1). scanRate limits indexed paths per second; rate.Inf
// disables pacing.
func NewScanner(lister Lister, maxConcurrent int64, scanRate rate.Limit, logger *slog.Logger) *Scanner {
	if lister == nil {
		lister = NewOSLister()
	}
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{
		lister:  lister,
		sem:     semaphore.NewWeighted(maxConcurrent),
		limiter: rate.NewLimiter(scanRate, scanChunkSize),
		logger:  logger,
	}
}

// Scan walks root and applies every discovered path. Apply errors are
// logged and the offending path skipped; only cancellation or a failure
// of the lister itself aborts the scan. Returns the number of applied
// paths.
func (s *Scanner) Scan(ctx context.Context, root string, apply func(path string, isDir bool) error) (int, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return 0, err
	}
	defer s.sem.Release(1)

	count := 0
	seen := 0
	err := s.lister.Walk(ctx, root, func(path string, isDir bool) error {
		// Charge whole chunks against the limiter, keyed on paths seen so
		// a run of unreadable entries is not billed per path.
		if seen%scanChunkSize == 0 {
			if err := s.limiter.WaitN(ctx, scanChunkSize); err != nil {
				return err
			}
		}
		seen++
		if err := apply(path, isDir); err != nil {
			s.logger.Warn("path skipped during scan", "path", path, "error", err)
			return nil
		}
		count++
		return nil
	})
	return count, err
}
