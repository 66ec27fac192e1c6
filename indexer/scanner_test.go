package indexer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// fakeLister replays a fixed listing.
type fakeLister struct {
	paths []string
	dirs  map[string]bool
}

func (f *fakeLister) Walk(ctx context.Context, root string, fn func(path string, isDir bool) error) error {
	for _, p := range f.paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(p, f.dirs[p]); err != nil {
			return err
		}
	}
	return nil
}

func TestScanAppliesAll(t *testing.T) {
	l := &fakeLister{
		paths: []string{"/r", "/r/a.txt", "/r/sub", "/r/sub/b.txt"},
		dirs:  map[string]bool{"/r": true, "/r/sub": true},
	}
	s := NewScanner(l, 1, rate.Inf, nil)

	var got []string
	n, err := s.Scan(context.Background(), "/r", func(path string, isDir bool) error {
		got = append(got, path)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, l.paths, got)
}

func TestScanSkipsBadPaths(t *testing.T) {
	l := &fakeLister{paths: []string{"/r/ok1", "/r/bad", "/r/ok2"}}
	s := NewScanner(l, 1, rate.Inf, nil)

	n, err := s.Scan(context.Background(), "/r", func(path string, isDir bool) error {
		if path == "/r/bad" {
			return errors.New("unstatable")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestScanHonorsRateLimit(t *testing.T) {
	paths := make([]string, 3*scanChunkSize)
	for i := range paths {
		paths[i] = "/r/f"
	}
	l := &fakeLister{paths: paths}
	s := NewScanner(l, 1, rate.Limit(1280), nil)

	start := time.Now()
	n, err := s.Scan(context.Background(), "/r", func(string, bool) error {
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, len(paths), n)

	// The first chunk rides the burst; the remaining two chunks must be
	// paid for at 1280 paths/s, so 256 tokens take at least 200ms.
	assert.GreaterOrEqual(t, time.Since(start), 180*time.Millisecond)
}

func TestScanCancel(t *testing.T) {
	paths := make([]string, 1000)
	for i := range paths {
		paths[i] = "/r/f"
	}
	l := &fakeLister{paths: paths}
	s := NewScanner(l, 1, rate.Inf, nil)

	ctx, cancel := context.WithCancel(context.Background())
	seen := 0
	_, err := s.Scan(ctx, "/r", func(path string, isDir bool) error {
		seen++
		if seen == 10 {
			cancel()
		}
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, seen, len(paths))
}

func TestOSListerWalk(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub", ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "b.txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", ".git", "config"), nil, 0o644))

	var files, dirs []string
	err := NewOSLister().Walk(context.Background(), root, func(path string, isDir bool) error {
		if isDir {
			dirs = append(dirs, path)
		} else {
			files = append(files, path)
		}
		return nil
	})
	require.NoError(t, err)

	assert.Len(t, files, 2, "the .git subtree must be pruned")
	assert.Contains(t, files, filepath.Join(root, "a.txt"))
	assert.Contains(t, files, filepath.Join(root, "sub", "b.txt"))
	assert.Contains(t, dirs, filepath.Join(root, "sub"))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "scanning", StateScanning.String())
	assert.Equal(t, "watching", StateWatching.String())
}

func TestFsnotifyWatcherLifecycle(t *testing.T) {
	fw := NewFsnotifyWatcher(nil)
	require.NoError(t, fw.Start(func(Event) {}))

	dir := t.TempDir()
	require.NoError(t, fw.Add(dir))
	require.NoError(t, fw.Close())
	// Idempotent.
	require.NoError(t, fw.Close())
}
