package indexer

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher is the file-system notification collaborator. Implementations
// push change events into the engine's update queue via the sink passed
// to Start.
type Watcher interface {
	// Start begins emitting events to sink. Must be called before Add.
	Start(sink func(Event)) error
	// Add registers a root (recursively) for watching.
	Add(root string) error
	// Close stops watching and releases resources.
	Close() error
}

// FsnotifyWatcher implements Watcher on top of fsnotify.
//
// fsnotify reports a rename as a bare event on the old name, so renames
// surface as Removed(old) followed by Created(new); the engine's Renamed
// event exists for callers that know both names.
type FsnotifyWatcher struct {
	logger  *slog.Logger
	mu      sync.Mutex
	watcher *fsnotify.Watcher
	sink    func(Event)
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

var _ Watcher = (*FsnotifyWatcher)(nil)

// NewFsnotifyWatcher creates an idle watcher.
func NewFsnotifyWatcher(logger *slog.Logger) *FsnotifyWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &FsnotifyWatcher{logger: logger}
}

// Start implements Watcher.
func (fw *FsnotifyWatcher) Start(sink func(Event)) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.watcher != nil {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	fw.watcher = w
	fw.sink = sink
	fw.cancel = cancel

	fw.wg.Add(1)
	go fw.processEvents(ctx)
	return nil
}

// Add implements Watcher: the root and all its subdirectories are watched.
func (fw *FsnotifyWatcher) Add(root string) error {
	fw.mu.Lock()
	w := fw.watcher
	fw.mu.Unlock()
	if w == nil {
		return ErrWorkerClosed
	}
	return fw.addRecursive(root)
}

func (fw *FsnotifyWatcher) addRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if !info.IsDir() {
			return nil
		}
		if err := fw.watcher.Add(path); err != nil {
			fw.logger.Warn("watch add failed", "path", path, "error", err)
		}
		return nil
	})
}

func (fw *FsnotifyWatcher) processEvents(ctx context.Context) {
	defer fw.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handle(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("watcher error", "error", err)
		}
	}
}

func (fw *FsnotifyWatcher) handle(event fsnotify.Event) {
	// Writes do not change the path corpus.
	if event.Op&fsnotify.Create == fsnotify.Create {
		fw.handleCreate(event.Name)
	}
	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		fw.sink(Event{Type: Removed, Path: event.Name})
	}
}

func (fw *FsnotifyWatcher) handleCreate(path string) {
	info, err := os.Stat(path)
	if err != nil {
		// Gone already; nothing to index.
		return
	}
	if !info.IsDir() {
		fw.sink(Event{Type: Created, Path: path})
		return
	}

	// A new directory may already contain entries (e.g. moved in from
	// outside the watched tree): watch it and emit its contents.
	if err := fw.addRecursive(path); err != nil {
		fw.logger.Warn("watch add failed", "path", path, "error", err)
	}
	_ = filepath.Walk(path, func(p string, _ os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		fw.sink(Event{Type: Created, Path: p})
		return nil
	})
}

// Close implements Watcher. Idempotent.
func (fw *FsnotifyWatcher) Close() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.watcher == nil {
		return nil
	}
	fw.cancel()
	err := fw.watcher.Close()
	fw.wg.Wait()
	fw.watcher = nil
	return err
}
