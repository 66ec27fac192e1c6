package pathseek

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with pathseek-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithRoot adds a root field to the logger (useful for tagging scans).
func (l *Logger) WithRoot(root string) *Logger {
	return &Logger{
		Logger: l.Logger.With("root", root),
	}
}

// LogInsert logs a path insertion.
func (l *Logger) LogInsert(ctx context.Context, path string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "insert failed",
			"path", path,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "insert completed",
			"path", path,
		)
	}
}

// LogRemove logs a path removal.
func (l *Logger) LogRemove(ctx context.Context, path string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "remove failed",
			"path", path,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "remove completed",
			"path", path,
		)
	}
}

// LogRename logs a path rename.
func (l *Logger) LogRename(ctx context.Context, oldPath, newPath string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "rename failed",
			"old_path", oldPath,
			"new_path", newPath,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "rename completed",
			"old_path", oldPath,
			"new_path", newPath,
		)
	}
}

// LogSearch logs a search operation.
func (l *Logger) LogSearch(ctx context.Context, query string, resultsFound int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"query", query,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search completed",
			"query", query,
			"results", resultsFound,
		)
	}
}

// LogScan logs a bulk scan of a directory tree.
func (l *Logger) LogScan(ctx context.Context, root string, indexed int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "scan failed",
			"root", root,
			"indexed", indexed,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "scan completed",
			"root", root,
			"indexed", indexed,
		)
	}
}

// LogWatch logs the start of file-system watching for a root.
func (l *Logger) LogWatch(ctx context.Context, root string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "watch failed",
			"root", root,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "watch started",
			"root", root,
		)
	}
}
