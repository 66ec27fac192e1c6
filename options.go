package pathseek

import (
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/hupe1980/pathseek/indexer"
	"github.com/hupe1980/pathseek/rank"
)

type options struct {
	cacheCapacity    int
	maxResults       int
	queueSize        int
	caseSensitive    bool
	scanRate         rate.Limit
	scanConcurrency  int64
	lister           indexer.Lister
	watcher          indexer.Watcher
	weights          rank.Weights
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures Engine constructor behavior.
//
// Today options primarily exist to avoid exploding the API surface
// (e.g. capacity-specific constructor variants).
type Option func(*options)

// WithCacheCapacity configures the number of query result lists kept in
// the LRU cache. Values below 1 fall back to the default.
func WithCacheCapacity(capacity int) Option {
	return func(o *options) {
		if capacity > 0 {
			o.cacheCapacity = capacity
		}
	}
}

// WithMaxResults configures the upper bound on results per search. Per-call
// limits above this value are clamped.
func WithMaxResults(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxResults = n
		}
	}
}

// WithQueueSize configures the capacity of the bounded update queue that
// decouples file-system events from index writes. Enqueueing blocks when
// the queue is full.
func WithQueueSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.queueSize = n
		}
	}
}

// WithCaseSensitive disables case folding of paths and queries.
// By default matching is case-insensitive.
func WithCaseSensitive(caseSensitive bool) Option {
	return func(o *options) {
		o.caseSensitive = caseSensitive
	}
}

// WithScanRate limits bulk scans to the given number of indexed paths per
// second so background indexing does not starve searches. rate.Inf (the
// default) disables pacing.
func WithScanRate(limit rate.Limit) Option {
	return func(o *options) {
		o.scanRate = limit
	}
}

// WithScanConcurrency bounds the number of simultaneous bulk scans.
func WithScanConcurrency(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.scanConcurrency = n
		}
	}
}

// WithLister configures the directory-listing collaborator used by bulk
// scans. Pass a fake in tests to avoid touching the file system.
//
// If nil is passed, the local file system is walked.
func WithLister(l indexer.Lister) Option {
	return func(o *options) {
		o.lister = l
	}
}

// WithWatcher configures the file-system watcher used by Watch.
//
// If nil is passed, an fsnotify-backed watcher is used.
func WithWatcher(w indexer.Watcher) Option {
	return func(o *options) {
		o.watcher = w
	}
}

// WithRankWeights configures the scoring weights used to order results.
//
// Example:
//
//	w := rank.DefaultWeights
//	w.Recency = 0.5
//	eng, _ := pathseek.New(pathseek.WithRankWeights(w))
func WithRankWeights(w rank.Weights) Option {
	return func(o *options) {
		o.weights = w
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &pathseek.BasicMetricsCollector{}
//	eng, _ := pathseek.New(pathseek.WithMetricsCollector(metrics))
//	// ... use eng ...
//	stats := metrics.GetStats()
//	fmt.Printf("Searches: %d, Avg latency: %dns\n", stats.SearchCount, stats.SearchAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := pathseek.NewJSONLogger(slog.LevelInfo)
//	eng, _ := pathseek.New(pathseek.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		cacheCapacity:    1000,
		maxResults:       50,
		queueSize:        1024,
		scanRate:         rate.Inf,
		scanConcurrency:  2,
		weights:          rank.DefaultWeights,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
