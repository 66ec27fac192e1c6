package indexer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
)

// ErrWorkerClosed is returned by Enqueue after Close.
var ErrWorkerClosed = errors.New("indexer: worker closed")

// Worker drains a bounded event queue with a single goroutine and applies
// each event through the supplied function. The bounded channel gives
// producers natural backpressure instead of unbounded callback fan-out.
//
// A failing event is logged and skipped; the drain loop never terminates
// on a single bad event.
type Worker struct {
	apply  func(Event) error
	events chan Event
	stopCh chan struct{}
	wg     sync.WaitGroup
	closed atomic.Bool
	logger *slog.Logger

	processed atomic.Int64
	failed    atomic.Int64
}

// NewWorker creates a Worker with the given queue size. queueSize < 1 is
// raised to 1. The worker does not run until Start.
func NewWorker(queueSize int, apply func(Event) error, logger *slog.Logger) *Worker {
	if queueSize < 1 {
		queueSize = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		apply:  apply,
		events: make(chan Event, queueSize),
		stopCh: make(chan struct{}),
		logger: logger,
	}
}

// Start launches the drain goroutine.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.run()
}

func (w *Worker) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopCh:
			// Drain what is already queued before exiting.
			for {
				select {
				case ev := <-w.events:
					w.applyOne(ev)
				default:
					return
				}
			}
		case ev := <-w.events:
			w.applyOne(ev)
		}
	}
}

func (w *Worker) applyOne(ev Event) {
	if err := w.apply(ev); err != nil {
		w.failed.Add(1)
		w.logger.Warn("event skipped",
			"type", ev.Type.String(),
			"path", ev.Path,
			"error", err,
		)
		return
	}
	w.processed.Add(1)
}

// Enqueue pushes an event onto the queue, blocking when it is full.
// It returns an error only when the worker is closed or ctx is done.
func (w *Worker) Enqueue(ctx context.Context, ev Event) error {
	if w.closed.Load() {
		return ErrWorkerClosed
	}
	select {
	case w.events <- ev:
		return nil
	case <-w.stopCh:
		return ErrWorkerClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Processed returns the number of successfully applied events.
func (w *Worker) Processed() int64 { return w.processed.Load() }

// Failed returns the number of skipped events.
func (w *Worker) Failed() int64 { return w.failed.Load() }

// Close stops the worker after draining queued events. Idempotent.
func (w *Worker) Close() {
	if !w.closed.CompareAndSwap(false, true) {
		return
	}
	close(w.stopCh)
	w.wg.Wait()
}
