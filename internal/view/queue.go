package view

import (
	"log/slog"
	"sync"
)

// RenderQueue counts render units that are expected but not yet built.
//
// Units are reserved before a build starts and consumed one per built
// instance. Drained is closed the first time the count returns to zero, which
// marks the end of first paint.
//
// Thread-safety: all methods may be called from any goroutine, so an outside
// scheduler can wait on Drained while the view renders.
type RenderQueue struct {
	mu      sync.Mutex
	pending int
	drained bool
	signal  chan struct{}
	logger  *slog.Logger
}

// NewRenderQueue creates a queue with nothing pending.
func NewRenderQueue(logger *slog.Logger) *RenderQueue {
	if logger == nil {
		logger = slog.Default()
	}
	return &RenderQueue{
		signal: make(chan struct{}),
		logger: logger,
	}
}

// Reserve adds n expected render units.
func (q *RenderQueue) Reserve(n int) {
	if n <= 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending += n
}

// Materialize consumes one render unit.
func (q *RenderQueue) Materialize() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.pending == 0 {
		q.logger.Warn("render unit materialized with nothing pending")
		return
	}
	q.pending--
	q.closeIfIdle()
}

// Release consumes n render units at once.
func (q *RenderQueue) Release(n int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.pending = max(q.pending-n, 0)
	q.closeIfIdle()
}

// closeIfIdle must be called with mu held.
func (q *RenderQueue) closeIfIdle() {
	if q.pending == 0 && !q.drained {
		q.drained = true
		close(q.signal)
	}
}

// Pending returns the number of outstanding render units.
func (q *RenderQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending
}

// Drained returns a channel closed once first paint has completed.
//
//	select {
//	case <-ctx.Done():
//	    return ctx.Err()
//	case <-q.Drained():
//	    // first paint done
//	}
func (q *RenderQueue) Drained() <-chan struct{} {
	return q.signal
}
