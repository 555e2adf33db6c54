package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Metrics is the subset of the metrics service the runner reports to
type Metrics interface {
	RecordTaskStarted()
	RecordTaskFailure()
}

// Runner executes fire-and-forget background work decoupled from the
// request/response cycle. Tasks are never cancelled once scheduled; Shutdown
// only waits for in-flight tasks to finish. No ordering is guaranteed across
// tasks.
type Runner struct {
	ctx     context.Context
	wg      sync.WaitGroup
	mu      sync.Mutex
	closed  bool
	metrics Metrics
}

// NewRunner creates a new task runner.
// metrics can be nil (e.g. in tests).
func NewRunner(metrics Metrics) *Runner {
	return &Runner{
		ctx:     context.Background(),
		metrics: metrics,
	}
}

// Go schedules fn on its own goroutine. The caller gets no result back; fn
// must persist its own outcome. Panics are caught at the task boundary and
// logged so a broken task can never crash the host process.
func (r *Runner) Go(name string, fn func(ctx context.Context)) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		slog.Warn("task runner closed, dropping task", "task", name)
		return
	}
	r.wg.Add(1)
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.RecordTaskStarted()
	}

	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				if r.metrics != nil {
					r.metrics.RecordTaskFailure()
				}
				slog.Error("background task panicked", "task", name, "panic", fmt.Sprint(rec))
			}
		}()

		start := time.Now()
		slog.Debug("background task started", "task", name)
		fn(r.ctx)
		slog.Debug("background task finished", "task", name, "duration", time.Since(start))
	}()
}

// Shutdown stops accepting new tasks and waits for in-flight tasks until the
// context expires.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown timed out waiting for background tasks: %w", ctx.Err())
	}
}
