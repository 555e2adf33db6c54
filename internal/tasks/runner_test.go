package tasks

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type countingMetrics struct {
	started  atomic.Int64
	failures atomic.Int64
}

func (m *countingMetrics) RecordTaskStarted() { m.started.Add(1) }
func (m *countingMetrics) RecordTaskFailure() { m.failures.Add(1) }

func TestRunner_ExecutesTask(t *testing.T) {
	runner := NewRunner(nil)

	done := make(chan struct{})
	runner.Go("test_task", func(ctx context.Context) {
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Task did not run")
	}
}

func TestRunner_RecoverFromPanic(t *testing.T) {
	metrics := &countingMetrics{}
	runner := NewRunner(metrics)

	runner.Go("panicking_task", func(ctx context.Context) {
		panic("boom")
	})

	// A panicking task must not crash the process and must be waitable
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := runner.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	if metrics.failures.Load() != 1 {
		t.Errorf("Expected 1 recorded failure, got %d", metrics.failures.Load())
	}
}

func TestRunner_ShutdownWaitsForTasks(t *testing.T) {
	runner := NewRunner(nil)

	var finished atomic.Bool
	runner.Go("slow_task", func(ctx context.Context) {
		time.Sleep(100 * time.Millisecond)
		finished.Store(true)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := runner.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	if !finished.Load() {
		t.Error("Shutdown returned before in-flight task finished")
	}
}

func TestRunner_ShutdownTimeout(t *testing.T) {
	runner := NewRunner(nil)

	release := make(chan struct{})
	runner.Go("stuck_task", func(ctx context.Context) {
		<-release
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := runner.Shutdown(ctx); err == nil {
		t.Error("Expected timeout error from Shutdown")
	}
	close(release)
}

func TestRunner_DropsTasksAfterShutdown(t *testing.T) {
	metrics := &countingMetrics{}
	runner := NewRunner(metrics)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := runner.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	runner.Go("late_task", func(ctx context.Context) {
		t.Error("Task ran after shutdown")
	})

	// Give a dropped task a moment to (incorrectly) run
	time.Sleep(50 * time.Millisecond)
	if metrics.started.Load() != 0 {
		t.Errorf("Expected 0 started tasks, got %d", metrics.started.Load())
	}
}

func TestRunner_ConcurrentTasks(t *testing.T) {
	runner := NewRunner(nil)

	var count atomic.Int64
	for i := 0; i < 20; i++ {
		runner.Go("counting_task", func(ctx context.Context) {
			count.Add(1)
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := runner.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	if count.Load() != 20 {
		t.Errorf("Expected 20 tasks to run, got %d", count.Load())
	}
}
