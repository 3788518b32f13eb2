package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"bytemomo/remora/internal/domain"
)

func makeTasks(n int, run func(ctx context.Context) error) []domain.ScanTask {
	tasks := make([]domain.ScanTask, n)
	for i := range tasks {
		tasks[i] = domain.ScanTask{ID: fmt.Sprintf("task-%d", i), Run: run}
	}
	return tasks
}

func TestRunNeverExceedsLimit(t *testing.T) {
	var inFlight, peak int64

	tasks := makeTasks(100, func(ctx context.Context) error {
		cur := atomic.AddInt64(&inFlight, 1)
		for {
			old := atomic.LoadInt64(&peak)
			if cur <= old || atomic.CompareAndSwapInt64(&peak, old, cur) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		return nil
	})

	exec := Executor{Limit: 10, BatchSize: 40}
	warnings := exec.Run(context.Background(), domain.CategorySecurity, tasks, nil)

	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if got := atomic.LoadInt64(&peak); got > 10 {
		t.Errorf("concurrency limit exceeded: peak %d > 10", got)
	}
}

func TestFailedTaskBecomesWarningNotAbort(t *testing.T) {
	var ran int64
	tasks := makeTasks(20, func(ctx context.Context) error {
		atomic.AddInt64(&ran, 1)
		return nil
	})
	tasks[3].Run = func(ctx context.Context) error { return errors.New("boom") }
	tasks[11].Run = func(ctx context.Context) error { panic("kaboom") }

	exec := Executor{Limit: 4, BatchSize: 10}
	warnings := exec.Run(context.Background(), domain.CategoryTesting, tasks, nil)

	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", warnings)
	}
	if got := atomic.LoadInt64(&ran); got != 18 {
		t.Errorf("expected the 18 healthy tasks to run, got %d", got)
	}
}

func TestProgressReportedInCompletionOrder(t *testing.T) {
	events := make(chan domain.ProgressEvent, 64)

	var mu sync.Mutex
	blocked := true
	release := make(chan struct{})

	tasks := makeTasks(4, nil)
	// First submitted task finishes last.
	tasks[0].Run = func(ctx context.Context) error {
		<-release
		return nil
	}
	for i := 1; i < 4; i++ {
		tasks[i].Run = func(ctx context.Context) error {
			mu.Lock()
			if blocked {
				blocked = false
				defer close(release)
			}
			mu.Unlock()
			return nil
		}
	}

	exec := Executor{Limit: 4}
	exec.Run(context.Background(), domain.CategoryPerformance, tasks, events)
	close(events)

	var order []string
	var counters []int
	for ev := range events {
		order = append(order, ev.Task)
		counters = append(counters, ev.Completed)
	}
	if len(order) != 4 {
		t.Fatalf("expected 4 events, got %d", len(order))
	}
	if order[len(order)-1] != "task-0" {
		t.Errorf("expected slowest task reported last, got order %v", order)
	}
	for i, c := range counters {
		if c != i+1 {
			t.Errorf("completion counter not monotonic: %v", counters)
			break
		}
	}
	if counters[len(counters)-1] != 4 {
		t.Errorf("final counter should equal total, got %v", counters)
	}
}

func TestCancelledContextStopsNewBatches(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var ran int64
	tasks := makeTasks(30, func(c context.Context) error {
		atomic.AddInt64(&ran, 1)
		cancel()
		return nil
	})

	exec := Executor{Limit: 2, BatchSize: 10}
	exec.Run(ctx, domain.CategorySecurity, tasks, nil)

	if got := atomic.LoadInt64(&ran); got > 10 {
		t.Errorf("expected at most one batch after cancellation, ran %d", got)
	}
}

func TestZeroLimitClampedToOne(t *testing.T) {
	var inFlight, peak int64
	tasks := makeTasks(5, func(ctx context.Context) error {
		cur := atomic.AddInt64(&inFlight, 1)
		if cur > atomic.LoadInt64(&peak) {
			atomic.StoreInt64(&peak, cur)
		}
		time.Sleep(time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		return nil
	})

	exec := Executor{Limit: 0}
	exec.Run(context.Background(), domain.CategorySecurity, tasks, nil)

	if got := atomic.LoadInt64(&peak); got != 1 {
		t.Errorf("expected serial execution with zero limit, peak %d", got)
	}
}
