// Package executor runs scan tasks under a fixed concurrency cap, in
// fixed-size batches. A task failure or panic becomes a warning and never
// aborts sibling tasks; nothing is retried.
package executor

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"bytemomo/remora/internal/domain"
)

type Executor struct {
	// Limit caps the number of tasks in flight at any time. Values below 1
	// are treated as 1.
	Limit int
	// BatchSize bounds how many tasks are scheduled before the executor
	// waits for the whole batch, letting resources be reclaimed between
	// batches on very large trees. Values below 1 run everything as one
	// batch.
	BatchSize int
}

// Run executes all tasks and returns the warnings collected from failed or
// panicked tasks. Progress events are emitted in completion order, not
// submission order. A cancelled context stops scheduling further batches;
// tasks already in flight run to completion.
func (e Executor) Run(ctx context.Context, cat domain.Category, tasks []domain.ScanTask, progress domain.ProgressSink) []string {
	limit := e.Limit
	if limit < 1 {
		limit = 1
	}
	batchSize := e.BatchSize
	if batchSize < 1 {
		batchSize = len(tasks)
	}

	l := log.WithFields(log.Fields{
		"category": cat,
		"tasks":    len(tasks),
		"limit":    limit,
		"batch":    batchSize,
	})
	l.Debug("Executor starting")

	var (
		mu        sync.Mutex
		warnings  []string
		completed int
	)
	total := len(tasks)

	report := func(task string, err error) {
		mu.Lock()
		completed++
		done := completed
		var warning string
		if err != nil {
			warning = fmt.Sprintf("task %s: %v", task, err)
			warnings = append(warnings, warning)
		}
		mu.Unlock()

		if err != nil {
			log.WithFields(log.Fields{
				"category": cat,
				"task":     task,
				"error":    err,
			}).Warn("Scan task failed")
		}
		emit(progress, domain.ProgressEvent{
			Category:  cat,
			Task:      task,
			Completed: done,
			Total:     total,
			Warning:   warning,
		})
	}

	for start := 0; start < len(tasks); start += batchSize {
		if ctx.Err() != nil {
			l.WithField("remaining", len(tasks)-start).Warn("Context done, abandoning remaining batches")
			break
		}

		end := start + batchSize
		if end > len(tasks) {
			end = len(tasks)
		}

		sem := make(chan struct{}, limit)
		var wg sync.WaitGroup
		for _, task := range tasks[start:end] {
			task := task
			sem <- struct{}{}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer func() { <-sem }()
				report(task.ID, runGuarded(ctx, task))
			}()
		}
		wg.Wait()
	}

	return warnings
}

// runGuarded converts a task panic into an error so one defective task
// cannot take down the batch.
func runGuarded(ctx context.Context, task domain.ScanTask) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return task.Run(ctx)
}

// emit delivers a progress event without ever blocking the pipeline. If the
// subscriber lags behind, events are dropped.
func emit(sink domain.ProgressSink, ev domain.ProgressEvent) {
	if sink == nil {
		return
	}
	select {
	case sink <- ev:
	default:
	}
}
