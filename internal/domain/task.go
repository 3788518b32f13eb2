package domain

import "context"

// ScanTask is one unit of work submitted to the executor: one file, or one
// dependency/package. Each task carries its own failure boundary; a failing
// task becomes a warning, never an abort.
type ScanTask struct {
	// ID names the task for progress and warnings, usually a file path.
	ID string
	// Run does the work. Errors are reported, not retried.
	Run func(ctx context.Context) error
}
