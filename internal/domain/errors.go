package domain

import "fmt"

// FileAccessError marks an unreadable file or directory. Logged and
// skipped; never aborts a scan.
type FileAccessError struct {
	Path string
	Err  error
}

func (e *FileAccessError) Error() string { return fmt.Sprintf("access %s: %v", e.Path, e.Err) }
func (e *FileAccessError) Unwrap() error { return e.Err }

// ExternalToolError marks a failed or missing external tool invocation.
// Recorded as one diagnostic issue; never aborts the category.
type ExternalToolError struct {
	Tool string
	Err  error
}

func (e *ExternalToolError) Error() string { return fmt.Sprintf("tool %s: %v", e.Tool, e.Err) }
func (e *ExternalToolError) Unwrap() error { return e.Err }

// ParseError marks unparsable external tool output.
type ParseError struct {
	Tool string
	Err  error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse %s output: %v", e.Tool, e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// CategoryFailure is recorded when a scanner fails anywhere inside its run.
// The orchestrator's boundary converts it into a zero-valued result.
type CategoryFailure struct {
	Category Category
	Reason   string
}

func (e *CategoryFailure) Error() string {
	return fmt.Sprintf("category %s failed: %s", e.Category, e.Reason)
}

// PersistenceError is the only error that propagates to the caller as a
// run failure.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("persist %s: %v", e.Path, e.Err) }
func (e *PersistenceError) Unwrap() error { return e.Err }
