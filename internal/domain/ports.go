package domain

import (
	"context"
	"time"
)

// IssueSink receives issues as they are discovered. Implementations must
// keep each written record readable back as one intact line.
type IssueSink interface {
	Write(Issue) error
	Close() error
}

// ReportStore persists per-category results and the unified report.
type ReportStore interface {
	SaveCategory(cat Category, res CategoryResult, ts time.Time) error
	SaveReport(report *AuditReport) error
}

// ToolFinding is the uniform tuple every external collaborator is adapted
// to: invoke tool, receive tuples or fail gracefully.
type ToolFinding struct {
	File     string
	Line     int
	RuleID   string
	Severity Severity
	Message  string
}

// ToolAdapter wraps one external tool behind the uniform contract.
type ToolAdapter interface {
	Name() string
	Invoke(ctx context.Context, root string, files []string) ([]ToolFinding, error)
}

// ProgressEvent is emitted in completion order while tasks execute. A
// presentation layer subscribes to the event channel; the pipeline never
// prints.
type ProgressEvent struct {
	Category  Category
	Task      string
	Completed int
	Total     int
	Warning   string
}

// ProgressSink receives progress events. A nil sink is always allowed.
type ProgressSink chan<- ProgressEvent
