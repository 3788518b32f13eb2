package domain

import "time"

// CategoryResult is the rollup computed once per run at the end of a
// category's scan. The severity counters always equal the filtered length
// of Issues; TotalIssues always equals len(Issues).
type CategoryResult struct {
	TotalIssues    int     `json:"totalIssues"`
	HighSeverity   int     `json:"highSeverity"`
	MediumSeverity int     `json:"mediumSeverity"`
	LowSeverity    int     `json:"lowSeverity"`
	Issues         []Issue `json:"issues"`
}

// ZeroCategoryResult is the substitute used by the orchestrator's failure
// boundary when a category scanner fails outright.
func ZeroCategoryResult() CategoryResult {
	return CategoryResult{Issues: []Issue{}}
}

// Summary holds the cross-category severity totals of one run.
type Summary struct {
	TotalIssues    int `json:"totalIssues"`
	HighSeverity   int `json:"highSeverity"`
	MediumSeverity int `json:"mediumSeverity"`
	LowSeverity    int `json:"lowSeverity"`
}

// Add folds one category result into the summary.
func (s *Summary) Add(r CategoryResult) {
	s.TotalIssues += r.TotalIssues
	s.HighSeverity += r.HighSeverity
	s.MediumSeverity += r.MediumSeverity
	s.LowSeverity += r.LowSeverity
}

// AuditReport is the unified artifact of one orchestrator run. A new run
// overwrites the previous report file; it is never patched in place.
type AuditReport struct {
	RunID      string                      `json:"runId"`
	Timestamp  time.Time                   `json:"timestamp"`
	Duration   time.Duration               `json:"duration"`
	Summary    Summary                     `json:"summary"`
	Categories map[Category]CategoryResult `json:"categories"`
}

// RunState is the orchestrator's per-run state machine. There is no failed
// terminal state: a run with substituted categories is still a success and
// still persists a report.
type RunState string

const (
	RunIdle               RunState = "idle"
	RunRunning            RunState = "running"
	RunCompleted          RunState = "completed"
	RunPartiallyCompleted RunState = "partially_completed"
)
