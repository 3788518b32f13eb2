package domain

import "fmt"

// Severity is the closed severity scale for audit issues.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
	SeverityInfo   Severity = "info"
)

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo:
		return true
	}
	return false
}

// Category is one audit discipline.
type Category string

const (
	CategorySecurity      Category = "security"
	CategoryPerformance   Category = "performance"
	CategoryAccessibility Category = "accessibility"
	CategoryTesting       Category = "testing"
	CategoryDependency    Category = "dependency"
)

// AllCategories lists every category in a stable order.
func AllCategories() []Category {
	return []Category{
		CategorySecurity,
		CategoryPerformance,
		CategoryAccessibility,
		CategoryTesting,
		CategoryDependency,
	}
}

// IssueSource tells where an issue came from.
type IssueSource string

const (
	SourcePattern      IssueSource = "custom-pattern"
	SourceExternalTool IssueSource = "external-tool"
)

// Issue is a single finding produced by a rule check or an external tool.
// Issues are append-only: created at match time, written once, never mutated.
type Issue struct {
	Category       Category    `json:"category"`
	Type           string      `json:"type"`
	File           string      `json:"file,omitempty"`
	Line           int         `json:"line,omitempty"`
	Severity       Severity    `json:"severity"`
	Message        string      `json:"message"`
	Code           string      `json:"code,omitempty"`
	Context        string      `json:"context,omitempty"`
	Recommendation string      `json:"recommendation,omitempty"`
	Positive       bool        `json:"positive,omitempty"`
	Source         IssueSource `json:"source"`
}

// Validate checks the structural invariants of an issue: category, severity
// and message are always present, and file/line are both set or both unset.
func (i Issue) Validate() error {
	if i.Category == "" {
		return fmt.Errorf("issue: category is required")
	}
	if i.Message == "" {
		return fmt.Errorf("issue: message is required")
	}
	if !i.Severity.Valid() {
		return fmt.Errorf("issue: invalid severity %q", i.Severity)
	}
	if (i.File == "") != (i.Line == 0) {
		return fmt.Errorf("issue: file and line must be both present or both absent")
	}
	return nil
}

// DedupKey returns the tuple used to collapse duplicate findings. Two rule
// checks matching the same line with the same message count as one issue.
func (i Issue) DedupKey() string {
	return fmt.Sprintf("%s|%d|%s|%s", i.File, i.Line, i.Type, i.Message)
}
