package rules

import (
	"regexp"

	"bytemomo/remora/internal/domain"
)

// TestingRules inspects test suites for focus/skip leftovers and weak
// assertions, and credits suites that assert at all.
func TestingRules() []Rule {
	return []Rule{
		{
			ID:             "focused-test",
			Severity:       domain.SeverityHigh,
			Pattern:        regexp.MustCompile(`\b(describe|it|test)\.only\s*\(`),
			Message:        "Focused test disables the rest of the suite",
			Recommendation: "Remove .only before merging",
		},
		{
			ID:             "skipped-test",
			Severity:       domain.SeverityLow,
			Pattern:        regexp.MustCompile(`\b(describe|it|test)\.skip\s*\(|\bx(describe|it|test)\s*\(`),
			Message:        "Skipped test",
			Recommendation: "Re-enable or delete skipped tests",
		},
		{
			ID:             "disabled-assertion",
			Severity:       domain.SeverityMedium,
			Pattern:        regexp.MustCompile(`^\s*//\s*expect\s*\(`),
			Message:        "Commented-out assertion",
			Recommendation: "Restore or remove the assertion",
		},
		{
			ID:             "snapshot-only",
			Severity:       domain.SeverityLow,
			Pattern:        regexp.MustCompile(`\.toMatchSnapshot\s*\(`),
			Message:        "Snapshot assertion; verify it checks behavior, not noise",
			Recommendation: "Prefer explicit assertions where practical",
		},
		{
			ID:             "todo-in-test",
			Severity:       domain.SeverityLow,
			Pattern:        regexp.MustCompile(`(?i)//\s*(todo|fixme)\b`),
			Message:        "TODO marker in test code",
			Recommendation: "Track the work in the issue tracker",
		},
		{
			ID:             "has-assertions",
			Severity:       domain.SeverityInfo,
			Pattern:        regexp.MustCompile(`\b(expect|assert)\s*[.(]`),
			Message:        "Suite contains assertions",
			Positive:       true,
		},
	}
}
