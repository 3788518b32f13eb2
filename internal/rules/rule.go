// Package rules holds the line-oriented heuristic rule checks the scanners
// compose. Each check is a pure function from (path, content) to issues, so
// every rule stays independently unit-testable. This is deliberately not an
// AST analyzer.
package rules

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"bytemomo/remora/internal/domain"
)

// Check is one rule check: pure, stateless, zero-or-more issues per file.
type Check func(path, content string) []domain.Issue

// Rule is a regex heuristic with its reporting metadata. Rules iterate
// lines sequentially, so issues within one file come out in source order.
type Rule struct {
	ID       string
	Severity domain.Severity
	Pattern  *regexp.Regexp
	// Absent suppresses the match when it also matches the line. Used for
	// "element without attribute" heuristics.
	Absent         *regexp.Regexp
	Message        string
	Recommendation string
	Positive       bool
}

const maxContextLen = 200

// Checker binds a rule to a category, producing the pure check function.
func (r Rule) Checker(cat domain.Category) Check {
	return func(path, content string) []domain.Issue {
		var out []domain.Issue
		for i, line := range strings.Split(content, "\n") {
			match := r.Pattern.FindString(line)
			if match == "" {
				continue
			}
			if r.Absent != nil && r.Absent.MatchString(line) {
				continue
			}
			out = append(out, domain.Issue{
				Category:       cat,
				Type:           r.ID,
				File:           path,
				Line:           i + 1,
				Severity:       r.Severity,
				Message:        r.Message,
				Code:           match,
				Context:        truncate(strings.TrimSpace(line)),
				Recommendation: r.Recommendation,
				Positive:       r.Positive,
				Source:         domain.SourcePattern,
			})
		}
		return out
	}
}

// Checks binds a whole rule set to a category.
func Checks(cat domain.Category, set []Rule) []Check {
	out := make([]Check, len(set))
	for i, r := range set {
		out[i] = r.Checker(cat)
	}
	return out
}

// ForCategory returns the default rule set of a category. The dependency
// category has none; it scans manifests, not source lines.
func ForCategory(cat domain.Category) []Rule {
	switch cat {
	case domain.CategorySecurity:
		return SecurityRules()
	case domain.CategoryPerformance:
		return PerformanceRules()
	case domain.CategoryAccessibility:
		return AccessibilityRules()
	case domain.CategoryTesting:
		return TestingRules()
	}
	return nil
}

// truncate cuts on a rune boundary so the context stays valid UTF-8.
func truncate(s string) string {
	if len(s) <= maxContextLen {
		return s
	}
	cut := maxContextLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
