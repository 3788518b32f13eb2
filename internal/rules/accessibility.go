package rules

import (
	"regexp"

	"bytemomo/remora/internal/domain"
)

// AccessibilityRules covers the markup heuristics that can be judged from a
// single line. Full-page semantics belong to the external page auditor.
func AccessibilityRules() []Rule {
	return []Rule{
		{
			ID:             "img-missing-alt",
			Severity:       domain.SeverityHigh,
			Pattern:        regexp.MustCompile(`<img\b[^>]*>`),
			Absent:         regexp.MustCompile(`\balt\s*=`),
			Message:        "img element without an alt attribute",
			Recommendation: "Give every img an alt attribute, empty for decorative images",
		},
		{
			ID:             "click-on-non-interactive",
			Severity:       domain.SeverityMedium,
			Pattern:        regexp.MustCompile(`<(div|span)\b[^>]*onClick`),
			Message:        "Click handler on a non-interactive element",
			Recommendation: "Use a button, or add role and keyboard handling",
		},
		{
			ID:             "positive-tabindex",
			Severity:       domain.SeverityMedium,
			Pattern:        regexp.MustCompile(`tabindex\s*=\s*["']?[1-9]`),
			Message:        "Positive tabindex overrides natural focus order",
			Recommendation: "Use tabindex 0 or -1 only",
		},
		{
			ID:             "autoplay-media",
			Severity:       domain.SeverityMedium,
			Pattern:        regexp.MustCompile(`<(video|audio)\b[^>]*autoplay`),
			Message:        "Autoplaying media disrupts assistive technology",
			Recommendation: "Start playback on user action",
		},
		{
			ID:             "missing-lang",
			Severity:       domain.SeverityMedium,
			Pattern:        regexp.MustCompile(`<html(?:\s[^>]*)?>`),
			Absent:         regexp.MustCompile(`\blang\s*=`),
			Message:        "html element without a lang attribute",
			Recommendation: "Declare the document language on the html element",
		},
		{
			ID:             "placeholder-as-label",
			Severity:       domain.SeverityLow,
			Pattern:        regexp.MustCompile(`<input\b[^>]*placeholder\s*=`),
			Message:        "Placeholder text used where a label may be missing",
			Recommendation: "Pair inputs with label elements",
		},
		{
			ID:             "aria-present",
			Severity:       domain.SeverityInfo,
			Pattern:        regexp.MustCompile(`\baria-[a-z]+\s*=`),
			Message:        "ARIA attributes in use",
			Recommendation: "",
			Positive:       true,
		},
	}
}
