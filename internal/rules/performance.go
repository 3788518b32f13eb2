package rules

import (
	"regexp"

	"bytemomo/remora/internal/domain"
)

// PerformanceRules flags blocking calls, wasteful patterns and stylesheet
// smells visible line by line.
func PerformanceRules() []Rule {
	return []Rule{
		{
			ID:             "sync-fs-call",
			Severity:       domain.SeverityHigh,
			Pattern:        regexp.MustCompile(`\b(readFileSync|writeFileSync|existsSync|readdirSync|statSync)\s*\(`),
			Message:        "Synchronous filesystem call blocks the event loop",
			Recommendation: "Use the async fs API",
		},
		{
			ID:             "json-deep-clone",
			Severity:       domain.SeverityMedium,
			Pattern:        regexp.MustCompile(`JSON\.parse\s*\(\s*JSON\.stringify`),
			Message:        "JSON round-trip used as a deep clone",
			Recommendation: "Use structuredClone or a targeted copy",
		},
		{
			ID:             "console-statement",
			Severity:       domain.SeverityLow,
			Pattern:        regexp.MustCompile(`console\.(log|debug|trace)\s*\(`),
			Message:        "Console statement left in code",
			Recommendation: "Remove debug output or route through a logger",
		},
		{
			ID:             "interval-without-handle",
			Severity:       domain.SeverityMedium,
			Pattern:        regexp.MustCompile(`^\s*setInterval\s*\(`),
			Message:        "setInterval result discarded; timer can never be cleared",
			Recommendation: "Keep the handle and clearInterval when done",
		},
		{
			ID:             "delete-operator",
			Severity:       domain.SeverityLow,
			Pattern:        regexp.MustCompile(`\bdelete\s+[A-Za-z_$][\w$]*\[?`),
			Message:        "delete operator deoptimizes object shapes",
			Recommendation: "Assign undefined or restructure the object",
		},
		{
			ID:             "css-import",
			Severity:       domain.SeverityMedium,
			Pattern:        regexp.MustCompile(`@import\s+`),
			Message:        "@import serializes stylesheet loading",
			Recommendation: "Bundle stylesheets or use link tags",
		},
		{
			ID:             "css-universal-selector",
			Severity:       domain.SeverityLow,
			Pattern:        regexp.MustCompile(`^\s*\*\s*[,{]`),
			Message:        "Universal selector forces full-document matching",
			Recommendation: "Scope the selector",
		},
		{
			ID:             "css-important",
			Severity:       domain.SeverityLow,
			Pattern:        regexp.MustCompile(`!important`),
			Message:        "!important escalates specificity wars",
			Recommendation: "Restructure selectors instead of forcing priority",
		},
		{
			ID:             "inline-base64",
			Severity:       domain.SeverityMedium,
			Pattern:        regexp.MustCompile(`data:[a-z/+.-]+;base64,[A-Za-z0-9+/=]{500,}`),
			Message:        "Large base64 payload inlined in source",
			Recommendation: "Serve binary assets as separate files",
		},
		{
			ID:             "document-write-blocking",
			Severity:       domain.SeverityMedium,
			Pattern:        regexp.MustCompile(`document\.write\s*\(`),
			Message:        "document.write blocks parsing",
			Recommendation: "Inject content after parse instead",
		},
	}
}
