package rules

import (
	"regexp"

	"bytemomo/remora/internal/domain"
)

// SecurityRules is the default security rule set: injection sinks, secret
// leakage and weak primitives observable on a single line.
func SecurityRules() []Rule {
	return []Rule{
		{
			ID:             "eval-usage",
			Severity:       domain.SeverityHigh,
			Pattern:        regexp.MustCompile(`\beval\s*\(`),
			Message:        "eval() executes arbitrary strings as code",
			Recommendation: "Replace eval() with JSON.parse or explicit dispatch",
		},
		{
			ID:             "function-constructor",
			Severity:       domain.SeverityHigh,
			Pattern:        regexp.MustCompile(`new\s+Function\s*\(`),
			Message:        "Function constructor executes strings as code",
			Recommendation: "Avoid building code from strings",
		},
		{
			ID:             "inner-html",
			Severity:       domain.SeverityMedium,
			Pattern:        regexp.MustCompile(`\.innerHTML\s*=`),
			Message:        "innerHTML assignment can introduce XSS",
			Recommendation: "Use textContent or a sanitizer",
		},
		{
			ID:             "dangerously-set-inner-html",
			Severity:       domain.SeverityMedium,
			Pattern:        regexp.MustCompile(`dangerouslySetInnerHTML`),
			Message:        "dangerouslySetInnerHTML bypasses React escaping",
			Recommendation: "Sanitize the markup before rendering",
		},
		{
			ID:             "document-write",
			Severity:       domain.SeverityMedium,
			Pattern:        regexp.MustCompile(`document\.write\s*\(`),
			Message:        "document.write can inject unescaped content",
			Recommendation: "Build DOM nodes instead of writing raw markup",
		},
		{
			ID:             "hardcoded-secret",
			Severity:       domain.SeverityHigh,
			Pattern:        regexp.MustCompile(`(?i)(password|passwd|secret|api[_-]?key|auth[_-]?token)\s*[:=]\s*['"][^'"]{4,}['"]`),
			Message:        "Possible hardcoded credential",
			Recommendation: "Move secrets to environment configuration",
		},
		{
			ID:             "insecure-url",
			Severity:       domain.SeverityLow,
			Pattern:        regexp.MustCompile(`['"]http://[^'"\s]+['"]`),
			Message:        "Insecure http:// URL",
			Recommendation: "Use https:// endpoints",
		},
		{
			ID:             "child-process-exec",
			Severity:       domain.SeverityHigh,
			Pattern:        regexp.MustCompile(`child_process|\bexecSync\s*\(`),
			Message:        "Shell execution from application code",
			Recommendation: "Validate and allowlist any shell input",
		},
		{
			ID:             "weak-hash",
			Severity:       domain.SeverityMedium,
			Pattern:        regexp.MustCompile(`createHash\s*\(\s*['"](md5|sha1)['"]`),
			Message:        "Weak hash algorithm",
			Recommendation: "Use SHA-256 or stronger",
		},
		{
			ID:             "blank-target-noopener",
			Severity:       domain.SeverityLow,
			Pattern:        regexp.MustCompile(`target\s*=\s*["']_blank["']`),
			Message:        "target=\"_blank\" link; verify rel=\"noopener\" is set",
			Recommendation: "Add rel=\"noopener noreferrer\" to external links",
		},
		{
			ID:             "sensitive-storage",
			Severity:       domain.SeverityMedium,
			Pattern:        regexp.MustCompile(`(?i)localStorage\.setItem\s*\(\s*['"](token|password|secret)`),
			Message:        "Sensitive value stored in localStorage",
			Recommendation: "Keep tokens in httpOnly cookies or memory",
		},
	}
}
