package rules

import (
	"strings"

	"bytemomo/remora/internal/config"
	"bytemomo/remora/internal/domain"
)

// Exclusions is the effective exclude-rule set of one category, applied as
// a final filter before issues are persisted. An entry excludes an issue
// when it equals the issue's rule id, or when it occurs as a substring of
// the matched code.
type Exclusions struct {
	entries []string
}

// ResolveExclusions merges the category defaults with an optional override
// block: disabled means no exclusions at all; override_default keeps only
// the supplied additional rules; otherwise the default set is unioned with
// the additional rules. A nil override leaves the defaults in force.
func ResolveExclusions(defaults []string, override *config.ExcludeRules) Exclusions {
	if override == nil {
		return Exclusions{entries: append([]string(nil), defaults...)}
	}
	if !override.Enabled {
		return Exclusions{}
	}
	if override.OverrideDefault {
		return Exclusions{entries: append([]string(nil), override.AdditionalRules...)}
	}

	seen := make(map[string]struct{}, len(defaults)+len(override.AdditionalRules))
	var merged []string
	for _, e := range append(append([]string(nil), defaults...), override.AdditionalRules...) {
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		merged = append(merged, e)
	}
	return Exclusions{entries: merged}
}

// Entries exposes the effective set, mostly for logging and tests.
func (e Exclusions) Entries() []string { return e.entries }

// Excludes reports whether the issue should be dropped before persistence.
func (e Exclusions) Excludes(issue domain.Issue) bool {
	for _, entry := range e.entries {
		if entry == issue.Type {
			return true
		}
		if issue.Code != "" && strings.Contains(issue.Code, entry) {
			return true
		}
	}
	return false
}
