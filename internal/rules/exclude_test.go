package rules

import (
	"reflect"
	"sort"
	"testing"

	"bytemomo/remora/internal/config"
	"bytemomo/remora/internal/domain"
)

func TestResolveExclusions_Merge(t *testing.T) {
	defaults := []string{"d1", "d2"}

	cases := []struct {
		name     string
		override *config.ExcludeRules
		want     []string
	}{
		{
			name:     "no override keeps defaults",
			override: nil,
			want:     []string{"d1", "d2"},
		},
		{
			name:     "disabled clears everything",
			override: &config.ExcludeRules{Enabled: false, AdditionalRules: []string{"r1"}},
			want:     nil,
		},
		{
			name:     "additional unions with defaults",
			override: &config.ExcludeRules{Enabled: true, AdditionalRules: []string{"r1"}},
			want:     []string{"d1", "d2", "r1"},
		},
		{
			name:     "override default keeps only additional",
			override: &config.ExcludeRules{Enabled: true, OverrideDefault: true, AdditionalRules: []string{"r1"}},
			want:     []string{"r1"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveExclusions(defaults, tc.override).Entries()
			sort.Strings(got)
			want := append([]string(nil), tc.want...)
			sort.Strings(want)
			if !reflect.DeepEqual(got, want) {
				t.Errorf("got %v, want %v", got, want)
			}
		})
	}
}

func TestExcludesByRuleIDAndCodeSubstring(t *testing.T) {
	ex := ResolveExclusions([]string{"console-statement", "legacyWidget"}, nil)

	byID := domain.Issue{
		Category: domain.CategoryPerformance,
		Type:     "console-statement",
		Severity: domain.SeverityLow,
		Message:  "Console statement left in code",
		Source:   domain.SourcePattern,
	}
	if !ex.Excludes(byID) {
		t.Error("expected exclusion by rule id")
	}

	byCode := domain.Issue{
		Category: domain.CategorySecurity,
		Type:     "inner-html",
		Severity: domain.SeverityMedium,
		Message:  "innerHTML assignment can introduce XSS",
		Code:     "legacyWidget.innerHTML =",
		Source:   domain.SourcePattern,
	}
	if !ex.Excludes(byCode) {
		t.Error("expected exclusion by matched-code substring")
	}

	kept := domain.Issue{
		Category: domain.CategorySecurity,
		Type:     "eval-usage",
		Severity: domain.SeverityHigh,
		Message:  "eval() usage",
		Code:     "eval(input)",
		Source:   domain.SourcePattern,
	}
	if ex.Excludes(kept) {
		t.Error("unrelated issue should not be excluded")
	}
}
