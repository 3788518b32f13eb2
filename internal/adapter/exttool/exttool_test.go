package exttool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bytemomo/remora/internal/config"
	"bytemomo/remora/internal/domain"
)

func TestParseESLint(t *testing.T) {
	output := []byte(`[
	  {"filePath": "src/app.js", "messages": [
	    {"ruleId": "no-eval", "severity": 2, "message": "eval can be harmful.", "line": 3},
	    {"ruleId": "", "severity": 1, "message": "Parsing error.", "line": 1}
	  ]},
	  {"filePath": "src/ok.js", "messages": []}
	]`)

	findings, err := parseESLint(output)
	require.NoError(t, err)
	require.Len(t, findings, 2)

	assert.Equal(t, "no-eval", findings[0].RuleID)
	assert.Equal(t, domain.SeverityMedium, findings[0].Severity)
	assert.Equal(t, 3, findings[0].Line)
	assert.Equal(t, "lint-error", findings[1].RuleID)
	assert.Equal(t, domain.SeverityLow, findings[1].Severity)
}

func TestParseStylelint(t *testing.T) {
	output := []byte(`[
	  {"source": "site.css", "warnings": [
	    {"line": 10, "rule": "block-no-empty", "severity": "error", "text": "Unexpected empty block"}
	  ]}
	]`)

	findings, err := parseStylelint(output)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, domain.SeverityMedium, findings[0].Severity)
	assert.Equal(t, "block-no-empty", findings[0].RuleID)
}

func TestParseLighthouseSkipsPassingAudits(t *testing.T) {
	output := []byte(`{
	  "finalUrl": "https://example.com/",
	  "audits": {
	    "color-contrast": {"id": "color-contrast", "title": "Contrast is sufficient", "score": 1},
	    "image-alt": {"id": "image-alt", "title": "Images lack alt text", "score": 0},
	    "tap-targets": {"id": "tap-targets", "title": "Tap targets too small", "score": 0.3}
	  }
	}`)

	findings, err := parseLighthouse(output)
	require.NoError(t, err)
	require.Len(t, findings, 2)

	bySeverity := map[domain.Severity]int{}
	for _, f := range findings {
		bySeverity[f.Severity]++
	}
	assert.Equal(t, 1, bySeverity[domain.SeverityHigh])
	assert.Equal(t, 1, bySeverity[domain.SeverityMedium])
}

func TestParseNpmAudit(t *testing.T) {
	output := []byte(`{
	  "vulnerabilities": {
	    "lodash": {"name": "lodash", "severity": "high", "range": "<4.17.21"},
	    "minimist": {"name": "minimist", "severity": "moderate", "range": "<1.2.6"}
	  }
	}`)

	findings, err := parseNpmAudit(output)
	require.NoError(t, err)
	require.Len(t, findings, 2)
	for _, f := range findings {
		assert.Equal(t, "vulnerable-dependency", f.RuleID)
	}
}

func TestParseErrors(t *testing.T) {
	for name, parse := range map[string]parseFunc{
		"eslint":     parseESLint,
		"stylelint":  parseStylelint,
		"lighthouse": parseLighthouse,
		"npm-audit":  parseNpmAudit,
		"depcheck":   parseDepcheck,
	} {
		if _, err := parse([]byte("not json")); err == nil {
			t.Errorf("%s: expected parse error for garbage output", name)
		}
	}
}

func TestInvokeMissingTool(t *testing.T) {
	adapter := NewScriptLinter(config.Tool{Command: "definitely-not-installed-linter"})

	_, err := adapter.Invoke(context.Background(), t.TempDir(), []string{"a.js"})
	require.Error(t, err)

	var toolErr *domain.ExternalToolError
	assert.True(t, errors.As(err, &toolErr), "expected ExternalToolError, got %T", err)
}

func TestDiagnosticIssueShape(t *testing.T) {
	issue := DiagnosticIssue(domain.CategoryDependency, "vuln-scanner", errors.New("not found"))

	require.NoError(t, issue.Validate())
	assert.Equal(t, "vuln-scanner-unavailable", issue.Type)
	assert.Equal(t, domain.SourceExternalTool, issue.Source)
	assert.Empty(t, issue.File)
}

func TestIssueFromFindingKeepsLocationInvariant(t *testing.T) {
	// Tool reported a rule with no line; file must not dangle alone.
	issue := IssueFromFinding(domain.CategoryAccessibility, domain.ToolFinding{
		File:     "https://example.com/",
		RuleID:   "image-alt",
		Severity: domain.SeverityHigh,
		Message:  "Images lack alt text",
	})
	require.NoError(t, issue.Validate())
	assert.Empty(t, issue.File)
	assert.Equal(t, "https://example.com/", issue.Context)
}

type recordingAdapter struct {
	calls    [][]string
	findings map[string][]domain.ToolFinding
	fail     map[string]error
}

func (r *recordingAdapter) Name() string { return "recorder" }
func (r *recordingAdapter) Invoke(ctx context.Context, root string, inputs []string) ([]domain.ToolFinding, error) {
	r.calls = append(r.calls, inputs)
	key := inputs[0]
	if err := r.fail[key]; err != nil {
		return nil, err
	}
	return r.findings[key], nil
}

func TestPerInputAdapterInvokesOncePerInput(t *testing.T) {
	rec := &recordingAdapter{
		findings: map[string][]domain.ToolFinding{
			"https://a.example": {{RuleID: "color-contrast", Severity: domain.SeverityMedium, Message: "a"}},
			"https://b.example": {{RuleID: "image-alt", Severity: domain.SeverityHigh, Message: "b"}},
		},
	}
	a := perInputAdapter{ToolAdapter: rec}

	findings, err := a.Invoke(context.Background(), ".", []string{"https://a.example", "https://b.example"})
	require.NoError(t, err)

	require.Len(t, rec.calls, 2)
	for _, call := range rec.calls {
		assert.Len(t, call, 1)
	}
	require.Len(t, findings, 2)
	assert.Equal(t, "color-contrast", findings[0].RuleID)
	assert.Equal(t, "image-alt", findings[1].RuleID)
}

func TestPerInputAdapterToleratesPartialFailure(t *testing.T) {
	rec := &recordingAdapter{
		findings: map[string][]domain.ToolFinding{
			"https://ok.example": {{RuleID: "image-alt", Severity: domain.SeverityHigh, Message: "b"}},
		},
		fail: map[string]error{
			"https://down.example": errors.New("navigation timeout"),
		},
	}
	a := perInputAdapter{ToolAdapter: rec}

	findings, err := a.Invoke(context.Background(), ".", []string{"https://down.example", "https://ok.example"})
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "image-alt", findings[0].RuleID)
}

func TestPerInputAdapterAllFailing(t *testing.T) {
	rec := &recordingAdapter{
		fail: map[string]error{
			"https://a.example": errors.New("down"),
			"https://b.example": errors.New("down"),
		},
	}
	a := perInputAdapter{ToolAdapter: rec}

	_, err := a.Invoke(context.Background(), ".", []string{"https://a.example", "https://b.example"})
	require.Error(t, err)
}
