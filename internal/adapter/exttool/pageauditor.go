package exttool

import (
	"context"
	"encoding/json"
	"fmt"

	"bytemomo/remora/internal/config"
	"bytemomo/remora/internal/domain"
)

// perInputAdapter runs the wrapped adapter once per input and merges the
// findings. Needed for tools that accept a single subject per invocation.
type perInputAdapter struct {
	domain.ToolAdapter
}

func (a perInputAdapter) Invoke(ctx context.Context, root string, inputs []string) ([]domain.ToolFinding, error) {
	var all []domain.ToolFinding
	var firstErr error
	failed := 0
	for _, input := range inputs {
		findings, err := a.ToolAdapter.Invoke(ctx, root, []string{input})
		if err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		all = append(all, findings...)
	}
	if len(inputs) > 0 && failed == len(inputs) {
		return nil, firstErr
	}
	return all, nil
}

// NewPageAuditor adapts a lighthouse-style headless-browser auditor. The
// tool audits a single page per run, so it is invoked once per URL; the
// caller supplies URLs through the files slice.
func NewPageAuditor(tool config.Tool) domain.ToolAdapter {
	return perInputAdapter{ToolAdapter: &CLIAdapter{
		name: "page-auditor",
		tool: tool,
		args: func(root string, urls []string) []string {
			args := []string{"--output", "json", "--quiet", "--chrome-flags=--headless"}
			return append(args, urls...)
		},
		parse: parseLighthouse,
	}}
}

func parseLighthouse(output []byte) ([]domain.ToolFinding, error) {
	var report struct {
		FinalURL string `json:"finalUrl"`
		Audits   map[string]struct {
			ID          string   `json:"id"`
			Title       string   `json:"title"`
			Score       *float64 `json:"score"`
			ScoreDispla string   `json:"scoreDisplayMode"`
		} `json:"audits"`
	}
	if err := json.Unmarshal(output, &report); err != nil {
		return nil, fmt.Errorf("lighthouse json: %w", err)
	}

	var findings []domain.ToolFinding
	for id, audit := range report.Audits {
		if audit.Score == nil || *audit.Score >= 1 {
			continue
		}
		sev := domain.SeverityLow
		switch {
		case *audit.Score == 0:
			sev = domain.SeverityHigh
		case *audit.Score < 0.5:
			sev = domain.SeverityMedium
		}
		findings = append(findings, domain.ToolFinding{
			RuleID:   id,
			Severity: sev,
			Message:  fmt.Sprintf("%s (%s, score %.2f)", audit.Title, report.FinalURL, *audit.Score),
		})
	}
	return findings, nil
}
