package exttool

import (
	"encoding/json"
	"fmt"

	"bytemomo/remora/internal/config"
	"bytemomo/remora/internal/domain"
)

// NewScriptLinter adapts an eslint-style linter: JSON array of per-file
// results with per-message rule, line and severity.
func NewScriptLinter(tool config.Tool) *CLIAdapter {
	return &CLIAdapter{
		name: "script-linter",
		tool: tool,
		args: func(root string, files []string) []string {
			return append([]string{"--format", "json"}, files...)
		},
		parse: parseESLint,
	}
}

// NewStylesheetLinter adapts a stylelint-style linter.
func NewStylesheetLinter(tool config.Tool) *CLIAdapter {
	return &CLIAdapter{
		name: "stylesheet-linter",
		tool: tool,
		args: func(root string, files []string) []string {
			return append([]string{"--formatter", "json"}, files...)
		},
		parse: parseStylelint,
	}
}

func parseESLint(output []byte) ([]domain.ToolFinding, error) {
	var results []struct {
		FilePath string `json:"filePath"`
		Messages []struct {
			RuleID   string `json:"ruleId"`
			Severity int    `json:"severity"`
			Message  string `json:"message"`
			Line     int    `json:"line"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(output, &results); err != nil {
		return nil, fmt.Errorf("eslint json: %w", err)
	}

	var findings []domain.ToolFinding
	for _, res := range results {
		for _, msg := range res.Messages {
			ruleID := msg.RuleID
			if ruleID == "" {
				ruleID = "lint-error"
			}
			findings = append(findings, domain.ToolFinding{
				File:     res.FilePath,
				Line:     msg.Line,
				RuleID:   ruleID,
				Severity: lintSeverity(msg.Severity),
				Message:  msg.Message,
			})
		}
	}
	return findings, nil
}

func parseStylelint(output []byte) ([]domain.ToolFinding, error) {
	var results []struct {
		Source   string `json:"source"`
		Warnings []struct {
			Line     int    `json:"line"`
			Rule     string `json:"rule"`
			Severity string `json:"severity"`
			Text     string `json:"text"`
		} `json:"warnings"`
	}
	if err := json.Unmarshal(output, &results); err != nil {
		return nil, fmt.Errorf("stylelint json: %w", err)
	}

	var findings []domain.ToolFinding
	for _, res := range results {
		for _, w := range res.Warnings {
			sev := domain.SeverityLow
			if w.Severity == "error" {
				sev = domain.SeverityMedium
			}
			findings = append(findings, domain.ToolFinding{
				File:     res.Source,
				Line:     w.Line,
				RuleID:   w.Rule,
				Severity: sev,
				Message:  w.Text,
			})
		}
	}
	return findings, nil
}

// lintSeverity maps the numeric eslint scale: 2 is an error, 1 a warning.
func lintSeverity(n int) domain.Severity {
	if n >= 2 {
		return domain.SeverityMedium
	}
	return domain.SeverityLow
}
