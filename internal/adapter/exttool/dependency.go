package exttool

import (
	"encoding/json"
	"fmt"

	"bytemomo/remora/internal/config"
	"bytemomo/remora/internal/domain"
)

// NewVulnScanner adapts an npm-audit-style manifest vulnerability scanner.
func NewVulnScanner(tool config.Tool) *CLIAdapter {
	return &CLIAdapter{
		name:  "vuln-scanner",
		tool:  tool,
		args:  func(root string, files []string) []string { return nil },
		parse: parseNpmAudit,
	}
}

// NewDepCheck adapts a depcheck-style unused-dependency detector.
func NewDepCheck(tool config.Tool) *CLIAdapter {
	return &CLIAdapter{
		name:  "dep-check",
		tool:  tool,
		args:  func(root string, files []string) []string { return nil },
		parse: parseDepcheck,
	}
}

func parseNpmAudit(output []byte) ([]domain.ToolFinding, error) {
	var report struct {
		Vulnerabilities map[string]struct {
			Name     string `json:"name"`
			Severity string `json:"severity"`
			Range    string `json:"range"`
		} `json:"vulnerabilities"`
	}
	if err := json.Unmarshal(output, &report); err != nil {
		return nil, fmt.Errorf("npm audit json: %w", err)
	}

	var findings []domain.ToolFinding
	for name, vuln := range report.Vulnerabilities {
		findings = append(findings, domain.ToolFinding{
			RuleID:   "vulnerable-dependency",
			Severity: auditSeverity(vuln.Severity),
			Message:  fmt.Sprintf("%s %s has known vulnerabilities", name, vuln.Range),
		})
	}
	return findings, nil
}

func parseDepcheck(output []byte) ([]domain.ToolFinding, error) {
	var report struct {
		Dependencies    []string `json:"dependencies"`
		DevDependencies []string `json:"devDependencies"`
	}
	if err := json.Unmarshal(output, &report); err != nil {
		return nil, fmt.Errorf("depcheck json: %w", err)
	}

	var findings []domain.ToolFinding
	for _, name := range report.Dependencies {
		findings = append(findings, domain.ToolFinding{
			RuleID:   "unused-dependency",
			Severity: domain.SeverityLow,
			Message:  fmt.Sprintf("dependency %s appears unused", name),
		})
	}
	for _, name := range report.DevDependencies {
		findings = append(findings, domain.ToolFinding{
			RuleID:   "unused-dev-dependency",
			Severity: domain.SeverityLow,
			Message:  fmt.Sprintf("devDependency %s appears unused", name),
		})
	}
	return findings, nil
}

// auditSeverity folds npm's five-step scale onto the report's closed enum.
func auditSeverity(s string) domain.Severity {
	switch s {
	case "critical", "high":
		return domain.SeverityHigh
	case "moderate":
		return domain.SeverityMedium
	case "low":
		return domain.SeverityLow
	}
	return domain.SeverityInfo
}
