// Package exttool adapts third-party scanners behind one uniform contract:
// invoke the tool, receive (file, line, rule, severity, message) tuples, or
// fail gracefully. A missing or broken tool surfaces as a typed error the
// scanner converts into a single diagnostic issue.
package exttool

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	log "github.com/sirupsen/logrus"

	"bytemomo/remora/internal/config"
	"bytemomo/remora/internal/domain"
)

// parseFunc turns one tool's raw stdout into uniform findings.
type parseFunc func(output []byte) ([]domain.ToolFinding, error)

// argsFunc builds the tool's argument list for a given tree and file set.
type argsFunc func(root string, files []string) []string

// CLIAdapter invokes one external command with a bounded timeout and parses
// its structured output. Linters exit non-zero when they find problems, so
// exit status is ignored whenever stdout is parseable.
type CLIAdapter struct {
	name  string
	tool  config.Tool
	args  argsFunc
	parse parseFunc
}

func (a *CLIAdapter) Name() string { return a.name }

func (a *CLIAdapter) Invoke(ctx context.Context, root string, files []string) ([]domain.ToolFinding, error) {
	if _, err := exec.LookPath(a.tool.Command); err != nil {
		return nil, &domain.ExternalToolError{Tool: a.name, Err: err}
	}

	timeout := a.tool.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append(append([]string(nil), a.tool.Args...), a.args(root, files)...)
	cmd := exec.CommandContext(ctx, a.tool.Command, args...)
	cmd.Dir = root

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if ctx.Err() != nil {
		return nil, &domain.ExternalToolError{Tool: a.name, Err: ctx.Err()}
	}
	if runErr != nil && stdout.Len() == 0 {
		log.WithFields(log.Fields{
			"tool":   a.name,
			"error":  runErr,
			"stderr": truncateOutput(stderr.String()),
		}).Warn("External tool failed")
		return nil, &domain.ExternalToolError{Tool: a.name, Err: runErr}
	}

	findings, err := a.parse(stdout.Bytes())
	if err != nil {
		return nil, &domain.ParseError{Tool: a.name, Err: err}
	}
	return findings, nil
}

// DiagnosticIssue converts a tool failure into the single issue a category
// records instead of aborting.
func DiagnosticIssue(cat domain.Category, tool string, err error) domain.Issue {
	return domain.Issue{
		Category: cat,
		Type:     tool + "-unavailable",
		Severity: domain.SeverityInfo,
		Message:  fmt.Sprintf("%s could not be run: %v", tool, err),
		Source:   domain.SourceExternalTool,
	}
}

// IssueFromFinding maps one uniform tuple into the issue shape.
func IssueFromFinding(cat domain.Category, f domain.ToolFinding) domain.Issue {
	issue := domain.Issue{
		Category: cat,
		Type:     f.RuleID,
		File:     f.File,
		Line:     f.Line,
		Severity: f.Severity,
		Message:  f.Message,
		Source:   domain.SourceExternalTool,
	}
	// Keep the file/line pairing invariant when a tool reports only one.
	if issue.File == "" || issue.Line == 0 {
		issue.File = ""
		issue.Line = 0
		if f.File != "" {
			issue.Context = f.File
		}
	}
	return issue
}

func truncateOutput(s string) string {
	if len(s) <= 500 {
		return s
	}
	return s[:500]
}
