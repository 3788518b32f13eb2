// Package jsonreport persists category and comprehensive audit reports as
// pretty-printed JSON files.
package jsonreport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"bytemomo/remora/internal/domain"
)

type Writer struct {
	OutDir string // e.g., ./audit-output
}

func New(out string) *Writer { return &Writer{OutDir: out} }

// categoryReport is the on-disk shape of one category's report.
type categoryReport struct {
	Timestamp      time.Time      `json:"timestamp"`
	Category       string         `json:"category"`
	TotalIssues    int            `json:"totalIssues"`
	HighSeverity   int            `json:"highSeverity"`
	MediumSeverity int            `json:"mediumSeverity"`
	LowSeverity    int            `json:"lowSeverity"`
	Issues         []domain.Issue `json:"issues"`
}

// CategoryReportPath returns where one category's report lands.
func (w *Writer) CategoryReportPath(cat domain.Category) string {
	return filepath.Join(w.OutDir, string(cat)+"-audit-report.json")
}

// ReportPath returns where the comprehensive report lands.
func (w *Writer) ReportPath() string {
	return filepath.Join(w.OutDir, "comprehensive-audit-report.json")
}

func (w *Writer) SaveCategory(cat domain.Category, res domain.CategoryResult, ts time.Time) error {
	return writeJSON(w.CategoryReportPath(cat), categoryReport{
		Timestamp:      ts,
		Category:       string(cat),
		TotalIssues:    res.TotalIssues,
		HighSeverity:   res.HighSeverity,
		MediumSeverity: res.MediumSeverity,
		LowSeverity:    res.LowSeverity,
		Issues:         res.Issues,
	})
}

func (w *Writer) SaveReport(report *domain.AuditReport) error {
	return writeJSON(w.ReportPath(), report)
}

// writeJSON writes to a temp file in the target directory and renames it
// into place, so readers never observe a half-written report.
func writeJSON(path string, v any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &domain.PersistenceError{Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &domain.PersistenceError{Path: path, Err: err}
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		tmp.Close()
		return &domain.PersistenceError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &domain.PersistenceError{Path: path, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &domain.PersistenceError{Path: path, Err: err}
	}
	return nil
}

var _ domain.ReportStore = (*Writer)(nil)
