// Package scanner holds the per-category audit scanners. Each scanner
// enumerates its inputs, dispatches them through the bounded executor,
// streams every match to its category's issue file and finally replays the
// stream through the deduplicator to produce the category result.
package scanner

import (
	"context"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"bytemomo/remora/internal/adapter/exttool"
	"bytemomo/remora/internal/config"
	"bytemomo/remora/internal/dedup"
	"bytemomo/remora/internal/domain"
	"bytemomo/remora/internal/enumerate"
	"bytemomo/remora/internal/executor"
	"bytemomo/remora/internal/rules"
	"bytemomo/remora/internal/stream"
)

// Scanner is the contract every category implements.
type Scanner interface {
	Category() domain.Category
	Run(ctx context.Context) (domain.CategoryResult, error)
}

// New builds the canonical scanner for a category, wiring its default rule
// set, exclusions and external collaborators from the configuration.
func New(cat domain.Category, cfg *config.Audit, progress domain.ProgressSink) Scanner {
	if cat == domain.CategoryDependency {
		return NewDependencyScanner(cfg, progress)
	}

	var override *config.ExcludeRules
	if o, ok := cfg.ExcludeRule[cat]; ok {
		override = &o
	}

	fs := &FileScanner{
		Cat:        cat,
		Cfg:        cfg,
		Enum:       enumerate.New(cfg),
		Exec:       executor.Executor{Limit: cfg.Concurrency, BatchSize: cfg.BatchSize},
		Checks:     rules.Checks(cat, rules.ForCategory(cat)),
		Exclusions: rules.ResolveExclusions(nil, override),
		Progress:   progress,
	}

	switch cat {
	case domain.CategorySecurity:
		if cfg.Tools.ScriptLinter.Enabled {
			fs.Tools = append(fs.Tools, exttool.NewScriptLinter(cfg.Tools.ScriptLinter))
		}
	case domain.CategoryPerformance:
		if cfg.Tools.StylesheetLinter.Enabled {
			fs.Tools = append(fs.Tools, exttool.NewStylesheetLinter(cfg.Tools.StylesheetLinter))
		}
	case domain.CategoryAccessibility:
		if cfg.Tools.PageAuditor.Enabled && len(cfg.PageURLs) > 0 {
			fs.Tools = append(fs.Tools, exttool.NewPageAuditor(cfg.Tools.PageAuditor))
			fs.ToolInputs = cfg.PageURLs
		}
	}
	return fs
}

// FileScanner is the canonical file-list scanner used by the security,
// performance, accessibility and testing categories.
type FileScanner struct {
	Cat        domain.Category
	Cfg        *config.Audit
	Enum       *enumerate.Enumerator
	Exec       executor.Executor
	Checks     []rules.Check
	Exclusions rules.Exclusions
	// Tools are invoked once per category after the file tasks finish.
	Tools []domain.ToolAdapter
	// ToolInputs overrides the file list handed to tools, e.g. page URLs
	// for the live-page auditor.
	ToolInputs []string
	Progress   domain.ProgressSink
}

func (s *FileScanner) Category() domain.Category { return s.Cat }

// Run scans every enumerated file under the concurrency cap, streaming
// matches as they are found so memory residency stays bounded by the
// current batch, never by the total number of findings.
func (s *FileScanner) Run(ctx context.Context) (domain.CategoryResult, error) {
	files, err := s.Enum.FilesFor(s.Cat)
	if err != nil {
		return domain.ZeroCategoryResult(), err
	}

	w, err := stream.NewWriter(s.Cfg.OutputDir, s.Cat)
	if err != nil {
		return domain.ZeroCategoryResult(), err
	}

	l := log.WithFields(log.Fields{"category": s.Cat, "files": len(files)})
	l.Info("Category scan starting")

	tasks := make([]domain.ScanTask, len(files))
	for i, rel := range files {
		rel := rel
		tasks[i] = domain.ScanTask{
			ID: rel,
			Run: func(ctx context.Context) error {
				return s.scanFile(rel, w)
			},
		}
	}

	warnings := s.Exec.Run(ctx, s.Cat, tasks, s.Progress)
	if len(warnings) > 0 {
		l.WithField("warnings", len(warnings)).Warn("Some scan tasks failed")
	}

	s.runTools(ctx, files, w)

	if err := w.Close(); err != nil {
		return domain.ZeroCategoryResult(), err
	}

	result, err := dedup.Aggregate(w.Path())
	if err != nil {
		return domain.ZeroCategoryResult(), err
	}

	l.WithFields(log.Fields{
		"total":  result.TotalIssues,
		"high":   result.HighSeverity,
		"medium": result.MediumSeverity,
		"low":    result.LowSeverity,
	}).Info("Category scan complete")
	return result, nil
}

// scanFile applies every rule check to one file in line order and streams
// the surviving matches. Unreadable files are skipped via the task's
// failure boundary.
func (s *FileScanner) scanFile(rel string, w *stream.Writer) error {
	data, err := os.ReadFile(filepath.Join(s.Cfg.Root, filepath.FromSlash(rel)))
	if err != nil {
		return &domain.FileAccessError{Path: rel, Err: err}
	}

	content := string(data)
	for _, check := range s.Checks {
		for _, issue := range check(rel, content) {
			if s.Exclusions.Excludes(issue) {
				continue
			}
			if err := w.Write(issue); err != nil {
				return err
			}
		}
	}
	return nil
}

// runTools invokes each external collaborator once. A failing tool is
// recorded as a single diagnostic issue, never an abort.
func (s *FileScanner) runTools(ctx context.Context, files []string, w *stream.Writer) {
	inputs := s.ToolInputs
	if inputs == nil {
		inputs = files
	}
	for _, tool := range s.Tools {
		findings, err := tool.Invoke(ctx, s.Cfg.Root, inputs)
		if err != nil {
			log.WithFields(log.Fields{
				"category": s.Cat,
				"tool":     tool.Name(),
				"error":    err,
			}).Warn("External tool unavailable, recording diagnostic issue")
			writeIssue(w, exttool.DiagnosticIssue(s.Cat, tool.Name(), err))
			continue
		}
		for _, f := range findings {
			issue := exttool.IssueFromFinding(s.Cat, f)
			if s.Exclusions.Excludes(issue) {
				continue
			}
			writeIssue(w, issue)
		}
	}
}

func writeIssue(w *stream.Writer, issue domain.Issue) {
	if err := issue.Validate(); err != nil {
		log.WithError(err).Warn("Dropping invalid issue")
		return
	}
	if err := w.Write(issue); err != nil {
		log.WithError(err).Warn("Failed to stream issue")
	}
}

var _ Scanner = (*FileScanner)(nil)
