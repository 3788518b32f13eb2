package scanner

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"bytemomo/remora/internal/adapter/exttool"
	"bytemomo/remora/internal/config"
	"bytemomo/remora/internal/dedup"
	"bytemomo/remora/internal/domain"
	"bytemomo/remora/internal/executor"
	"bytemomo/remora/internal/rules"
	"bytemomo/remora/internal/stream"
)

const manifestName = "package.json"

// packageManifest is the subset of the package manifest the dependency
// scanner inspects.
type packageManifest struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// dependencyEntry is one declared dependency, the unit of work for the
// dependency scanner's executor tasks.
type dependencyEntry struct {
	Name    string
	Version string
	Dev     bool
	// AlsoRuntime is set on dev entries that shadow a runtime entry.
	AlsoRuntime bool
}

// DependencyScanner audits the declared dependency manifest and, when the
// external collaborators are enabled, the vulnerability and unused-package
// reports. It has no file classes of its own.
type DependencyScanner struct {
	Cfg        *config.Audit
	Exec       executor.Executor
	Exclusions rules.Exclusions
	Tools      []domain.ToolAdapter
	Progress   domain.ProgressSink
}

// NewDependencyScanner wires the dependency scanner from the configuration.
func NewDependencyScanner(cfg *config.Audit, progress domain.ProgressSink) *DependencyScanner {
	var override *config.ExcludeRules
	if o, ok := cfg.ExcludeRule[domain.CategoryDependency]; ok {
		override = &o
	}
	ds := &DependencyScanner{
		Cfg:        cfg,
		Exec:       executor.Executor{Limit: cfg.Concurrency, BatchSize: cfg.BatchSize},
		Exclusions: rules.ResolveExclusions(nil, override),
		Progress:   progress,
	}
	if cfg.Tools.VulnScanner.Enabled {
		ds.Tools = append(ds.Tools, exttool.NewVulnScanner(cfg.Tools.VulnScanner))
	}
	if cfg.Tools.DepCheck.Enabled {
		ds.Tools = append(ds.Tools, exttool.NewDepCheck(cfg.Tools.DepCheck))
	}
	return ds
}

func (s *DependencyScanner) Category() domain.Category { return domain.CategoryDependency }

// Run audits every declared dependency as its own task, then folds in the
// external tool reports. A repository without a manifest yields an empty
// result, not a failure.
func (s *DependencyScanner) Run(ctx context.Context) (domain.CategoryResult, error) {
	w, err := stream.NewWriter(s.Cfg.OutputDir, domain.CategoryDependency)
	if err != nil {
		return domain.ZeroCategoryResult(), err
	}

	entries, manifestFound, err := s.loadManifest()
	if err != nil {
		return domain.ZeroCategoryResult(), err
	}

	l := log.WithFields(log.Fields{"category": domain.CategoryDependency, "dependencies": len(entries)})
	if !manifestFound {
		l.Info("No package manifest found, dependency scan limited to external tools")
	} else {
		l.Info("Category scan starting")
	}

	hasInstallTree := dirExists(filepath.Join(s.Cfg.Root, "node_modules"))

	tasks := make([]domain.ScanTask, len(entries))
	for i, entry := range entries {
		entry := entry
		tasks[i] = domain.ScanTask{
			ID: entry.Name,
			Run: func(ctx context.Context) error {
				return s.auditEntry(entry, hasInstallTree, w)
			},
		}
	}

	warnings := s.Exec.Run(ctx, domain.CategoryDependency, tasks, s.Progress)
	if len(warnings) > 0 {
		l.WithField("warnings", len(warnings)).Warn("Some dependency tasks failed")
	}

	for _, tool := range s.Tools {
		findings, err := tool.Invoke(ctx, s.Cfg.Root, nil)
		if err != nil {
			l.WithFields(log.Fields{"tool": tool.Name(), "error": err}).
				Warn("External tool unavailable, recording diagnostic issue")
			writeIssue(w, exttool.DiagnosticIssue(domain.CategoryDependency, tool.Name(), err))
			continue
		}
		for _, f := range findings {
			issue := exttool.IssueFromFinding(domain.CategoryDependency, f)
			if s.Exclusions.Excludes(issue) {
				continue
			}
			writeIssue(w, issue)
		}
	}

	if err := w.Close(); err != nil {
		return domain.ZeroCategoryResult(), err
	}
	return dedup.Aggregate(w.Path())
}

// loadManifest reads and flattens the package manifest. A missing manifest
// is reported via the second return, an unparseable one is a scan failure.
func (s *DependencyScanner) loadManifest() ([]dependencyEntry, bool, error) {
	path := filepath.Join(s.Cfg.Root, manifestName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, &domain.FileAccessError{Path: manifestName, Err: err}
	}

	var m packageManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, false, &domain.ParseError{Tool: manifestName, Err: err}
	}

	entries := make([]dependencyEntry, 0, len(m.Dependencies)+len(m.DevDependencies))
	for name, version := range m.Dependencies {
		entries = append(entries, dependencyEntry{Name: name, Version: version})
	}
	for name, version := range m.DevDependencies {
		_, shadowed := m.Dependencies[name]
		entries = append(entries, dependencyEntry{Name: name, Version: version, Dev: true, AlsoRuntime: shadowed})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Name != entries[j].Name {
			return entries[i].Name < entries[j].Name
		}
		return !entries[i].Dev
	})
	return entries, true, nil
}

// auditEntry applies the manifest heuristics to one declared dependency.
func (s *DependencyScanner) auditEntry(entry dependencyEntry, hasInstallTree bool, w *stream.Writer) error {
	var issues []domain.Issue

	section := "dependencies"
	if entry.Dev {
		section = "devDependencies"
	}

	switch {
	case entry.Version == "*" || entry.Version == "latest" || entry.Version == "":
		issues = append(issues, domain.Issue{
			Category:       domain.CategoryDependency,
			Type:           "wildcard-version",
			Severity:       domain.SeverityMedium,
			Message:        fmt.Sprintf("Dependency %q in %s has an unpinned version %q", entry.Name, section, entry.Version),
			Code:           fmt.Sprintf("%s: %s", entry.Name, entry.Version),
			Context:        manifestName,
			Recommendation: "Pin the dependency to a semver range so builds stay reproducible",
			Source:         domain.SourcePattern,
		})
	case strings.HasPrefix(entry.Version, "http://"):
		issues = append(issues, domain.Issue{
			Category:       domain.CategoryDependency,
			Type:           "insecure-dependency-source",
			Severity:       domain.SeverityHigh,
			Message:        fmt.Sprintf("Dependency %q is fetched over plain HTTP", entry.Name),
			Code:           fmt.Sprintf("%s: %s", entry.Name, entry.Version),
			Context:        manifestName,
			Recommendation: "Fetch dependencies over HTTPS or from the package registry",
			Source:         domain.SourcePattern,
		})
	case strings.HasPrefix(entry.Version, "git+") || strings.HasPrefix(entry.Version, "git://") ||
		strings.HasPrefix(entry.Version, "https://") || strings.HasPrefix(entry.Version, "file:"):
		issues = append(issues, domain.Issue{
			Category:       domain.CategoryDependency,
			Type:           "non-registry-dependency",
			Severity:       domain.SeverityMedium,
			Message:        fmt.Sprintf("Dependency %q is resolved outside the package registry", entry.Name),
			Code:           fmt.Sprintf("%s: %s", entry.Name, entry.Version),
			Context:        manifestName,
			Recommendation: "Prefer registry releases; non-registry sources bypass integrity auditing",
			Source:         domain.SourcePattern,
		})
	}

	if entry.AlsoRuntime {
		issues = append(issues, domain.Issue{
			Category:       domain.CategoryDependency,
			Type:           "duplicate-dependency",
			Severity:       domain.SeverityLow,
			Message:        fmt.Sprintf("Dependency %q is declared in both dependencies and devDependencies", entry.Name),
			Code:           entry.Name,
			Context:        manifestName,
			Recommendation: "Keep the dependency in a single section to avoid version drift",
			Source:         domain.SourcePattern,
		})
	}

	if hasInstallTree && !entry.Dev && !dirExists(filepath.Join(s.Cfg.Root, "node_modules", filepath.FromSlash(entry.Name))) {
		issues = append(issues, domain.Issue{
			Category:       domain.CategoryDependency,
			Type:           "missing-dependency",
			Severity:       domain.SeverityMedium,
			Message:        fmt.Sprintf("Dependency %q is declared but not present in the install tree", entry.Name),
			Code:           entry.Name,
			Context:        manifestName,
			Recommendation: "Run the package install step so the tree matches the manifest",
			Source:         domain.SourcePattern,
		})
	}

	for _, issue := range issues {
		if s.Exclusions.Excludes(issue) {
			continue
		}
		if err := w.Write(issue); err != nil {
			return err
		}
	}
	return nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

var _ Scanner = (*DependencyScanner)(nil)
