package enumerate

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	log "github.com/sirupsen/logrus"

	"bytemomo/remora/internal/config"
	"bytemomo/remora/internal/domain"
)

// DefaultExclusions is applied when no ignore-file override is configured:
// dependency directories, build outputs, coverage, version-control
// directories and minified assets.
var DefaultExclusions = []string{
	"**/node_modules/**",
	"**/vendor/**",
	"**/bower_components/**",
	"**/dist/**",
	"**/build/**",
	"**/out/**",
	"**/coverage/**",
	"**/.git/**",
	"**/.hg/**",
	"**/.svn/**",
	"**/*.min.js",
	"**/*.min.css",
}

// Enumerator resolves a category's include/exclude glob configuration into
// a concrete file list. Results are deterministic for a fixed filesystem
// state; unreadable directories are logged and contribute nothing.
type Enumerator struct {
	cfg *config.Audit
}

func New(cfg *config.Audit) *Enumerator {
	return &Enumerator{cfg: cfg}
}

// FilesFor returns the files to scan for one category, as root-relative
// slash-separated paths.
func (e *Enumerator) FilesFor(cat domain.Category) ([]string, error) {
	includes, excludes := e.patternsFor(cat)
	if len(includes) == 0 {
		return nil, nil
	}

	var files []string
	err := filepath.WalkDir(e.cfg.Root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			log.WithFields(log.Fields{
				"path":  path,
				"error": walkErr,
			}).Warn("Skipping unreadable path")
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(e.cfg.Root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if matchesDir(excludes, rel) {
				return fs.SkipDir
			}
			return nil
		}

		if !matchesAny(includes, rel) || matchesAny(excludes, rel) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, &domain.FileAccessError{Path: e.cfg.Root, Err: err}
	}
	return files, nil
}

// patternsFor collects the include globs of a category's file classes plus
// its own overrides, and the effective exclusion set: class and category
// excludes, then either the normalized ignore-file override or the built-in
// defaults.
func (e *Enumerator) patternsFor(cat domain.Category) (includes, excludes []string) {
	cc := e.cfg.Categories[cat]
	for _, class := range cc.Classes {
		fc := e.cfg.FileClasses[class]
		includes = append(includes, fc.Include...)
		excludes = append(excludes, fc.Exclude...)
	}
	includes = append(includes, cc.Include...)
	excludes = append(excludes, cc.Exclude...)

	if override := e.loadIgnoreOverride(); override != nil {
		excludes = append(excludes, override...)
	} else {
		excludes = append(excludes, DefaultExclusions...)
	}
	return includes, excludes
}

// loadIgnoreOverride reads the configured ignore file and normalizes each
// entry into exclusion globs. A missing file means no override.
func (e *Enumerator) loadIgnoreOverride() []string {
	if e.cfg.IgnoreFile == "" {
		return nil
	}
	path := e.cfg.IgnoreFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(e.cfg.Root, path)
	}

	f, err := os.Open(path)
	if err != nil {
		log.WithFields(log.Fields{
			"path":  path,
			"error": err,
		}).Warn("Ignore file not readable, using default exclusions")
		return nil
	}
	defer f.Close()

	var globs []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		globs = append(globs, normalizeIgnoreEntry(line)...)
	}
	return globs
}

// normalizeIgnoreEntry turns one ignore-file line into exclusion globs.
// Bare names exclude matching files and whole directory subtrees anywhere
// in the tree; entries already containing wildcards pass through.
func normalizeIgnoreEntry(line string) []string {
	line = strings.TrimSuffix(line, "/")
	if strings.ContainsAny(line, "*?[") {
		return []string{line}
	}
	if strings.Contains(line, "/") {
		return []string{line, line + "/**"}
	}
	return []string{"**/" + line, "**/" + line + "/**"}
}

func matchesAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// matchesDir reports whether a directory path is covered by an exclusion,
// so the walk can skip the whole subtree.
func matchesDir(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
		trimmed := strings.TrimSuffix(p, "/**")
		if trimmed != p {
			if ok, err := doublestar.Match(trimmed, rel); err == nil && ok {
				return true
			}
		}
	}
	return false
}
