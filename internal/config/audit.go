package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"bytemomo/remora/internal/domain"
)

// FileClass groups include/exclude globs for one class of source file.
type FileClass struct {
	Include []string `yaml:"include" json:"include"`
	Exclude []string `yaml:"exclude" json:"exclude"`
}

// CategoryConfig controls one audit category.
type CategoryConfig struct {
	Enabled *bool    `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Classes []string `yaml:"classes,omitempty" json:"classes,omitempty"`
	Include []string `yaml:"include,omitempty" json:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty" json:"exclude,omitempty"`
}

// IsEnabled defaults to true when unset.
func (c CategoryConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// ExcludeRules is the per-category exclude-rule override surface.
// Resolution: disabled means no exclusions apply; override_default means only
// the additional rules apply; otherwise the default set is unioned with the
// additional rules.
type ExcludeRules struct {
	Enabled         bool     `yaml:"enabled" json:"enabled"`
	OverrideDefault bool     `yaml:"override_default" json:"overrideDefault"`
	AdditionalRules []string `yaml:"additional_rules" json:"additionalRules"`
}

// Tool configures one external collaborator invocation.
type Tool struct {
	Enabled bool          `yaml:"enabled" json:"enabled"`
	Command string        `yaml:"command" json:"command"`
	Args    []string      `yaml:"args,omitempty" json:"args,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// UnmarshalYAML accepts timeouts in time.ParseDuration notation ("90s",
// "2m"), which yaml.v3 cannot decode into a time.Duration on its own.
func (t *Tool) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Enabled bool     `yaml:"enabled"`
		Command string   `yaml:"command"`
		Args    []string `yaml:"args"`
		Timeout string   `yaml:"timeout"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	t.Enabled = raw.Enabled
	t.Command = raw.Command
	t.Args = raw.Args
	t.Timeout = 0
	if raw.Timeout != "" {
		d, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return fmt.Errorf("tool timeout %q: %w", raw.Timeout, err)
		}
		t.Timeout = d
	}
	return nil
}

// Tools lists the external collaborators reachable through adapters.
type Tools struct {
	ScriptLinter     Tool `yaml:"script_linter" json:"script_linter"`
	StylesheetLinter Tool `yaml:"stylesheet_linter" json:"stylesheet_linter"`
	PageAuditor      Tool `yaml:"page_auditor" json:"page_auditor"`
	VulnScanner      Tool `yaml:"vuln_scanner" json:"vuln_scanner"`
	DepCheck         Tool `yaml:"dep_check" json:"dep_check"`
}

// ObjectStore configures optional publication of the comprehensive report
// to S3-compatible storage. Publication failures are warnings, never fatal.
type ObjectStore struct {
	Endpoint  string `yaml:"endpoint" json:"endpoint"`
	AccessKey string `yaml:"access_key" json:"access_key"`
	SecretKey string `yaml:"secret_key" json:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl" json:"use_ssl"`
	Bucket    string `yaml:"bucket" json:"bucket"`
	Prefix    string `yaml:"prefix,omitempty" json:"prefix,omitempty"`
}

// Audit is the full configuration of one run. It is an explicit value passed
// into the orchestrator at construction, scoped to one run; there are no
// process-wide cached settings.
type Audit struct {
	Root        string                               `yaml:"root" json:"root"`
	OutputDir   string                               `yaml:"output_dir" json:"output_dir"`
	Concurrency int                                  `yaml:"concurrency" json:"concurrency"`
	BatchSize   int                                  `yaml:"batch_size" json:"batch_size"`
	IgnoreFile  string                               `yaml:"ignore_file,omitempty" json:"ignore_file,omitempty"`
	FileClasses map[string]FileClass                 `yaml:"file_classes,omitempty" json:"file_classes,omitempty"`
	Categories  map[domain.Category]CategoryConfig   `yaml:"categories,omitempty" json:"categories,omitempty"`
	ExcludeRule map[domain.Category]ExcludeRules     `yaml:"exclude_rules,omitempty" json:"exclude_rules,omitempty"`
	Tools       Tools                                `yaml:"tools" json:"tools"`
	PageURLs    []string                             `yaml:"page_urls,omitempty" json:"page_urls,omitempty"`
	ObjectStore *ObjectStore                         `yaml:"object_store,omitempty" json:"object_store,omitempty"`
}

// File classes known to the default configuration.
const (
	ClassScript     = "script"
	ClassMarkup     = "markup"
	ClassStylesheet = "stylesheet"
)

// Default returns the configuration used when no file is supplied.
func Default() *Audit {
	return &Audit{
		Root:        ".",
		OutputDir:   "audit-output",
		Concurrency: 10,
		BatchSize:   50,
		FileClasses: map[string]FileClass{
			ClassScript: {
				Include: []string{"**/*.js", "**/*.jsx", "**/*.ts", "**/*.tsx", "**/*.mjs"},
			},
			ClassMarkup: {
				Include: []string{"**/*.html", "**/*.htm", "**/*.vue", "**/*.jsx", "**/*.tsx"},
			},
			ClassStylesheet: {
				Include: []string{"**/*.css", "**/*.scss", "**/*.less"},
			},
		},
		Categories: map[domain.Category]CategoryConfig{
			domain.CategorySecurity:      {Classes: []string{ClassScript, ClassMarkup}},
			domain.CategoryPerformance:   {Classes: []string{ClassScript, ClassStylesheet}},
			domain.CategoryAccessibility: {Classes: []string{ClassMarkup}},
			domain.CategoryTesting:       {Classes: []string{ClassScript}},
			domain.CategoryDependency:    {},
		},
		Tools: Tools{
			ScriptLinter:     Tool{Command: "eslint", Timeout: 2 * time.Minute},
			StylesheetLinter: Tool{Command: "stylelint", Timeout: 2 * time.Minute},
			PageAuditor:      Tool{Command: "lighthouse", Timeout: 5 * time.Minute},
			VulnScanner:      Tool{Command: "npm", Args: []string{"audit", "--json"}, Timeout: 3 * time.Minute},
			DepCheck:         Tool{Command: "depcheck", Args: []string{"--json"}, Timeout: 3 * time.Minute},
		},
	}
}

// Validate checks the configuration before a run.
func (a *Audit) Validate() error {
	if a.Root == "" {
		return fmt.Errorf("config: root is required")
	}
	if a.OutputDir == "" {
		return fmt.Errorf("config: output_dir is required")
	}
	if a.Concurrency < 1 {
		return fmt.Errorf("config: concurrency must be at least 1, got %d", a.Concurrency)
	}
	if a.BatchSize < 1 {
		return fmt.Errorf("config: batch_size must be at least 1, got %d", a.BatchSize)
	}
	for cat, cc := range a.Categories {
		for _, class := range cc.Classes {
			if _, ok := a.FileClasses[class]; !ok {
				return fmt.Errorf("config: category %s references unknown file class %q", cat, class)
			}
		}
	}
	if a.ObjectStore != nil {
		if a.ObjectStore.Endpoint == "" || a.ObjectStore.Bucket == "" {
			return fmt.Errorf("config: object_store requires endpoint and bucket")
		}
	}
	return nil
}

// EnabledCategories returns the categories that will run, in stable order.
func (a *Audit) EnabledCategories() []domain.Category {
	var out []domain.Category
	for _, cat := range domain.AllCategories() {
		cc, ok := a.Categories[cat]
		if !ok || cc.IsEnabled() {
			out = append(out, cat)
		}
	}
	return out
}
