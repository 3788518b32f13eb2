package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Load reads an audit configuration file, layering it over the defaults.
// ${VAR} references in the file are expanded from the environment. Relative
// root and output paths are resolved against the config file's directory.
func Load(path string) (*Audit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	data = expandEnvVars(data)

	audit := Default()
	if err := yaml.Unmarshal(data, audit); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	applyFallbacks(audit)

	base := filepath.Dir(path)
	if !filepath.IsAbs(audit.Root) {
		audit.Root = filepath.Join(base, audit.Root)
	}
	if !filepath.IsAbs(audit.OutputDir) {
		audit.OutputDir = filepath.Join(base, audit.OutputDir)
	}

	if err := audit.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed for %s: %w", path, err)
	}
	return audit, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars substitutes ${VAR} references with environment values.
// Unset variables expand to the empty string.
func expandEnvVars(data []byte) []byte {
	return envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		name := string(match[2 : len(match)-1])
		return []byte(os.Getenv(name))
	})
}

// applyFallbacks restores defaults for fields an explicit config left empty.
func applyFallbacks(a *Audit) {
	def := Default()
	if a.Root == "" {
		a.Root = def.Root
	}
	if a.OutputDir == "" {
		a.OutputDir = def.OutputDir
	}
	if a.Concurrency == 0 {
		a.Concurrency = def.Concurrency
	}
	if a.BatchSize == 0 {
		a.BatchSize = def.BatchSize
	}
	if len(a.FileClasses) == 0 {
		a.FileClasses = def.FileClasses
	}
	if len(a.Categories) == 0 {
		a.Categories = def.Categories
	}
	mergeTool(&a.Tools.ScriptLinter, def.Tools.ScriptLinter)
	mergeTool(&a.Tools.StylesheetLinter, def.Tools.StylesheetLinter)
	mergeTool(&a.Tools.PageAuditor, def.Tools.PageAuditor)
	mergeTool(&a.Tools.VulnScanner, def.Tools.VulnScanner)
	mergeTool(&a.Tools.DepCheck, def.Tools.DepCheck)
}

// mergeTool fills command, args and timeout from the defaults so a partial
// tool block (say, just "enabled: true") keeps the stock invocation.
func mergeTool(t *Tool, def Tool) {
	if t.Command == "" {
		t.Command = def.Command
	}
	if t.Args == nil {
		t.Args = def.Args
	}
	if t.Timeout == 0 {
		t.Timeout = def.Timeout
	}
}
