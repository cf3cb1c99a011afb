// Package config provides configuration management for compdb.
// It supports multi-layer configuration with precedence:
//  1. Built-in defaults (lowest priority)
//  2. Global user config (~/.config/compdb/config.toml)
//  3. Project config (.compdb/config.toml or compdb.toml)
//  4. Environment variables (COMPDB_*)
//  5. CLI flags (highest priority)
package config

import "slices"

// Config is the main configuration struct for compdb.
type Config struct {
	// Reduce configures how compile databases are reduced.
	Reduce ReduceConfig `toml:"reduce"`

	// Log configures diagnostics written to stderr.
	Log LogConfig `toml:"log"`

	// Sources lists the config files that were merged, in order.
	Sources []string `toml:"-"`
}

// ReduceConfig holds reducer settings.
type ReduceConfig struct {
	// Root is the project root. Empty means the Bazel workspace directory
	// when run via `bazel run`, else the current directory.
	Root string `toml:"root"`

	// ExcludeDirs are directories (relative to Root, or absolute) whose
	// entries are dropped.
	ExcludeDirs []string `toml:"exclude_dirs"`

	// ExcludePatterns are doublestar globs, e.g. "**/_deps/**".
	ExcludePatterns []string `toml:"exclude_patterns"`

	// NamesOnly prints root-relative file names instead of JSON.
	NamesOnly *bool `toml:"names_only"`

	// Separator joins names-only output ("space" or "newline").
	Separator string `toml:"separator"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Verbosity is the -v level (0=error .. 4=trace).
	Verbosity *int `toml:"verbosity"`

	// Format is "text" or "json".
	Format string `toml:"format"`
}

// NewConfig creates a new Config with built-in defaults.
func NewConfig() *Config {
	falseVal := false
	warn := 1
	return &Config{
		Reduce: ReduceConfig{
			ExcludeDirs:     []string{},
			ExcludePatterns: []string{},
			NamesOnly:       &falseVal,
			Separator:       "space",
		},
		Log: LogConfig{
			Verbosity: &warn,
			Format:    "text",
		},
	}
}

// NamesOnly reports whether names-only output is enabled.
func (c *Config) NamesOnly() bool {
	return c.Reduce.NamesOnly != nil && *c.Reduce.NamesOnly
}

// Verbosity returns the configured verbosity level.
func (c *Config) Verbosity() int {
	if c.Log.Verbosity == nil {
		return 1
	}
	return *c.Log.Verbosity
}

// Merge merges another config into this one (other takes precedence).
// Exclusions accumulate across layers; scalar settings are replaced.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Reduce.Root != "" {
		c.Reduce.Root = other.Reduce.Root
	}
	c.Reduce.ExcludeDirs = appendUnique(c.Reduce.ExcludeDirs, other.Reduce.ExcludeDirs...)
	c.Reduce.ExcludePatterns = appendUnique(c.Reduce.ExcludePatterns, other.Reduce.ExcludePatterns...)
	if other.Reduce.NamesOnly != nil {
		c.Reduce.NamesOnly = other.Reduce.NamesOnly
	}
	if other.Reduce.Separator != "" {
		c.Reduce.Separator = other.Reduce.Separator
	}

	if other.Log.Verbosity != nil {
		c.Log.Verbosity = other.Log.Verbosity
	}
	if other.Log.Format != "" {
		c.Log.Format = other.Log.Format
	}

	c.Sources = append(c.Sources, other.Sources...)
}

// appendUnique appends values not already present, keeping order.
func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		if !slices.Contains(dst, v) {
			dst = append(dst, v)
		}
	}
	return dst
}
