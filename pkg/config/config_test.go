package config

import (
	"os"
	"path/filepath"
	"testing"
)

// isolate points the global config at an empty directory and clears COMPDB_* variables.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	for _, name := range []string{
		"COMPDB_ROOT", "COMPDB_EXCLUDE_DIRS", "COMPDB_EXCLUDE_PATTERNS",
		"COMPDB_NAMES_ONLY", "COMPDB_SEPARATOR", "COMPDB_VERBOSITY", "COMPDB_LOG_FORMAT",
		WorkspaceDirEnv,
	} {
		t.Setenv(name, "")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	if cfg.NamesOnly() {
		t.Error("names-only should be disabled by default")
	}
	if cfg.Reduce.Separator != "space" {
		t.Errorf("separator should default to 'space', got %q", cfg.Reduce.Separator)
	}
	if len(cfg.Reduce.ExcludeDirs) != 0 {
		t.Errorf("no directories should be excluded by default, got %v", cfg.Reduce.ExcludeDirs)
	}
	if cfg.Verbosity() != 1 {
		t.Errorf("verbosity should default to 1, got %d", cfg.Verbosity())
	}
	if cfg.Log.Format != "text" {
		t.Errorf("log format should default to 'text', got %q", cfg.Log.Format)
	}
}

func TestMerge(t *testing.T) {
	base := NewConfig()
	base.Reduce.ExcludeDirs = []string{"third_party"}

	trueVal := true
	debug := 3
	other := &Config{
		Reduce: ReduceConfig{
			Root:        "/work",
			ExcludeDirs: []string{"third_party", "external"},
			NamesOnly:   &trueVal,
			Separator:   "newline",
		},
		Log:     LogConfig{Verbosity: &debug},
		Sources: []string{"compdb.toml"},
	}

	base.Merge(other)

	if base.Reduce.Root != "/work" {
		t.Errorf("root should be '/work', got %q", base.Reduce.Root)
	}
	want := []string{"third_party", "external"}
	if len(base.Reduce.ExcludeDirs) != len(want) {
		t.Fatalf("exclude dirs = %v, want %v", base.Reduce.ExcludeDirs, want)
	}
	for i := range want {
		if base.Reduce.ExcludeDirs[i] != want[i] {
			t.Errorf("exclude dirs[%d] = %q, want %q", i, base.Reduce.ExcludeDirs[i], want[i])
		}
	}
	if !base.NamesOnly() {
		t.Error("names-only should be enabled after merge")
	}
	if base.Reduce.Separator != "newline" {
		t.Errorf("separator should be 'newline', got %q", base.Reduce.Separator)
	}
	if base.Verbosity() != 3 {
		t.Errorf("verbosity should be 3, got %d", base.Verbosity())
	}
	if base.Log.Format != "text" {
		t.Errorf("unset format should keep default, got %q", base.Log.Format)
	}
	if len(base.Sources) != 1 {
		t.Errorf("sources = %v, want one entry", base.Sources)
	}
}

func TestMergeNil(t *testing.T) {
	cfg := NewConfig()
	cfg.Merge(nil)
	if cfg.NamesOnly() {
		t.Error("merging nil should not change the config")
	}
}

func TestLoadConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	writeFile(t, configPath, `
[reduce]
exclude_dirs = ["third_party", "build/_deps"]
exclude_patterns = ["**/*.pb.cc"]
names_only = true
separator = "newline"

[log]
verbosity = 2
format = "json"
`)

	cfg := loadConfigFile(configPath)
	if cfg == nil {
		t.Fatal("loadConfigFile returned nil")
	}

	if len(cfg.Reduce.ExcludeDirs) != 2 {
		t.Errorf("expected 2 excluded dirs, got %d", len(cfg.Reduce.ExcludeDirs))
	}
	if len(cfg.Reduce.ExcludePatterns) != 1 {
		t.Errorf("expected 1 exclude pattern, got %d", len(cfg.Reduce.ExcludePatterns))
	}
	if !cfg.NamesOnly() {
		t.Error("names-only should be enabled")
	}
	if cfg.Reduce.Separator != "newline" {
		t.Errorf("separator should be 'newline', got %q", cfg.Reduce.Separator)
	}
	if cfg.Verbosity() != 2 {
		t.Errorf("verbosity should be 2, got %d", cfg.Verbosity())
	}
	if cfg.Log.Format != "json" {
		t.Errorf("log format should be 'json', got %q", cfg.Log.Format)
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0] != configPath {
		t.Errorf("sources = %v, want [%s]", cfg.Sources, configPath)
	}
}

func TestLoadConfigFileInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, configPath, "[reduce\nnames_only = ")

	if cfg := loadConfigFile(configPath); cfg != nil {
		t.Error("loadConfigFile should ignore an invalid file")
	}
	if _, err := LoadWithFile(configPath); err == nil {
		t.Error("LoadWithFile should fail on an invalid file")
	}
}

func TestLoadWithFile(t *testing.T) {
	isolate(t)

	configPath := filepath.Join(t.TempDir(), "ci.toml")
	writeFile(t, configPath, `
[reduce]
exclude_dirs = ["external"]
`)

	cfg, err := LoadWithFile(configPath)
	if err != nil {
		t.Fatalf("LoadWithFile() error = %v", err)
	}
	if len(cfg.Reduce.ExcludeDirs) != 1 || cfg.Reduce.ExcludeDirs[0] != "external" {
		t.Errorf("exclude dirs = %v, want [external]", cfg.Reduce.ExcludeDirs)
	}

	if _, err := LoadWithFile(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("LoadWithFile should fail on a missing file")
	}
}

func TestApplyEnvironmentVariables(t *testing.T) {
	isolate(t)
	cfg := NewConfig()

	t.Setenv("COMPDB_ROOT", "/src")
	t.Setenv("COMPDB_EXCLUDE_DIRS", "third_party, external")
	t.Setenv("COMPDB_EXCLUDE_PATTERNS", "**/_deps/**")
	t.Setenv("COMPDB_NAMES_ONLY", "yes")
	t.Setenv("COMPDB_SEPARATOR", "newline")
	t.Setenv("COMPDB_VERBOSITY", "4")
	t.Setenv("COMPDB_LOG_FORMAT", "json")

	applyEnvironmentVariables(cfg)

	if cfg.Reduce.Root != "/src" {
		t.Errorf("root should be '/src', got %q", cfg.Reduce.Root)
	}
	if len(cfg.Reduce.ExcludeDirs) != 2 {
		t.Errorf("expected 2 excluded dirs, got %v", cfg.Reduce.ExcludeDirs)
	}
	if len(cfg.Reduce.ExcludePatterns) != 1 {
		t.Errorf("expected 1 exclude pattern, got %v", cfg.Reduce.ExcludePatterns)
	}
	if !cfg.NamesOnly() {
		t.Error("names-only should be enabled via env var")
	}
	if cfg.Reduce.Separator != "newline" {
		t.Errorf("separator should be 'newline', got %q", cfg.Reduce.Separator)
	}
	if cfg.Verbosity() != 4 {
		t.Errorf("verbosity should be 4, got %d", cfg.Verbosity())
	}
	if cfg.Log.Format != "json" {
		t.Errorf("log format should be 'json', got %q", cfg.Log.Format)
	}
}

func TestApplyEnvironmentVariablesInvalidValues(t *testing.T) {
	isolate(t)
	cfg := NewConfig()

	t.Setenv("COMPDB_NAMES_ONLY", "maybe")
	t.Setenv("COMPDB_VERBOSITY", "loud")

	applyEnvironmentVariables(cfg)

	if cfg.NamesOnly() {
		t.Error("unrecognized boolean should leave names-only unchanged")
	}
	if cfg.Verbosity() != 1 {
		t.Errorf("unparseable verbosity should leave default, got %d", cfg.Verbosity())
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"third_party,external,build", []string{"third_party", "external", "build"}},
		{" third_party , external ", []string{"third_party", "external"}},
		{"third_party", []string{"third_party"}},
		{"", []string{}},
		{" , , ", []string{}},
	}

	for _, tt := range tests {
		result := splitAndTrim(tt.input)
		if len(result) != len(tt.expected) {
			t.Errorf("splitAndTrim(%q) = %v, want %v", tt.input, result, tt.expected)
			continue
		}
		for i, v := range result {
			if v != tt.expected[i] {
				t.Errorf("splitAndTrim(%q)[%d] = %q, want %q", tt.input, i, v, tt.expected[i])
			}
		}
	}
}

func TestProjectConfigSearch(t *testing.T) {
	tmpDir := t.TempDir()
	projectDir := filepath.Join(tmpDir, "project", "subdir")
	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		t.Fatalf("failed to create project dir: %v", err)
	}

	// Create .git marker at project root
	if err := os.MkdirAll(filepath.Join(tmpDir, "project", ".git"), 0o755); err != nil {
		t.Fatalf("failed to create .git dir: %v", err)
	}

	writeFile(t, filepath.Join(tmpDir, "project", "compdb.toml"), `
[reduce]
exclude_dirs = ["external", "third_party"]
`)

	// Load config from subdir
	cfg := loadProjectConfigFrom(projectDir)
	if cfg == nil {
		t.Fatal("loadProjectConfigFrom returned nil")
	}

	if len(cfg.Reduce.ExcludeDirs) != 2 {
		t.Errorf("expected 2 excluded dirs, got %d", len(cfg.Reduce.ExcludeDirs))
	}
}

func TestProjectConfigSearchStopsAtWorkspaceRoot(t *testing.T) {
	tmpDir := t.TempDir()

	// Config above the workspace root must not be picked up
	writeFile(t, filepath.Join(tmpDir, "compdb.toml"), "[reduce]\nnames_only = true\n")
	writeFile(t, filepath.Join(tmpDir, "ws", "MODULE.bazel"), "")

	if cfg := loadProjectConfigFrom(filepath.Join(tmpDir, "ws")); cfg != nil {
		t.Errorf("config outside the workspace should be ignored, got %+v", cfg)
	}
}

func TestProjectConfigDirTakesPrecedence(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".git", "HEAD"), "")
	writeFile(t, filepath.Join(tmpDir, ConfigDirName, "config.toml"), "[reduce]\nseparator = \"newline\"\n")
	writeFile(t, filepath.Join(tmpDir, ConfigFileName), "[reduce]\nseparator = \"space\"\n")

	cfg := loadProjectConfigFrom(tmpDir)
	if cfg == nil {
		t.Fatal("loadProjectConfigFrom returned nil")
	}
	if cfg.Reduce.Separator != "newline" {
		t.Errorf(".compdb/config.toml should win over compdb.toml, got separator %q", cfg.Reduce.Separator)
	}
}

func TestLoadFromLayers(t *testing.T) {
	isolate(t)

	writeFile(t, GetGlobalConfigPath(), `
[reduce]
exclude_dirs = ["external"]
separator = "newline"
`)

	project := t.TempDir()
	writeFile(t, filepath.Join(project, "WORKSPACE"), "")
	writeFile(t, filepath.Join(project, ConfigFileName), `
[reduce]
exclude_dirs = ["third_party"]
separator = "space"
`)

	t.Setenv("COMPDB_NAMES_ONLY", "true")

	cfg := LoadFrom(project)

	want := []string{"external", "third_party"}
	if len(cfg.Reduce.ExcludeDirs) != len(want) {
		t.Fatalf("exclude dirs = %v, want %v", cfg.Reduce.ExcludeDirs, want)
	}
	for i := range want {
		if cfg.Reduce.ExcludeDirs[i] != want[i] {
			t.Errorf("exclude dirs[%d] = %q, want %q", i, cfg.Reduce.ExcludeDirs[i], want[i])
		}
	}
	if cfg.Reduce.Separator != "space" {
		t.Errorf("project config should override global separator, got %q", cfg.Reduce.Separator)
	}
	if !cfg.NamesOnly() {
		t.Error("environment should enable names-only")
	}
	if len(cfg.Sources) != 2 {
		t.Errorf("sources = %v, want global and project files", cfg.Sources)
	}
}

func TestWorkspaceRootDetection(t *testing.T) {
	tmpDir := t.TempDir()

	// Test .git
	if err := os.MkdirAll(filepath.Join(tmpDir, ".git"), 0o755); err != nil {
		t.Fatalf("failed to create .git dir: %v", err)
	}
	if !isWorkspaceRoot(tmpDir) {
		t.Error("directory with .git should be workspace root")
	}

	// Test WORKSPACE
	tmpDir2 := t.TempDir()
	writeFile(t, filepath.Join(tmpDir2, "WORKSPACE"), "")
	if !isWorkspaceRoot(tmpDir2) {
		t.Error("directory with WORKSPACE should be workspace root")
	}

	// Test MODULE.bazel
	tmpDir3 := t.TempDir()
	writeFile(t, filepath.Join(tmpDir3, "MODULE.bazel"), "")
	if !isWorkspaceRoot(tmpDir3) {
		t.Error("directory with MODULE.bazel should be workspace root")
	}

	if isWorkspaceRoot(t.TempDir()) {
		t.Error("empty directory should not be workspace root")
	}
}

func TestDefaultRoot(t *testing.T) {
	isolate(t)

	t.Setenv(WorkspaceDirEnv, "/workspace")
	root, err := DefaultRoot()
	if err != nil {
		t.Fatalf("DefaultRoot() error = %v", err)
	}
	if root != "/workspace" {
		t.Errorf("DefaultRoot() = %q, want %q", root, "/workspace")
	}

	t.Setenv(WorkspaceDirEnv, "")
	root, err = DefaultRoot()
	if err != nil {
		t.Fatalf("DefaultRoot() error = %v", err)
	}
	wd, _ := os.Getwd()
	if root != wd {
		t.Errorf("DefaultRoot() = %q, want working directory %q", root, wd)
	}
}
