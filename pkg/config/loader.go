package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is the name of the project-level config file.
const ConfigFileName = "compdb.toml"

// ConfigDirName is the name of the project-level config directory.
const ConfigDirName = ".compdb"

// GlobalConfigDir is the name of the global config directory inside user's config.
const GlobalConfigDir = "compdb"

// WorkspaceDirEnv is set by `bazel run` to the workspace the command was invoked from.
const WorkspaceDirEnv = "BUILD_WORKSPACE_DIRECTORY"

// Load loads configuration from all layers in order of precedence:
//  1. Built-in defaults
//  2. Global user config (~/.config/compdb/config.toml)
//  3. Project config (.compdb/config.toml or compdb.toml)
//  4. Environment variables (COMPDB_*)
//
// CLI flags are applied separately after Load() returns.
func Load() *Config {
	wd, err := os.Getwd()
	if err != nil {
		cfg := NewConfig()
		cfg.Merge(loadGlobalConfig())
		applyEnvironmentVariables(cfg)
		return cfg
	}
	return LoadFrom(wd)
}

// LoadFrom loads configuration starting from a specific directory.
func LoadFrom(dir string) *Config {
	cfg := NewConfig()

	// Layer 2: Global user config
	cfg.Merge(loadGlobalConfig())

	// Layer 3: Project config from specified directory
	cfg.Merge(loadProjectConfigFrom(dir))

	// Layer 4: Environment variables
	applyEnvironmentVariables(cfg)

	return cfg
}

// LoadWithFile loads the global config, then the explicit file at path in place
// of project discovery, then the environment. Unlike discovered files, an
// explicit file that cannot be read or parsed is an error.
func LoadWithFile(path string) (*Config, error) {
	fileCfg, err := decodeConfigFile(path)
	if err != nil {
		return nil, err
	}

	cfg := NewConfig()
	cfg.Merge(loadGlobalConfig())
	cfg.Merge(fileCfg)
	applyEnvironmentVariables(cfg)
	return cfg, nil
}

// loadGlobalConfig loads the global user configuration from ~/.config/compdb/config.toml.
func loadGlobalConfig() *Config {
	path := GetGlobalConfigPath()
	if path == "" {
		return nil
	}
	return loadConfigFile(path)
}

// loadProjectConfigFrom looks for project configuration starting from the given directory.
func loadProjectConfigFrom(dir string) *Config {
	// Search up the directory tree for config files
	current := dir
	for {
		for _, candidate := range GetProjectConfigPaths(current) {
			if cfg := loadConfigFile(candidate); cfg != nil {
				return cfg
			}
		}

		// Stop at filesystem root or git/bazel workspace root
		if isWorkspaceRoot(current) {
			break
		}

		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	return nil
}

// isWorkspaceRoot checks if the directory is a workspace root (has .git, WORKSPACE, or MODULE.bazel).
func isWorkspaceRoot(dir string) bool {
	markers := []string{".git", "WORKSPACE", "WORKSPACE.bazel", "MODULE.bazel"}
	for _, marker := range markers {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}

// loadConfigFile loads a configuration from a TOML file, ignoring files that
// are missing or invalid.
func loadConfigFile(path string) *Config {
	cfg, err := decodeConfigFile(path)
	if err != nil {
		return nil
	}
	return cfg
}

func decodeConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.Sources = []string{path}

	return &cfg, nil
}

// applyEnvironmentVariables applies COMPDB_* environment variables to the config.
func applyEnvironmentVariables(cfg *Config) {
	if v := os.Getenv("COMPDB_ROOT"); v != "" {
		cfg.Reduce.Root = v
	}

	// COMPDB_EXCLUDE_DIRS: comma-separated list of directories to exclude
	if v := os.Getenv("COMPDB_EXCLUDE_DIRS"); v != "" {
		cfg.Reduce.ExcludeDirs = splitAndTrim(v)
	}

	// COMPDB_EXCLUDE_PATTERNS: comma-separated list of globs to exclude
	if v := os.Getenv("COMPDB_EXCLUDE_PATTERNS"); v != "" {
		cfg.Reduce.ExcludePatterns = splitAndTrim(v)
	}

	applyBoolEnv("COMPDB_NAMES_ONLY", &cfg.Reduce.NamesOnly)

	if v := os.Getenv("COMPDB_SEPARATOR"); v != "" {
		cfg.Reduce.Separator = v
	}

	if v := os.Getenv("COMPDB_VERBOSITY"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.Log.Verbosity = &n
		}
	}
	if v := os.Getenv("COMPDB_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// applyBoolEnv applies a boolean environment variable to a pointer.
func applyBoolEnv(envVar string, target **bool) {
	if v := os.Getenv(envVar); v != "" {
		v = strings.ToLower(v)
		if v == "true" || v == "1" || v == "yes" {
			t := true
			*target = &t
		} else if v == "false" || v == "0" || v == "no" {
			f := false
			*target = &f
		}
	}
}

// DefaultRoot returns the project root used when none is configured: the
// Bazel workspace directory under `bazel run`, else the current directory.
func DefaultRoot() (string, error) {
	if dir := os.Getenv(WorkspaceDirEnv); dir != "" {
		return dir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to determine working directory: %w", err)
	}
	return wd, nil
}

// GetGlobalConfigPath returns the path to the global config file.
func GetGlobalConfigPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, GlobalConfigDir, "config.toml")
}

// GetProjectConfigPaths returns potential project config paths for a given directory.
func GetProjectConfigPaths(dir string) []string {
	return []string{
		filepath.Join(dir, ConfigDirName, "config.toml"),
		filepath.Join(dir, ConfigFileName),
	}
}
