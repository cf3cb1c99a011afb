package compdb

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Exclusions decides which entries are dropped before deduplication.
//
// Directories are matched as path prefixes on whole components: excluding
// "third_party" drops "third_party/zlib/inflate.c" but keeps
// "third_party_tools/gen.c". Patterns are doublestar globs such as
// "**/_deps/**".
type Exclusions struct {
	root     string
	prefixes []string
	patterns []string
}

// NewExclusions resolves dirs against root and validates patterns.
// Relative directories are joined with root; absolute ones are used as-is.
func NewExclusions(root string, dirs, patterns []string) (*Exclusions, error) {
	x := &Exclusions{root: filepath.Clean(root)}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		x.prefixes = append(x.prefixes, x.resolve(dir))
	}

	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("%w %q", ErrBadPattern, pattern)
		}
		x.patterns = append(x.patterns, pattern)
	}

	return x, nil
}

// Prefixes returns the resolved directory prefixes.
func (x *Exclusions) Prefixes() []string {
	if x == nil {
		return nil
	}
	return x.prefixes
}

// Empty reports whether nothing is excluded.
func (x *Exclusions) Empty() bool {
	return x == nil || (len(x.prefixes) == 0 && len(x.patterns) == 0)
}

// Match reports whether file is excluded and by which rule.
func (x *Exclusions) Match(file string) (string, bool) {
	if x.Empty() {
		return "", false
	}

	abs := x.resolve(file)
	for _, prefix := range x.prefixes {
		if hasPathPrefix(abs, prefix) {
			return prefix, true
		}
	}

	if len(x.patterns) == 0 {
		return "", false
	}

	candidates := []string{strings.TrimPrefix(filepath.ToSlash(abs), "/")}
	if rel, ok := relativeTo(x.root, abs); ok {
		candidates = append(candidates, filepath.ToSlash(rel))
	}
	for _, pattern := range x.patterns {
		for _, candidate := range candidates {
			if ok, _ := doublestar.Match(pattern, candidate); ok {
				return pattern, true
			}
		}
	}

	return "", false
}

func (x *Exclusions) resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(x.root, path)
}

// hasPathPrefix reports whether path is prefix or lies below it.
func hasPathPrefix(path, prefix string) bool {
	if path == prefix {
		return true
	}
	if strings.HasSuffix(prefix, string(filepath.Separator)) {
		return strings.HasPrefix(path, prefix)
	}
	return strings.HasPrefix(path, prefix+string(filepath.Separator))
}

// relativeTo returns path relative to root when path lies under root.
func relativeTo(root, path string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}
