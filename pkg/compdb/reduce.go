package compdb

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/albertocavalcante/compdb/internal/log"
)

// Options configures a reduction.
type Options struct {
	// Root is the project root. Relative exclusions are resolved against it and
	// names-only output is relative to it. Empty means the current directory.
	Root string

	// ExcludeDirs are directories (relative to Root, or absolute) whose files
	// are dropped.
	ExcludeDirs []string

	// ExcludePatterns are doublestar globs whose matching files are dropped.
	ExcludePatterns []string
}

// Stats summarizes a reduction.
type Stats struct {
	Total       int `json:"total"`
	Excluded    int `json:"excluded"`
	Duplicates  int `json:"duplicates"`
	Conflicting int `json:"conflicting"`
	Retained    int `json:"retained"`
}

// Result is a reduced compile database: one entry per file, in the order
// each file was first seen.
type Result struct {
	root    string
	entries []Entry
	index   map[string]int
	stats   Stats
}

// Reduce drops excluded entries and keeps the first entry for every file.
// Later duplicates are discarded even when their commands differ.
func Reduce(db Database, opts Options) (*Result, error) {
	root := opts.Root
	if root == "" {
		root = "."
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}

	exclusions, err := NewExclusions(root, opts.ExcludeDirs, opts.ExcludePatterns)
	if err != nil {
		return nil, err
	}

	logger := log.Component("reduce")
	logger.Debugw("reducing compile database",
		"root", root,
		"entries", len(db),
		"exclude_dirs", exclusions.Prefixes(),
		"exclude_patterns", opts.ExcludePatterns)

	r := &Result{
		root:  root,
		index: make(map[string]int, len(db)),
	}
	fingerprints := make(map[string]string)
	conflicts := make(map[string]int)

	for _, entry := range db {
		r.stats.Total++

		if rule, ok := exclusions.Match(entry.File); ok {
			r.stats.Excluded++
			log.Trace("excluding entry", "file", entry.File, "rule", rule)
			continue
		}

		pos, seen := r.index[entry.File]
		if !seen {
			r.index[entry.File] = len(r.entries)
			r.entries = append(r.entries, entry)
			continue
		}

		r.stats.Duplicates++
		kept, ok := fingerprints[entry.File]
		if !ok {
			kept = r.entries[pos].Fingerprint()
			fingerprints[entry.File] = kept
		}
		if entry.Fingerprint() != kept {
			r.stats.Conflicting++
			conflicts[entry.File]++
		}
		log.Trace("skipping duplicate entry", "file", entry.File)
	}

	r.stats.Retained = len(r.entries)

	conflictFiles := make([]string, 0, len(conflicts))
	for file := range conflicts {
		conflictFiles = append(conflictFiles, file)
	}
	slices.Sort(conflictFiles)
	for _, file := range conflictFiles {
		logger.Debugw("conflicting duplicates dropped", "file", file, "count", conflicts[file])
	}
	logger.Infow("reduced compile database",
		"total", r.stats.Total,
		"excluded", r.stats.Excluded,
		"duplicates", r.stats.Duplicates,
		"conflicting", r.stats.Conflicting,
		"retained", r.stats.Retained)

	return r, nil
}

// Root returns the absolute project root used for the reduction.
func (r *Result) Root() string {
	return r.root
}

// Entries returns the retained entries in first-seen order.
func (r *Result) Entries() []Entry {
	return r.entries
}

// Len returns the number of retained entries.
func (r *Result) Len() int {
	return len(r.entries)
}

// Get returns the retained entry for file.
func (r *Result) Get(file string) (Entry, bool) {
	pos, ok := r.index[file]
	if !ok {
		return Entry{}, false
	}
	return r.entries[pos], true
}

// Files returns the retained file paths as written in the input.
func (r *Result) Files() []string {
	files := make([]string, len(r.entries))
	for i, e := range r.entries {
		files[i] = e.File
	}
	return files
}

// RelativePaths returns the retained file paths relative to the root.
// Files that were already relative are taken to be root-relative.
func (r *Result) RelativePaths() []string {
	paths := make([]string, len(r.entries))
	for i, e := range r.entries {
		paths[i] = r.relative(e.File)
	}
	return paths
}

func (r *Result) relative(file string) string {
	if !filepath.IsAbs(file) {
		return filepath.Clean(file)
	}
	rel, err := filepath.Rel(r.root, file)
	if err != nil {
		return file
	}
	return rel
}

// Stats returns the counters collected while reducing.
func (r *Result) Stats() Stats {
	return r.stats
}

// Changed reports whether the reduction dropped anything.
func (r *Result) Changed() bool {
	return r.stats.Excluded > 0 || r.stats.Duplicates > 0
}
