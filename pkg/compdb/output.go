package compdb

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Separator selects how names-only output is joined.
type Separator string

const (
	// SeparatorSpace joins paths with single spaces on one line. Paths that
	// contain spaces are not escaped.
	SeparatorSpace Separator = "space"

	// SeparatorNewline writes one path per line.
	SeparatorNewline Separator = "newline"
)

// ParseSeparator validates a --separator value. Empty means space.
func ParseSeparator(s string) (Separator, error) {
	switch Separator(strings.ToLower(s)) {
	case "", SeparatorSpace:
		return SeparatorSpace, nil
	case SeparatorNewline:
		return SeparatorNewline, nil
	}
	return "", fmt.Errorf("unsupported separator %q (want %s or %s)", s, SeparatorSpace, SeparatorNewline)
}

func (s Separator) join() string {
	if s == SeparatorNewline {
		return "\n"
	}
	return " "
}

// WriteJSON writes the retained entries as a JSON array indented with two spaces.
func (r *Result) WriteJSON(w io.Writer) error {
	entries := r.entries
	if entries == nil {
		entries = []Entry{}
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

// WriteNames writes the root-relative paths of the retained entries.
func (r *Result) WriteNames(w io.Writer, sep Separator) error {
	names := strings.Join(r.RelativePaths(), sep.join())
	_, err := io.WriteString(w, names+"\n")
	return err
}
