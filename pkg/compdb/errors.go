package compdb

import (
	"errors"
	"fmt"
)

var (
	// ErrIO is returned when the compile database cannot be read.
	ErrIO = errors.New("cannot read compile database")

	// ErrParse is returned when the input is not well-formed JSON.
	ErrParse = errors.New("compile database is not valid JSON")

	// ErrSchema is returned when the input is valid JSON but not a
	// compile database (not an array, or an entry without "file").
	ErrSchema = errors.New("malformed compile database")

	// ErrBadPattern is returned for an exclude glob that cannot be parsed.
	ErrBadPattern = errors.New("invalid exclude pattern")
)

// SchemaError describes where a compile database violates its schema.
// Index is the position of the offending entry, or -1 for the top-level value.
type SchemaError struct {
	Index  int
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s", ErrSchema, e.Reason)
	}
	return fmt.Sprintf("%s: entry %d: %s", ErrSchema, e.Index, e.Reason)
}

// Unwrap lets errors.Is(err, ErrSchema) match.
func (e *SchemaError) Unwrap() error {
	return ErrSchema
}
