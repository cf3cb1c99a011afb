package cli

import (
	"errors"
	"fmt"
)

// errNeedsReduce is returned by --check when the database is not minimal.
var errNeedsReduce = errors.New("compile database needs reducing")

// usageError marks invalid arguments, flags or configuration.
type usageError struct {
	err error
}

func (e *usageError) Error() string {
	return e.err.Error()
}

func (e *usageError) Unwrap() error {
	return e.err
}

func usageErrorf(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}
