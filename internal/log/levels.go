// Package log provides structured logging with verbosity levels for compdb.
// It wraps uber-go/zap and follows kubectl/klog patterns. Everything is
// written to stderr; stdout belongs to the reduced database.
package log

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// LevelTrace is a custom trace level (more verbose than debug).
// Zap doesn't have trace, so we use a custom level below Debug (-1).
const LevelTrace = zapcore.Level(-2)

// Verbosity level constants for documentation and reference.
const (
	VerbosityError = 0 // Errors only (quiet)
	VerbosityWarn  = 1 // + Warnings (conflicting duplicates)
	VerbosityInfo  = 2 // + Info (config loaded, reduction summary)
	VerbosityDebug = 3 // + Debug (resolved exclusions, per-file conflicts)
	VerbosityTrace = 4 // + Trace (every skipped entry)
)

// Supported output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// VerbosityToLevel maps -v=N to zap level.
func VerbosityToLevel(v int) zapcore.Level {
	switch {
	case v <= 0:
		return zapcore.ErrorLevel
	case v == 1:
		return zapcore.WarnLevel
	case v == 2:
		return zapcore.InfoLevel
	case v == 3:
		return zapcore.DebugLevel
	default:
		return LevelTrace
	}
}

// LevelToVerbosity maps zap level to -v=N (for display).
func LevelToVerbosity(l zapcore.Level) int {
	switch {
	case l >= zapcore.ErrorLevel:
		return VerbosityError
	case l >= zapcore.WarnLevel:
		return VerbosityWarn
	case l >= zapcore.InfoLevel:
		return VerbosityInfo
	case l >= zapcore.DebugLevel:
		return VerbosityDebug
	default:
		return VerbosityTrace
	}
}

// LevelName returns the name for a zap level, including custom levels.
func LevelName(l zapcore.Level) string {
	if l == LevelTrace {
		return "TRACE"
	}
	return l.CapitalString()
}

// ValidateFormat reports whether format is a supported --log-format value.
func ValidateFormat(format string) error {
	switch strings.ToLower(format) {
	case FormatText, FormatJSON:
		return nil
	}
	return fmt.Errorf("unsupported log format %q (want %s or %s)", format, FormatText, FormatJSON)
}
