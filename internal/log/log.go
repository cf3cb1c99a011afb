package log

import (
	"io"
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger    atomic.Pointer[zap.SugaredLogger]
	level     = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	verbosity atomic.Int32
)

func init() {
	// Default logger (warnings only) until Init is called
	verbosity.Store(VerbosityWarn)
	logger.Store(newLogger(os.Stderr, FormatText))
}

func newLogger(w io.Writer, format string) *zap.SugaredLogger {
	core := NewCore(CoreOptions{
		Level:  level,
		Format: format,
		Output: w,
	})
	return zap.New(core).Sugar()
}

// Init initializes the global logger (call once at startup).
func Init(v int, format string) {
	InitWriter(os.Stderr, v, format)
}

// InitWriter is Init with an explicit destination.
func InitWriter(w io.Writer, v int, format string) {
	SetVerbosity(v)
	l := newLogger(w, format)
	logger.Store(l)
	zap.ReplaceGlobals(l.Desugar())
}

// SetVerbosity changes verbosity at runtime.
func SetVerbosity(v int) {
	verbosity.Store(int32(v))
	level.SetLevel(VerbosityToLevel(v))
}

// Verbosity returns the current verbosity level.
func Verbosity() int {
	return int(verbosity.Load())
}

// Logger returns the current logger instance.
func Logger() *zap.SugaredLogger {
	return logger.Load()
}

// Sync flushes buffered log entries.
func Sync() error {
	return logger.Load().Sync()
}

// Error logs at error level (v=0).
func Error(msg string, args ...any) {
	logger.Load().Errorw(msg, args...)
}

// Warn logs at warn level (v=1).
func Warn(msg string, args ...any) {
	logger.Load().Warnw(msg, args...)
}

// Info logs at info level (v=2).
func Info(msg string, args ...any) {
	logger.Load().Infow(msg, args...)
}

// Debug logs at debug level (v=3).
func Debug(msg string, args ...any) {
	logger.Load().Debugw(msg, args...)
}

// Trace logs at trace level (v=4).
func Trace(msg string, args ...any) {
	l := logger.Load()
	if !l.Desugar().Core().Enabled(LevelTrace) {
		return
	}
	l.With(args...).Desugar().Check(LevelTrace, msg).Write()
}

// V returns a logger that only logs if verbosity >= level.
// Usage: log.V(3).Infow("detailed", "key", value)
func V(v int) *zap.SugaredLogger {
	if int(verbosity.Load()) >= v {
		return logger.Load()
	}
	return zap.NewNop().Sugar()
}

// With returns a logger with additional context.
func With(args ...any) *zap.SugaredLogger {
	return logger.Load().With(args...)
}

// Component returns a logger tagged with component name.
func Component(name string) *zap.SugaredLogger {
	return logger.Load().With("component", name)
}
