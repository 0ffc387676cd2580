package log

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

// DefaultContextProvider supplies the context of the logging functions and
// methods that do not take one.
var DefaultContextProvider = context.TODO

var (
	defaultMu  sync.RWMutex
	defaultLog = Make(os.Stderr)
)

// Default returns the package-level Logger.
func Default() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()

	return defaultLog
}

// Config reconfigures the package-level Logger by applying opts to its
// current configuration.
func Config(opts ...Option) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	defaultLog = defaultLog.Wrap(opts...)
}

// pkgSkip is callerSkip for the package-level functions, which call
// logSkip directly.
const pkgSkip = callerSkip - 1

// TraceContext logs at [LevelTrace] with the package-level Logger.
func TraceContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().logSkip(ctx, LevelTrace, msg, attrs, pkgSkip)
}

// Trace logs at [LevelTrace] with the package-level Logger.
func Trace(msg string, attrs ...slog.Attr) {
	Default().logSkip(DefaultContextProvider(), LevelTrace, msg, attrs, pkgSkip)
}

// DebugContext logs at [LevelDebug] with the package-level Logger.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().logSkip(ctx, LevelDebug, msg, attrs, pkgSkip)
}

// Debug logs at [LevelDebug] with the package-level Logger.
func Debug(msg string, attrs ...slog.Attr) {
	Default().logSkip(DefaultContextProvider(), LevelDebug, msg, attrs, pkgSkip)
}

// InfoContext logs at [LevelInfo] with the package-level Logger.
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().logSkip(ctx, LevelInfo, msg, attrs, pkgSkip)
}

// Info logs at [LevelInfo] with the package-level Logger.
func Info(msg string, attrs ...slog.Attr) {
	Default().logSkip(DefaultContextProvider(), LevelInfo, msg, attrs, pkgSkip)
}

// WarnContext logs at [LevelWarn] with the package-level Logger.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().logSkip(ctx, LevelWarn, msg, attrs, pkgSkip)
}

// Warn logs at [LevelWarn] with the package-level Logger.
func Warn(msg string, attrs ...slog.Attr) {
	Default().logSkip(DefaultContextProvider(), LevelWarn, msg, attrs, pkgSkip)
}

// ErrorContext logs at [LevelError] with the package-level Logger.
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().logSkip(ctx, LevelError, msg, attrs, pkgSkip)
}

// Error logs at [LevelError] with the package-level Logger.
func Error(msg string, attrs ...slog.Attr) {
	Default().logSkip(DefaultContextProvider(), LevelError, msg, attrs, pkgSkip)
}
