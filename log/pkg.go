package log

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

// DefaultContextProvider returns the context used by context-unaware
// logging functions.
var DefaultContextProvider = context.TODO

var (
	defaultMu  sync.RWMutex
	defaultLog = Make(os.Stderr)
)

// Default returns the package-level logger.
func Default() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()

	return defaultLog
}

// Config reconfigures the package-level logger with opts.
func Config(opts ...Option) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	defaultLog = defaultLog.Wrap(opts...)
}

// pkgLog writes through the package-level logger, attributing the record
// to the caller of the exported package function.
func pkgLog(ctx context.Context, level Level, msg string, attrs ...slog.Attr) {
	// runtime.Callers, logDepth, pkgLog, the exported function.
	Default().logDepth(ctx, 3, level, msg, attrs...)
}

// TraceContext logs a message at Trace level using the default logger with the provided context.
func TraceContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	pkgLog(ctx, LevelTrace, msg, attrs...)
}

// Trace logs a message at Trace level using the default logger.
func Trace(msg string, attrs ...slog.Attr) { pkgLog(DefaultContextProvider(), LevelTrace, msg, attrs...) }

// DebugContext logs a message at Debug level using the default logger with the provided context.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	pkgLog(ctx, LevelDebug, msg, attrs...)
}

// Debug logs a message at Debug level using the default logger.
func Debug(msg string, attrs ...slog.Attr) { pkgLog(DefaultContextProvider(), LevelDebug, msg, attrs...) }

// InfoContext logs a message at Info level using the default logger with the provided context.
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	pkgLog(ctx, LevelInfo, msg, attrs...)
}

// Info logs a message at Info level using the default logger.
func Info(msg string, attrs ...slog.Attr) { pkgLog(DefaultContextProvider(), LevelInfo, msg, attrs...) }

// WarnContext logs a message at Warn level using the default logger with the provided context.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	pkgLog(ctx, LevelWarn, msg, attrs...)
}

// Warn logs a message at Warn level using the default logger.
func Warn(msg string, attrs ...slog.Attr) { pkgLog(DefaultContextProvider(), LevelWarn, msg, attrs...) }

// ErrorContext logs a message at Error level using the default logger with the provided context.
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	pkgLog(ctx, LevelError, msg, attrs...)
}

// Error logs a message at Error level using the default logger.
func Error(msg string, attrs ...slog.Attr) { pkgLog(DefaultContextProvider(), LevelError, msg, attrs...) }

// With returns the default logger with attrs bound to every message.
func With(attrs ...slog.Attr) Logger {
	return Default().With(attrs...)
}
