// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// Loggers are configured at creation time with functional options and
// are immutable afterwards; [Logger.Wrap] and [Logger.With] derive new
// loggers.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("title rendered", slog.String("title", title))
//
// The package-level functions ([Info], [Debug], ...) write through a
// default logger that [Config] reconfigures:
//
//	log.Config(log.WithLevel(log.LevelDebug), log.WithFormat(log.FormatJSON))
//
// # Levels
//
// Five levels are defined: [LevelTrace], [LevelDebug], [LevelInfo],
// [LevelWarn], and [LevelError]. Trace is below Debug and is printed as
// TRACE rather than slog's DEBUG-4.
//
// # Output
//
// Two formats are supported, [FormatText] (default) and [FormatJSON].
// With [WithPretty] enabled, both are rendered by colorizing handlers;
// color is controlled with [WithColor] and defaults to whatever the
// terminal supports. [WithFile] sends output to a size-rotated log file.
//
// # Time Formatting
//
// [WithTimeLayout] accepts a named layout from the [time] package (such
// as "RFC3339" or "Kitchen"), "none" to omit timestamps, or a custom
// layout string.
package log
