// Package log provides leveled structured logging on top of [log/slog].
//
// A [Logger] is made once with functional options and is immutable
// afterwards; [Logger.Wrap] derives a reconfigured copy and [Logger.With]
// one that adds attributes to every record. The zero Logger discards
// everything, so components may hold one without checking for nil.
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithFormat(log.FormatJSON),
//		log.WithCaller(true))
//
//	logger.Trace("call", slog.String("function", "fib"), slog.Int("depth", 3))
//
// # Levels
//
// Besides the four slog levels there is [LevelTrace], below debug, used for
// per-call interpreter events.
//
// # Formats
//
// Records are written as text or JSON. With [WithPretty] (the default) the
// text form is aligned and the JSON form indented, and both are colored
// with lipgloss styles when the output is a terminal.
//
// # Time
//
// [WithTimeLayout] accepts the layout names of the [time] package, a
// custom layout, or "none" to omit timestamps.
//
// # Package logger
//
// The package-level functions ([Info], [DebugContext], ...) log through a
// default Logger writing to standard error, reconfigured with [Config].
package log
