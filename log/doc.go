// Package log is a small leveled logger over [log/slog].
//
// A [Logger] is an immutable value built with functional options. It adds a
// [LevelTrace] below slog's debug level, used for render traces, and a pretty
// handler that styles text or JSON output when writing to a terminal.
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("kitchen"))
//
//	logger.Info("rendered", slog.Int("lines", n))
//
// The zero Logger discards everything. Libraries accept a Logger and callers
// that do not care simply pass none.
//
// The package-level functions ([Info], [ErrorContext], ...) write through a
// default logger on standard error, reconfigured with [Config].
package log
