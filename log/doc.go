// Package log wraps [log/slog] with a trace level, attribute-only logging
// methods and a terminal-friendly handler.
//
// A [Logger] is configured once, at creation, with functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("kitchen"),
//		log.WithCaller(true))
//
//	logger.Trace("statement evaluated", slog.Int("index", 2))
//
// Loggers are values. [Logger.With] and [Logger.Wrap] return new loggers and
// never modify the receiver, so a Logger may be shared between goroutines.
// The zero Logger discards everything, which lets library types hold a
// Logger field without a constructor.
//
// # Levels
//
// [LevelTrace] sits below [LevelDebug] and is used for per-statement detail
// while evaluating an alias. Levels are written upper-case ("TRACE") in
// every format.
//
// # Formats
//
// [FormatJSON] and [FormatText] match the [slog.JSONHandler] and
// [slog.TextHandler] layouts. With [WithPretty] enabled, records are laid
// out for reading instead: text records stay on one line with colored keys,
// and JSON records are indented with one attribute per line. Colors are
// only emitted when the output is a terminal.
//
// # Time layouts
//
// [WithTimeLayout] accepts the names of the [time] package layouts,
// case-insensitively ("RFC3339Nano", "kitchen"), a few short aliases
// ("ms", "us", "ns"), or a literal layout. "none" or an empty layout omits
// the timestamp.
//
// # Default logger
//
// Package-level functions such as [Info] and [TraceContext] write through a
// default logger on stderr. [Config] reconfigures it and [Default] returns
// it for injection into library options. Context-unaware functions use
// [DefaultContextProvider].
package log
