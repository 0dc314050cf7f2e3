// Package cli contains the command line interface for aliasexpr.
//
// # Commands
//
//	aliasexpr refs    '$state$-$month$'
//	aliasexpr eval    'return $a$ + "x";' --var a=1
//	aliasexpr resolve -f widget.yaml --var state=CA --watch
//	aliasexpr init    --force
//	aliasexpr serve
//	aliasexpr repl    --alias '$name$'
//
// # Configuration
//
// Flag values are read, in increasing order of precedence, from defaults,
// the YAML file config.yaml in the user configuration directory (or the file
// named with --config), environment variables prefixed with ALIASEXPR_, and
// the command line. The init command writes the current flag values to the
// configuration file.
//
// # Logging Options
//
//   - --log-level: trace, debug, info, warn or error
//   - --log-format: json or text
//   - --log-time-layout: timestamp format (RFC3339, Kitchen, ...)
//   - --log-caller: include caller information
//   - --log-pretty: colorized output
//
// # Profiling Options
//
// Profiling flags (--pprof-mode, --pprof-path, --pprof-quiet) are only
// available when built with the pprof build tag.
package cli
