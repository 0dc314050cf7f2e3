package cmd

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/ardnew/aliasexpr/lang"
)

// Process exit codes reported by [ExitCode].
const (
	ExitSuccess = iota
	ExitFailure
	ExitMissingVariables
	ExitEvaluation
)

// Error represents a CLI command error with structured logging support.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

func NewError(msg string) *Error {
	return &Error{msg: msg}
}

func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is a sentinel with the same message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}

	return t.msg != "" && t.msg == e.msg
}

func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		var lv slog.LogValuer
		if errors.As(e.err, &lv) {
			attrs = append(attrs, slog.Any("cause", lv))
		} else {
			attrs = append(attrs, slog.String("cause", e.err.Error()))
		}
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{msg: e.msg, err: err, attrs: e.attrs}
}

// With adds attributes to the error for structured logging.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, 0, len(e.attrs)+len(attrs))
	newAttrs = append(newAttrs, e.attrs...)
	newAttrs = append(newAttrs, attrs...)

	return &Error{msg: e.msg, err: e.err, attrs: newAttrs}
}

// ExitCode implements kong's exit-coder contract.
func (e *Error) ExitCode() int {
	if e.err == nil {
		return ExitFailure
	}

	return ExitCode(e.err)
}

// ExitCode returns the process exit code for err: [ExitSuccess] for nil,
// [ExitMissingVariables] when query variables were missing,
// [ExitEvaluation] when an expression failed to evaluate, and
// [ExitFailure] otherwise.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, lang.ErrMissingVariable):
		return ExitMissingVariables
	case errors.Is(err, lang.ErrEvaluation):
		return ExitEvaluation
	default:
		return ExitFailure
	}
}

var (
	ErrYAMLMarshal    = NewError("marshal YAML")
	ErrWriteConfig    = NewError("write configuration file")
	ErrFileExists     = NewError("file exists (use --force to overwrite)")
	ErrInvalidFlag    = NewError("invalid flag value")
	ErrReadSource     = NewError("read source")
	ErrNoExpression   = NewError("no expression given (use an argument or --file)")
	ErrSourceConflict = NewError("expression argument and --file are mutually exclusive")
	ErrReadVars       = NewError("read variables file")
	ErrEvaluate       = NewError("evaluate")
	ErrResolve        = NewError("resolve")
	ErrWatch          = NewError("watch")
)
