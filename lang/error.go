package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrParse           = NewError("parse error")
	ErrSourceTooLong   = NewError("expression exceeds maximum length")
	ErrMissingVariable = NewError("missing query variable")
	ErrEvaluation      = NewError("evaluation failed")
	ErrCompile         = NewError("expression compilation failed")
	ErrRuntime         = NewError("expression evaluation failed")
	ErrNoReturn        = NewError("expression did not return a value")
	ErrNotString       = NewError("return value is not a string")
	ErrThrown          = NewError("uncaught exception")
	ErrUndeclared      = NewError("assignment to undeclared variable")
	ErrRedeclared      = NewError("identifier has already been declared")
	ErrConstAssign     = NewError("assignment to constant variable")
	ErrReserved        = NewError("identifier is reserved")
	ErrUnsupported     = NewError("unsupported statement")
	ErrUnit            = NewError("invalid time unit")
	ErrAmount          = NewError("invalid amount")
	ErrDate            = NewError("invalid date")
	ErrLocale          = NewError("unsupported locale")
	ErrPanic           = NewError("evaluation panicked")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
	pos   *Position
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg> at <pos>: <err>"
	//   2. "<msg>: <err>"
	//   3. "<msg>"
	//   4. "<err>"
	part := make([]string, 0, 2)

	if e.msg != "" {
		msg := e.msg
		if e.pos != nil {
			msg += " at " + e.pos.String()
		}

		part = append(part, msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is a sentinel with the same message. Errors
// derived from a sentinel with Wrap, With or WithPosition still match it.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}

	return t.msg != "" && t.msg == e.msg
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+3)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.pos != nil {
		attrs = append(attrs, slog.Any("position", *e.pos))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
		pos:   e.pos,
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
		pos:   e.pos,
	}
}

// WithPosition records the source position the error refers to.
func (e *Error) WithPosition(pos Position) *Error {
	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: e.attrs,
		pos:   &pos,
	}
}

// Position returns the source position recorded with WithPosition.
func (e *Error) Position() (Position, bool) {
	if e.pos == nil {
		return Position{}, false
	}

	return *e.pos, true
}

// MissingVariableError reports the query variables an expression references
// that have no value. Names are in first-seen order.
type MissingVariableError struct {
	Names []string
}

func (e *MissingVariableError) Error() string {
	quoted := make([]string, len(e.Names))
	for i, name := range e.Names {
		quoted[i] = strconv.Quote(name)
	}

	return ErrMissingVariable.msg + ": " + strings.Join(quoted, ", ")
}

// Is matches [ErrMissingVariable].
func (e *MissingVariableError) Is(target error) bool {
	return ErrMissingVariable.Is(target)
}

// LogValue implements slog.LogValuer.
func (e *MissingVariableError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", ErrMissingVariable.msg),
		slog.Any("names", e.Names),
	)
}

// EvaluationError reports an expression that failed to run to a string
// result. Message is suitable for display as a validation message.
type EvaluationError struct {
	Message string
	Err     error
}

// newEvaluationError wraps cause, which must be non-nil.
func newEvaluationError(cause error) *EvaluationError {
	return &EvaluationError{Message: cause.Error(), Err: cause}
}

func (e *EvaluationError) Error() string {
	return ErrEvaluation.msg + ": " + e.Message
}

// Unwrap returns the underlying cause.
func (e *EvaluationError) Unwrap() error { return e.Err }

// Is matches [ErrEvaluation].
func (e *EvaluationError) Is(target error) bool {
	return ErrEvaluation.Is(target)
}

// LogValue implements slog.LogValuer.
func (e *EvaluationError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("error", ErrEvaluation.msg),
		slog.String("message", e.Message),
	}

	var ee *Error
	if errors.As(e.Err, &ee) {
		attrs = append(attrs, slog.Any("cause", ee))
	}

	return slog.GroupValue(attrs...)
}
