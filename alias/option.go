package alias

import (
	"github.com/ardnew/aliasexpr/lang"
	"github.com/ardnew/aliasexpr/log"
)

// DefaultQuery selects every object that looks like a field configuration.
const DefaultQuery = `.. | objects | select(has("alias") and has("useExpression"))`

// Option configures a [Resolver].
type Option func(*Resolver)

// WithLogger sets the logger failures are reported to by
// [Resolver.DisplayName].
func WithLogger(logger log.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithEvaluator sets the evaluator expressions run in. Without it, a new
// evaluator is created from the options given with [WithEvalOptions].
func WithEvaluator(e *lang.Evaluator) Option {
	return func(r *Resolver) {
		r.eval = e
	}
}

// WithEvalOptions configures the evaluator the resolver creates.
func WithEvalOptions(opts ...lang.Option) Option {
	return func(r *Resolver) {
		r.evalOpts = append(r.evalOpts, opts...)
	}
}

type decodeOptions struct {
	query  string
	where  string
	logger log.Logger
}

// DecodeOption configures [Decode].
type DecodeOption func(*decodeOptions)

// WithQuery sets the jq query that selects field objects. The default is
// [DefaultQuery].
func WithQuery(query string) DecodeOption {
	return func(o *decodeOptions) {
		if query != "" {
			o.query = query
		}
	}
}

// WithWhere keeps only the selected fields matching a boolean expression
// such as `useExpression == true`.
func WithWhere(expr string) DecodeOption {
	return func(o *decodeOptions) {
		o.where = expr
	}
}

// WithDecodeLogger sets the logger for trace-level debugging of [Decode].
func WithDecodeLogger(logger log.Logger) DecodeOption {
	return func(o *decodeOptions) {
		o.logger = logger
	}
}
