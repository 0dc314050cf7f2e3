package alias

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ardnew/aliasexpr/lang"
	"github.com/ardnew/aliasexpr/log"
)

// Resolver turns field alias configurations into display names. It holds no
// per-call state and is safe for concurrent use.
type Resolver struct {
	eval     *lang.Evaluator
	evalOpts []lang.Option
	logger   log.Logger
}

// NewResolver creates a [Resolver] configured with opts.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{logger: log.Default()}

	for _, opt := range opts {
		opt(r)
	}

	if r.eval == nil {
		r.eval = lang.NewEvaluator(
			append([]lang.Option{lang.WithLogger(r.logger)}, r.evalOpts...)...,
		)
	}

	return r
}

//nolint:gochecknoglobals
var defaultResolver = sync.OnceValue(func() *Resolver {
	return NewResolver()
})

// Resolve resolves cfg with the default [Resolver].
func Resolve(
	ctx context.Context,
	cfg FieldConfig,
	vars map[string]string,
) (string, error) {
	return defaultResolver().Resolve(ctx, cfg, vars)
}

// Resolve returns the display alias cfg describes.
func (r *Resolver) Resolve(
	ctx context.Context,
	cfg FieldConfig,
	vars map[string]string,
) (string, error) {
	return r.ResolveAlias(ctx, cfg.Variant(), vars)
}

// ResolveAlias returns a literal verbatim, or the string an expression
// returns when evaluated with vars. Expression failures are
// [*lang.MissingVariableError] or [*lang.EvaluationError].
func (r *Resolver) ResolveAlias(
	ctx context.Context,
	a Alias,
	vars map[string]string,
) (string, error) {
	switch a := a.(type) {
	case Literal:
		return string(a), nil

	case Expression:
		return r.eval.Evaluate(ctx, string(a), vars)

	default:
		return "", ErrNilAlias
	}
}

// Missing returns the variables the caller must supply before cfg can be
// resolved, in first-seen order. A literal never needs any.
func (r *Resolver) Missing(cfg FieldConfig, vars map[string]string) []string {
	if !cfg.UseExpression {
		return []string{}
	}

	missing := make([]string, 0)

	for _, name := range lang.References(cfg.Alias) {
		if _, ok := vars[name]; !ok {
			missing = append(missing, name)
		}
	}

	return missing
}

// DisplayName returns the name to render for field. It falls back to field
// when cfg is nil, has an empty alias, or fails to resolve; failures are
// logged at warn level.
func (r *Resolver) DisplayName(
	ctx context.Context,
	field string,
	cfg *FieldConfig,
	vars map[string]string,
) string {
	if cfg == nil || cfg.Alias == "" {
		return field
	}

	name, err := r.Resolve(ctx, *cfg, vars)
	if err != nil {
		r.logger.WarnContext(ctx, "alias resolution failed",
			slog.String("field", field),
			slog.Any("error", err))

		return field
	}

	return name
}
