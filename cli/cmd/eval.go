package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/aliasexpr/lang"
)

// Eval evaluates an alias expression with the given query variables.
type Eval struct {
	Expression string `arg:"" help:"Expression text."                         optional:""`
	File       string `       help:"Read the expression from a file ('-' for stdin)." short:"f"`

	VarFlags `embed:""`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	src, err := expression(e.Expression, e.File)
	if err != nil {
		return err
	}

	vars, err := e.Load()
	if err != nil {
		return err
	}

	result, err := lang.NewEvaluator(EvalOptionsFrom(ctx)...).
		Evaluate(ctx, src, vars)
	if err != nil {
		return ErrEvaluate.
			With(slog.Int("vars", len(vars))).
			Wrap(err)
	}

	fmt.Fprintln(OutputFrom(ctx), result)

	return nil
}
