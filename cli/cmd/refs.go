package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/aliasexpr/lang"
	"github.com/ardnew/aliasexpr/log"
)

// Refs prints the query variable names an expression references.
type Refs struct {
	Expression string `arg:"" help:"Expression text."                         optional:""`
	File       string `       help:"Read the expression from a file ('-' for stdin)." short:"f"`
}

// Run executes the refs command.
func (r *Refs) Run(ctx context.Context) error {
	src, err := expression(r.Expression, r.File)
	if err != nil {
		return err
	}

	refs := lang.References(src)

	log.DebugContext(ctx, "extracted references",
		slog.Int("count", len(refs)),
	)

	out := OutputFrom(ctx)
	for _, name := range refs {
		fmt.Fprintln(out, name)
	}

	return nil
}
