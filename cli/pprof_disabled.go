//go:build !pprof

package cli

import (
	"context"

	"github.com/alecthomas/kong"
)

// pprofConfig declares no profiling flags; --pprof-mode and friends exist
// only in builds with the pprof tag.
type pprofConfig struct{}

func (pprofConfig) vars() kong.Vars { return kong.Vars{} }

func (pprofConfig) group() kong.Group {
	return kong.Group{Key: "pprof", Title: "Profiling (pprof builds only)"}
}

func (pprofConfig) start(context.Context) (stop func()) { return func() {} }
