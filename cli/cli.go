package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/alecthomas/kong"

	"github.com/ardnew/aliasexpr/cli/cmd"
	"github.com/ardnew/aliasexpr/cli/cmd/repl"
	"github.com/ardnew/aliasexpr/cli/cmd/serve"
	"github.com/ardnew/aliasexpr/lang"
	"github.com/ardnew/aliasexpr/log"
	"github.com/ardnew/aliasexpr/pkg"
)

// CLI is the top-level command-line interface for aliasexpr.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Config   kong.ConfigFlag `help:"Load flag values from a YAML file."                   placeholder:"FILE"          short:"c"`
	Locale   string          `help:"Locale used to format dates (e.g. en-US, de-DE)."     default:"${locale}"`
	Timezone string          `help:"IANA time zone used to interpret dates, or 'Local'." default:"Local"`

	Refs    cmd.Refs    `cmd:"" help:"Print the query variables an expression references"`
	Eval    cmd.Eval    `cmd:"" help:"Evaluate an alias expression"                       default:"withargs"`
	Resolve cmd.Resolve `cmd:"" help:"Resolve the display names of widget fields"`
	Init    cmd.Init    `cmd:"" help:"Initialize configuration file"`
	Serve   serve.Serve `cmd:"" help:"Serve evaluation tools over MCP (stdio)"`
	Repl    repl.Repl   `cmd:"" help:"Interactively test an alias"`
}

// Run executes the aliasexpr CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig + configExt)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  cacheDir(),
		"locale":             "en-US",
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Logger flags are applied before kong parses so that parse errors are
	// reported with the requested level and format.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.DefaultEnvars(envPrefix()),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(resolve(baseConfig), configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	defer cli.Log.start(ctx)()

	// No-op unless built with tag pprof and a mode is selected.
	defer cli.Pprof.start(ctx)()

	opts, err := cli.evalOptions()
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithEvalOptions(ctx, opts...)

	return ktx.Run(&cli)
}

// evalOptions translates the global flags into evaluator options.
func (c *CLI) evalOptions() ([]lang.Option, error) {
	locale, err := lang.ParseLocale(c.Locale)
	if err != nil {
		return nil, cmd.ErrInvalidFlag.
			With(slog.String("flag", "locale"), slog.String("value", c.Locale)).
			Wrap(err)
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, cmd.ErrInvalidFlag.
			With(slog.String("flag", "timezone"), slog.String("value", c.Timezone)).
			Wrap(err)
	}

	return []lang.Option{
		lang.WithLogger(log.Default()),
		lang.WithLocale(locale),
		lang.WithLocation(loc),
	}, nil
}
