package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fsnotify/fsnotify"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/aliasexpr/alias"
	"github.com/ardnew/aliasexpr/log"
)

// defaultDebounce is how long the watched document must stay unchanged
// before it is resolved again.
const defaultDebounce = 100 * time.Millisecond

// Resolve decodes the fields of a widget configuration document and prints
// the display name of each.
type Resolve struct {
	File     string        `help:"Widget configuration document (YAML or JSON, '-' for stdin)." required:""          short:"f"`
	Query    string        `help:"jq query selecting field objects (default: objects with alias and useExpression keys)."`
	Where    string        `help:"Boolean filter applied to selected fields."                  placeholder:"EXPR"`
	Output   string        `help:"Output format."                                              default:"text"         enum:"text,json,yaml" short:"o"`
	Watch    bool          `help:"Re-resolve whenever the document changes."                                          short:"w"`
	Debounce time.Duration `help:"Quiet interval before re-resolving in watch mode."           default:"100ms"        hidden:""`

	VarFlags `embed:""`
}

// Row is one resolved field.
type Row struct {
	Field       string   `json:"field"             yaml:"field"`
	DisplayName string   `json:"displayName"       yaml:"displayName"`
	Mode        string   `json:"mode"              yaml:"mode"`
	Missing     []string `json:"missing,omitempty" yaml:"missing,omitempty"`
}

// Run executes the resolve command.
func (r *Resolve) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	vars, err := r.Load()
	if err != nil {
		return err
	}

	resolver := alias.NewResolver(
		alias.WithLogger(log.Default()),
		alias.WithEvalOptions(EvalOptionsFrom(ctx)...),
	)

	if !r.Watch {
		return r.once(ctx, resolver, vars, OutputFrom(ctx))
	}

	return r.watch(ctx, resolver, vars, OutputFrom(ctx))
}

// once resolves the document a single time and writes the result to w.
func (r *Resolve) once(
	ctx context.Context,
	resolver *alias.Resolver,
	vars map[string]string,
	w io.Writer,
) error {
	rows, err := r.rows(ctx, resolver, vars)
	if err != nil {
		return err
	}

	return writeRows(w, r.Output, rows)
}

func (r *Resolve) rows(
	ctx context.Context,
	resolver *alias.Resolver,
	vars map[string]string,
) ([]Row, error) {
	var in io.Reader = os.Stdin

	if r.File != stdinSource {
		file, err := os.Open(r.File)
		if err != nil {
			return nil, ErrReadSource.With(slog.String("file", r.File)).Wrap(err)
		}
		defer file.Close()

		in = file
	}

	opts := []alias.DecodeOption{alias.WithDecodeLogger(log.Default())}

	if r.Query != "" {
		opts = append(opts, alias.WithQuery(r.Query))
	}

	if r.Where != "" {
		opts = append(opts, alias.WithWhere(r.Where))
	}

	fields, err := alias.Decode(ctx, in, opts...)
	if err != nil {
		return nil, ErrResolve.With(slog.String("file", r.File)).Wrap(err)
	}

	rows := make([]Row, 0, len(fields))

	for _, f := range fields {
		mode := "literal"
		if f.Config.UseExpression {
			mode = "expression"
		}

		rows = append(rows, Row{
			Field:       f.Name,
			DisplayName: resolver.DisplayName(ctx, f.Name, &f.Config, vars),
			Mode:        mode,
			Missing:     resolver.Missing(f.Config, vars),
		})
	}

	return rows, nil
}

// watch resolves the document, then again after each write to it, until ctx
// is canceled. The containing directory is watched so that editors which
// replace the file by renaming are followed.
func (r *Resolve) watch(
	ctx context.Context,
	resolver *alias.Resolver,
	vars map[string]string,
	w io.Writer,
) error {
	if r.File == stdinSource {
		return ErrWatch.Wrap(ErrInvalidFlag.With(slog.String("flag", "file")))
	}

	target, err := filepath.Abs(r.File)
	if err != nil {
		return ErrWatch.Wrap(err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return ErrWatch.Wrap(err)
	}
	defer watcher.Close()

	err = watcher.Add(filepath.Dir(target))
	if err != nil {
		return ErrWatch.With(slog.String("dir", filepath.Dir(target))).Wrap(err)
	}

	report := func() {
		err := r.once(ctx, resolver, vars, w)
		if err != nil {
			log.ErrorContext(ctx, "resolve failed", slog.Any("error", err))
		}
	}

	report()

	debounce := r.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	// Editors often write a file in several steps; resolve once the events
	// have been quiet for the debounce interval.
	timer := time.NewTimer(debounce)
	timer.Stop()

	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(event.Name) != target ||
				!event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			log.TraceContext(ctx, "document changed",
				slog.String("file", event.Name),
				slog.String("op", event.Op.String()),
			)

			timer.Reset(debounce)

		case <-timer.C:
			report()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			log.WarnContext(ctx, "watch error", slog.Any("error", err))
		}
	}
}

func writeRows(w io.Writer, format string, rows []Row) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(rows)

	case "yaml":
		buf, err := yaml.Marshal(rows)
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		_, err = w.Write(buf)

		return err

	default:
		if len(rows) == 0 {
			return nil
		}

		r := lipgloss.NewRenderer(w)
		field := r.NewStyle().Foreground(lipgloss.Color("8")).PaddingRight(2)
		name := r.NewStyle().Bold(true)

		tbl := table.New().
			Border(lipgloss.HiddenBorder()).
			BorderTop(false).
			BorderBottom(false).
			BorderLeft(false).
			BorderRight(false).
			BorderColumn(false).
			BorderHeader(false).
			StyleFunc(func(_, col int) lipgloss.Style {
				if col == 0 {
					return field
				}

				return name
			})

		for _, row := range rows {
			tbl.Row(row.Field, row.DisplayName)
		}

		_, err := fmt.Fprintln(w, tbl.String())

		return err
	}
}
