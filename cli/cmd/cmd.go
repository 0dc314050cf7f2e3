package cmd

import (
	"context"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ardnew/aliasexpr/lang"
)

type (
	contextKey     struct{}
	evalOptionsKey struct{}
	outputKey      struct{}
)

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// CacheDirFrom returns the cache directory recorded in the kong context's
// variables, or "" when there is none.
func CacheDirFrom(ctx context.Context) string {
	ktx := kongContextFrom(ctx)
	if ktx == nil || ktx.Model == nil {
		return ""
	}

	return ktx.Model.Vars()[CacheIdentifier]
}

// WithEvalOptions returns a new context.Context carrying the evaluator
// options derived from global flags (locale, time zone, logger).
func WithEvalOptions(ctx context.Context, opts ...lang.Option) context.Context {
	return context.WithValue(ctx, evalOptionsKey{}, opts)
}

// EvalOptionsFrom returns the evaluator options stored by [WithEvalOptions].
func EvalOptionsFrom(ctx context.Context) []lang.Option {
	opts, _ := ctx.Value(evalOptionsKey{}).([]lang.Option)

	return opts
}

// WithOutput returns a new context.Context whose commands write their results
// to w instead of standard output.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

// OutputFrom returns the writer stored by [WithOutput], the kong context's
// standard output, or [os.Stdout].
func OutputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// readSource returns the contents of the file at path, or of stdin when path
// is "-".
func readSource(path string) (string, error) {
	var r io.Reader = os.Stdin

	if path != stdinSource {
		file, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer file.Close()

		r = file
	}

	buf, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	return string(buf), nil
}

// expression returns the expression text given either inline or with a file
// flag. Exactly one of them must be set.
func expression(inline, file string) (string, error) {
	switch {
	case file != "" && inline != "":
		return "", ErrSourceConflict
	case file != "":
		src, err := readSource(file)
		if err != nil {
			return "", ErrReadSource.Wrap(err)
		}

		return src, nil
	case inline != "":
		return inline, nil
	default:
		return "", ErrNoExpression
	}
}
