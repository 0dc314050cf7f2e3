package lang

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/google/uuid"

	"github.com/ardnew/aliasexpr/log"
)

// Evaluator evaluates alias expressions. Parsed programs are cached by
// source, so evaluating the same expression with different variables parses
// it once. An Evaluator is safe for concurrent use.
type Evaluator struct {
	opts  options
	cache programCache
}

// NewEvaluator creates an [Evaluator] configured with opts.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{opts: makeOptions(opts...)}
	e.cache.limit = maxCachedPrograms

	return e
}

//nolint:gochecknoglobals
var defaultEvaluator = sync.OnceValue(func() *Evaluator {
	return NewEvaluator()
})

// Evaluate evaluates source with the default [Evaluator], or with a new one
// configured with opts when any are given.
func Evaluate(
	ctx context.Context,
	source string,
	vars map[string]string,
	opts ...Option,
) (string, error) {
	if len(opts) > 0 {
		return NewEvaluator(opts...).Evaluate(ctx, source, vars)
	}

	return defaultEvaluator().Evaluate(ctx, source, vars)
}

// Parse parses source, or returns the cached result of an earlier parse.
func (e *Evaluator) Parse(ctx context.Context, source string) (*Program, error) {
	return e.cache.load(ctx, source, e.opts)
}

// ClearCache discards all cached programs.
func (e *Evaluator) ClearCache() {
	e.cache.clear()
}

// Evaluate runs source with the given query variable values and returns the
// string it returns.
//
// Every referenced variable must have an entry in vars, otherwise a
// [*MissingVariableError] naming all absent variables is returned and
// nothing runs. Every other failure is an [*EvaluationError]. Extra entries
// in vars are ignored.
func (e *Evaluator) Evaluate(
	ctx context.Context,
	source string,
	vars map[string]string,
) (result string, err error) {
	logger := e.opts.logger.With(slog.String("eval_id", uuid.NewString()))

	logger.TraceContext(ctx, "evaluate",
		slog.Int("source_length", len(source)),
		slog.Int("var_count", len(vars)))

	defer func() {
		if r := recover(); r != nil {
			result = ""
			err = newEvaluationError(ErrPanic.
				With(slog.String("panic", fmt.Sprint(r))).
				Wrap(fmt.Errorf("%v", r)))
		}

		if err != nil {
			logger.DebugContext(ctx, "evaluate failed", slog.Any("error", err))

			return
		}

		logger.TraceContext(ctx, "evaluate complete",
			slog.Int("result_length", len(result)))
	}()

	if limit := e.opts.maxSourceLength; limit > 0 && len(source) > limit {
		return "", newEvaluationError(ErrSourceTooLong.With(
			slog.Int("length", len(source)),
			slog.Int("max_length", limit),
		))
	}

	if missing := missingNames(References(source), vars); len(missing) > 0 {
		return "", &MissingVariableError{Names: missing}
	}

	opts := e.opts
	opts.logger = logger

	prog, err := e.cache.load(ctx, source, opts)
	if err != nil {
		return "", newEvaluationError(err)
	}

	result, err = e.run(ctx, logger, prog, vars)
	if err != nil {
		var me *MissingVariableError
		if errors.As(err, &me) {
			return "", me
		}

		return "", newEvaluationError(err)
	}

	return result, nil
}

// frame is the mutable state of one evaluation.
type frame struct {
	env     map[string]any
	decls   map[string]DeclKind
	options []expr.Option
	logger  log.Logger
}

func (e *Evaluator) run(
	ctx context.Context,
	logger log.Logger,
	prog *Program,
	vars map[string]string,
) (string, error) {
	env := makeEnv()

	for name, id := range prog.Bindings {
		value, ok := vars[name]
		if !ok {
			return "", &MissingVariableError{Names: []string{name}}
		}

		env[id] = value
	}

	moments := &momentFactory{
		clock:    e.opts.clock,
		location: e.opts.location,
		locale:   e.opts.locale,
	}

	f := &frame{
		env:    env,
		decls:  make(map[string]DeclKind),
		logger: logger,
	}

	f.options = []expr.Option{
		expr.Function("Moment", moments.call, momentTypes...),
		expr.Function(stringFunc, func(args ...any) (any, error) {
			return toString(args[0]), nil
		}, new(func(any) string)),
	}

	for _, name := range disabledBuiltins {
		f.options = append(f.options, expr.DisableBuiltin(name))
	}

	for _, stmt := range prog.Statements {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		done, result, err := f.exec(stmt)
		if err != nil {
			return "", err
		}

		if done {
			return result, nil
		}
	}

	return "", ErrNoReturn
}

// exec executes one statement. done is true when the statement returned.
func (f *frame) exec(stmt *Statement) (done bool, result string, err error) {
	f.logger.Trace("execute statement",
		slog.String("kind", stmt.Kind.String()),
		slog.Any("position", stmt.Pos))

	switch stmt.Kind {
	case StmtDeclare:
		return false, "", f.declare(stmt)

	case StmtAssign:
		return false, "", f.assign(stmt)

	case StmtReturn:
		if stmt.Expr == "" {
			return true, "", ErrNotString.WithPosition(stmt.Pos).
				With(slog.String("type", "undefined"))
		}

		value, err := f.eval(stmt, stmt.Expr)
		if err != nil {
			return true, "", err
		}

		s, ok := value.(string)
		if !ok {
			return true, "", ErrNotString.WithPosition(stmt.ExprPos).
				With(slog.String("type", typeName(value)))
		}

		return true, s, nil

	case StmtThrow:
		value, err := f.eval(stmt, stmt.Expr)
		if err != nil {
			return true, "", err
		}

		return true, "", ErrThrown.WithPosition(stmt.Pos).
			Wrap(errors.New(toString(value)))

	default:
		_, err := f.eval(stmt, stmt.Expr)

		return false, "", err
	}
}

func (f *frame) declare(stmt *Statement) error {
	if isReservedName(stmt.Name) {
		return ErrReserved.WithPosition(stmt.Pos).
			With(slog.String("name", stmt.Name))
	}

	if prev, ok := f.decls[stmt.Name]; ok &&
		(prev != DeclVar || stmt.Decl != DeclVar) {
		return ErrRedeclared.WithPosition(stmt.Pos).
			With(slog.String("name", stmt.Name))
	}

	var value any

	if stmt.Expr != "" {
		var err error

		value, err = f.eval(stmt, stmt.Expr)
		if err != nil {
			return err
		}
	} else if _, ok := f.env[stmt.Name]; ok {
		// var x; keeps the value of an earlier var x.
		value = f.env[stmt.Name]
	}

	f.decls[stmt.Name] = stmt.Decl
	f.env[stmt.Name] = value

	return nil
}

func (f *frame) assign(stmt *Statement) error {
	kind, ok := f.decls[stmt.Name]
	if !ok {
		return ErrUndeclared.WithPosition(stmt.Pos).
			With(slog.String("name", stmt.Name))
	}

	if kind == DeclConst {
		return ErrConstAssign.WithPosition(stmt.Pos).
			With(slog.String("name", stmt.Name))
	}

	src := stmt.Expr
	if stmt.Compound {
		src = stmt.Name + " + (" + src + ")"
	}

	value, err := f.eval(stmt, src)
	if err != nil {
		return err
	}

	f.env[stmt.Name] = value

	return nil
}

// eval compiles and runs one expression against the current environment.
// Programs are compiled per statement because the types of declared
// variables are only known once earlier statements have run.
func (f *frame) eval(stmt *Statement, src string) (any, error) {
	opts := make([]expr.Option, 0, len(f.options)+3)
	opts = append(opts, expr.Env(f.env))
	opts = append(opts, f.options...)
	opts = append(opts,
		expr.Patch(&methodPatcher{logger: f.logger}),
		expr.Patch(&concatPatcher{logger: f.logger}),
	)

	program, err := expr.Compile(src, opts...)
	if err != nil {
		return nil, ErrCompile.WithPosition(stmt.ExprPos).
			With(slog.String("statement", stmt.String())).
			Wrap(err)
	}

	value, err := expr.Run(program, f.env)
	if err != nil {
		return nil, ErrRuntime.WithPosition(stmt.ExprPos).
			With(slog.String("statement", stmt.String())).
			Wrap(err)
	}

	return value, nil
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return "number"
	case string:
		return "string"
	case Moment:
		return "Moment"
	case []any, []string:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
