package lang

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fixedNow is Friday, 15 March 2024, 10:30 UTC.
var fixedNow = time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

func newTestEvaluator(opts ...Option) *Evaluator {
	return NewEvaluator(append([]Option{
		WithClock(func() time.Time { return fixedNow }),
		WithLocation(time.UTC),
	}, opts...)...)
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name   string
		source string
		vars   map[string]string
		want   string
	}{
		{
			name:   "concatenate variable",
			source: "return $x$ + '!'",
			vars:   map[string]string{"x": "ok"},
			want:   "ok!",
		},
		{
			name: "alias with date",
			source: `var province = $province$
var currentYearMonth = Moment().format('YYYY年MM月')
var alias = province + '(' + currentYearMonth + ')'
return alias`,
			vars: map[string]string{"province": "浙江"},
			want: "浙江(2024年03月)",
		},
		{
			name:   "value with quotes and backslashes",
			source: "return 'v=' + $x$",
			vars:   map[string]string{"x": `it's "q" \`},
			want:   `v=it's "q" \`,
		},
		{
			name:   "reference inside literal",
			source: "return 'hello $name$!'",
			vars:   map[string]string{"name": "Bob"},
			want:   "hello Bob!",
		},
		{
			name:   "extra variables ignored",
			source: "return 'fixed'",
			vars:   map[string]string{"unused": "x"},
			want:   "fixed",
		},
		{
			name:   "compound assignment",
			source: "let s = 'a'\ns += 'b'\ns += 1\nreturn s",
			want:   "ab1",
		},
		{
			name:   "number on the right",
			source: "return 'n=' + 1",
			want:   "n=1",
		},
		{
			name:   "numbers then string",
			source: "return 1 + 2 + 'a'",
			want:   "3a",
		},
		{
			name:   "string then numbers",
			source: "return 'a' + 1 + 2",
			want:   "a12",
		},
		{
			name:   "string then float and int",
			source: "return 'n' + 1.5 + 2",
			want:   "n1.52",
		},
		{
			name:   "numbers inside string chain",
			source: "var y = 2024\nreturn 'FY' + y + '-' + (y + 1)",
			want:   "FY2024-2025",
		},
		{
			name:   "null concatenation",
			source: "return 'v=' + null",
			want:   "v=null",
		},
		{
			name:   "strict equality",
			source: "var a = $x$ === 'y' ? 'yes' : 'no'\nreturn a",
			vars:   map[string]string{"x": "y"},
			want:   "yes",
		},
		{
			name:   "string methods",
			source: "return $x$.trim().toUpperCase()",
			vars:   map[string]string{"x": " ab "},
			want:   "AB",
		},
		{
			name:   "length",
			source: "return 'len=' + $x$.length",
			vars:   map[string]string{"x": "abc"},
			want:   "len=3",
		},
		{
			name:   "includes",
			source: "return $x$.includes('b') ? 'has b' : 'no b'",
			vars:   map[string]string{"x": "abc"},
			want:   "has b",
		},
		{
			name:   "substring",
			source: "return $x$.substring(1, 3)",
			vars:   map[string]string{"x": "abcd"},
			want:   "bc",
		},
		{
			name:   "split and join",
			source: "return $x$.split(',').join('|')",
			vars:   map[string]string{"x": "a,b"},
			want:   "a|b",
		},
		{
			name:   "continued expression",
			source: "var s = 'a' +\n  'b'\nreturn s\n  .toUpperCase()",
			want:   "AB",
		},
		{
			name:   "subtract days",
			source: "return Moment().subtract(1, 'days').format('YYYY-MM-DD')",
			want:   "2024-03-14",
		},
		{
			name:   "add months clamps",
			source: "return Moment('2024-01-31').add(1, 'months').format('YYYY-MM-DD')",
			want:   "2024-02-29",
		},
		{
			name:   "add weeks",
			source: "return Moment('2024-03-15').add(2, 'w').format('MM/DD')",
			want:   "03/29",
		},
		{
			name:   "add hours",
			source: "return Moment().add(1.5, 'hours').format('HH:mm')",
			want:   "12:00",
		},
		{
			name:   "subtract years",
			source: "return Moment().subtract(1, 'year').format('YYYY')",
			want:   "2023",
		},
		{
			name:   "parse with pattern",
			source: "return Moment('15/03/2024', 'DD/MM/YYYY').format('YYYY-MM-DD')",
			want:   "2024-03-15",
		},
		{
			name:   "locale month name",
			source: "return Moment().locale('de-DE').format('D. MMMM YYYY')",
			want:   "15. März 2024",
		},
		{
			name:   "start of month",
			source: "return Moment().startOf('month').format('YYYY-MM-DD HH:mm')",
			want:   "2024-03-01 00:00",
		},
		{
			name:   "moment accessors",
			source: "var m = Moment()\nreturn '' + m.year() + '-' + m.month() + '-' + m.date()",
			want:   "2024-2-15",
		},
		{
			name:   "escaped pattern text",
			source: "return Moment().format('[Q]Q YYYY')",
			want:   "Q1 2024",
		},
		{
			name:   "var redeclaration",
			source: "var a = 'x'\nvar a = 'y'\nreturn a",
			want:   "y",
		},
		{
			name:   "list split",
			source: "return '' + list.split('a,b', ',').length",
			want:   "2",
		},
	}

	e := newTestEvaluator()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Evaluate(t.Context(), tt.source, tt.vars)
			if err != nil {
				t.Fatalf("evaluate error: %v", err)
			}

			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// Every script-facing Moment method evaluated through a full script, with
// the clock fixed at Friday 2024-03-15 10:30 UTC.
func TestEvaluate_MomentMethods(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"format pattern", "return Moment().format('YYYY年MM月')", "2024年03月"},
		{"format default", "return Moment().format()", "2024-03-15T10:30:00+00:00"},
		{"format empty", "return Moment().format('')", "2024-03-15T10:30:00+00:00"},
		{"add", "return Moment('2020-02-29').add(1, 'years').format('YYYY-MM-DD')", "2021-02-28"},
		{"subtract", "return Moment().subtract(3, 'd').format('YYYY-MM-DD')", "2024-03-12"},
		{"locale", "return Moment().locale('de-DE').format('MMMM')", "März"},
		{"start of", "return Moment().startOf('year').format('YYYY-MM-DD HH:mm')", "2024-01-01 00:00"},
		{"end of", "return Moment().endOf('month').format('YYYY-MM-DD HH:mm:ss')", "2024-03-31 23:59:59"},
		{"year", "return '' + Moment().year()", "2024"},
		{"month", "return '' + Moment().month()", "2"},
		{"date", "return '' + Moment().date()", "15"},
		{"day", "return '' + Moment().day()", "5"},
		{"hour", "return '' + Moment().hour()", "10"},
		{"minute", "return '' + Moment().minute()", "30"},
		{"second", "return '' + Moment().second()", "0"},
		{"days in month", "return '' + Moment().daysInMonth()", "31"},
		{"value of", "return '' + Moment().valueOf()", "1710498600000"},
		{"unix", "return '' + Moment().unix()", "1710498600"},
		{"to ISO string", "return Moment().toISOString()", "2024-03-15T10:30:00.000Z"},
		{"epoch millis", "return Moment(1710498600000).toISOString()", "2024-03-15T10:30:00.000Z"},
		{"clone", "return Moment().clone().format('YYYY')", "2024"},
		{
			"is before",
			"return Moment().isBefore(Moment().add(1, 'h')) ? 'before' : 'not before'",
			"before",
		},
		{
			"is after",
			"return Moment().isAfter(Moment().add(1, 'h')) ? 'after' : 'not after'",
			"not after",
		},
		{
			"is same unit",
			"return Moment().isSame(Moment().add(1, 'd'), 'month') ? 'same' : 'different'",
			"same",
		},
		{
			"is same instant",
			"return Moment().isSame(Moment().add(1, 'd')) ? 'same' : 'different'",
			"different",
		},
		{
			"chained from variable",
			"var d = Moment($date$, 'YYYY-MM-DD')\nreturn $region$.toUpperCase() + ' ' + d.format('MMM YYYY')",
			"EMEA Feb 2024",
		},
	}

	e := newTestEvaluator()
	vars := map[string]string{"date": "2024-02-10", "region": "emea"}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Evaluate(t.Context(), tt.source, vars)
			if err != nil {
				t.Fatalf("evaluate error: %v", err)
			}

			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestEvaluate_MissingVariable(t *testing.T) {
	e := newTestEvaluator()

	_, err := e.Evaluate(t.Context(), "return $y$ + $x$ + $y$", map[string]string{})

	var me *MissingVariableError
	if !errors.As(err, &me) {
		t.Fatalf("expected MissingVariableError, got %T: %v", err, err)
	}

	if diff := cmp.Diff([]string{"y", "x"}, me.Names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}

	if !errors.Is(err, ErrMissingVariable) {
		t.Error("expected errors.Is(err, ErrMissingVariable)")
	}

	if errors.Is(err, ErrEvaluation) {
		t.Error("missing variable must not be an evaluation failure")
	}
}

// A missing variable is reported even when the source would not parse,
// since nothing runs until every value is known.
func TestEvaluate_MissingBeforeParse(t *testing.T) {
	_, err := newTestEvaluator().Evaluate(t.Context(), "return $y$ +", nil)
	if !errors.Is(err, ErrMissingVariable) {
		t.Fatalf("expected ErrMissingVariable, got %v", err)
	}
}

func TestEvaluate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		source string
		cause  error
	}{
		{"syntax error", "return x.", ErrCompile},
		{"unknown name", "return y", ErrCompile},
		{"non-string result", "return 1 + 2", ErrNotString},
		{"moment result", "return Moment()", ErrNotString},
		{"bare return", "return", ErrNotString},
		{"no return", "var a = 'x'", ErrNoReturn},
		{"empty body", "", ErrNoReturn},
		{"thrown value", "throw 'boom'", ErrThrown},
		{"assign undeclared", "a = 'x'\nreturn a", ErrUndeclared},
		{"assign const", "const a = 'x'\na = 'y'\nreturn a", ErrConstAssign},
		{"let redeclared", "let a = 'x'\nlet a = 'y'\nreturn a", ErrRedeclared},
		{"reserved binding prefix", "var __ref0 = 'x'\nreturn __ref0", ErrReserved},
		{"reserved builtin", "var Moment = 'x'\nreturn Moment", ErrReserved},
		{"bad unit", "return Moment().add(1, 'fortnight').format()", ErrRuntime},
		{"bad date", "return Moment('not a date').format()", ErrRuntime},
		{"disabled builtin", "return string(now())", ErrCompile},
		{"unsupported statement", "if (true) { return 'a' }", ErrUnsupported},
		{"unclosed paren", "return ('a'", ErrParse},
	}

	e := newTestEvaluator()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Evaluate(t.Context(), tt.source, nil)
			if err == nil {
				t.Fatalf("expected error, got result %q", got)
			}

			var ee *EvaluationError
			if !errors.As(err, &ee) {
				t.Fatalf("expected EvaluationError, got %T: %v", err, err)
			}

			if !errors.Is(err, tt.cause) {
				t.Errorf("expected cause %v, got %v", tt.cause, err)
			}

			if ee.Message == "" {
				t.Error("expected a message")
			}
		})
	}
}

func TestEvaluate_ThrownMessage(t *testing.T) {
	_, err := newTestEvaluator().Evaluate(t.Context(), "throw 'bad ' + $x$", map[string]string{"x": "input"})
	if err == nil || !strings.Contains(err.Error(), "bad input") {
		t.Fatalf("expected thrown message in error, got %v", err)
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	e := newTestEvaluator()
	source := "var s = $a$ + '-' + $b$\nreturn s.toUpperCase()"
	vars := map[string]string{"a": "x", "b": "y"}

	first, err := e.Evaluate(t.Context(), source, vars)
	if err != nil {
		t.Fatalf("evaluate error: %v", err)
	}

	second, err := e.Evaluate(t.Context(), source, vars)
	if err != nil {
		t.Fatalf("evaluate error: %v", err)
	}

	if first != second || first != "X-Y" {
		t.Errorf("expected identical results, got %q and %q", first, second)
	}
}

func TestEvaluate_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := newTestEvaluator().Evaluate(ctx, "return 'a'", nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestEvaluate_SourceTooLong(t *testing.T) {
	e := newTestEvaluator(WithMaxSourceLength(8))

	_, err := e.Evaluate(t.Context(), "return 'too long'", nil)
	if !errors.Is(err, ErrSourceTooLong) || !errors.Is(err, ErrEvaluation) {
		t.Fatalf("expected ErrSourceTooLong evaluation failure, got %v", err)
	}
}

func TestEvaluate_Concurrent(t *testing.T) {
	e := newTestEvaluator()
	source := "return $n$ + ':' + Moment().format('YYYY')"

	var wg sync.WaitGroup

	errs := make(chan error, 64)

	for i := range 64 {
		wg.Go(func() {
			n := strings.Repeat("x", i%5)

			got, err := e.Evaluate(t.Context(), source, map[string]string{"n": n})
			if err != nil {
				errs <- err

				return
			}

			if want := n + ":2024"; got != want {
				errs <- errors.New("expected " + want + ", got " + got)
			}
		})
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestPackageEvaluate(t *testing.T) {
	got, err := Evaluate(t.Context(), "return $x$ + '!'", map[string]string{"x": "ok"})
	if err != nil {
		t.Fatalf("evaluate error: %v", err)
	}

	if got != "ok!" {
		t.Errorf("expected %q, got %q", "ok!", got)
	}
}

func TestEvaluator_CacheReusesProgram(t *testing.T) {
	e := newTestEvaluator()

	first, err := e.Parse(t.Context(), "return 'a'")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	second, err := e.Parse(t.Context(), "return 'a'")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if first != second {
		t.Error("expected cached program to be reused")
	}

	e.ClearCache()

	third, err := e.Parse(t.Context(), "return 'a'")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if third == first {
		t.Error("expected a new program after ClearCache")
	}
}
