package alias

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/aliasexpr/lang"
	"github.com/ardnew/aliasexpr/log"
)

func newTestResolver(buf *bytes.Buffer) *Resolver {
	return NewResolver(
		WithLogger(log.Make(buf, log.WithLevel(log.LevelWarn))),
		WithEvalOptions(
			lang.WithClock(func() time.Time {
				return time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
			}),
			lang.WithLocation(time.UTC),
		),
	)
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		cfg  FieldConfig
		vars map[string]string
		want string
	}{
		{
			name: "literal passthrough",
			cfg:  FieldConfig{Alias: "Hello"},
			want: "Hello",
		},
		{
			name: "literal ignores variables",
			cfg:  FieldConfig{Alias: "$x$ stays"},
			vars: map[string]string{"x": "ignored"},
			want: "$x$ stays",
		},
		{
			name: "expression",
			cfg:  FieldConfig{Alias: "return $x$ + '!'", UseExpression: true},
			vars: map[string]string{"x": "ok"},
			want: "ok!",
		},
		{
			name: "expression with date",
			cfg: FieldConfig{
				Alias:         "return $p$ + Moment().format('(YYYY)')",
				UseExpression: true,
			},
			vars: map[string]string{"p": "Zhejiang"},
			want: "Zhejiang(2024)",
		},
	}

	var buf bytes.Buffer

	r := newTestResolver(&buf)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(t.Context(), tt.cfg, tt.vars)
			if err != nil {
				t.Fatalf("resolve error: %v", err)
			}

			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestResolve_Errors(t *testing.T) {
	var buf bytes.Buffer

	r := newTestResolver(&buf)

	_, err := r.Resolve(t.Context(), FieldConfig{Alias: "return $y$", UseExpression: true}, nil)
	if !errors.Is(err, lang.ErrMissingVariable) {
		t.Errorf("expected missing variable, got %v", err)
	}

	_, err = r.Resolve(t.Context(), FieldConfig{Alias: "return x.", UseExpression: true}, nil)
	if !errors.Is(err, lang.ErrEvaluation) {
		t.Errorf("expected evaluation failure, got %v", err)
	}

	_, err = r.ResolveAlias(t.Context(), nil, nil)
	if !errors.Is(err, ErrNilAlias) {
		t.Errorf("expected ErrNilAlias, got %v", err)
	}
}

func TestPackageResolve(t *testing.T) {
	got, err := Resolve(t.Context(), FieldConfig{Alias: "Hello"}, nil)
	if err != nil || got != "Hello" {
		t.Errorf("expected Hello, got %q (%v)", got, err)
	}
}

func TestMissing(t *testing.T) {
	r := NewResolver()
	cfg := FieldConfig{Alias: "return $b$ + $a$ + $c$", UseExpression: true}

	got := r.Missing(cfg, map[string]string{"a": "1"})
	if diff := cmp.Diff([]string{"b", "c"}, got); diff != "" {
		t.Errorf("missing mismatch (-want +got):\n%s", diff)
	}

	if got := r.Missing(FieldConfig{Alias: "$a$"}, nil); len(got) != 0 {
		t.Errorf("literal needs no variables, got %v", got)
	}
}

func TestDisplayName(t *testing.T) {
	var buf bytes.Buffer

	r := newTestResolver(&buf)

	if got := r.DisplayName(t.Context(), "amount", nil, nil); got != "amount" {
		t.Errorf("nil config: expected field name, got %q", got)
	}

	if got := r.DisplayName(t.Context(), "amount", &FieldConfig{}, nil); got != "amount" {
		t.Errorf("empty alias: expected field name, got %q", got)
	}

	cfg := &FieldConfig{Alias: "Total"}
	if got := r.DisplayName(t.Context(), "amount", cfg, nil); got != "Total" {
		t.Errorf("literal: expected Total, got %q", got)
	}

	if buf.Len() != 0 {
		t.Errorf("expected no warnings, got %s", buf.String())
	}

	cfg = &FieldConfig{Alias: "return $missing$", UseExpression: true}
	if got := r.DisplayName(t.Context(), "amount", cfg, nil); got != "amount" {
		t.Errorf("failure: expected field name, got %q", got)
	}

	if !strings.Contains(buf.String(), "alias resolution failed") {
		t.Errorf("expected a warning, got %q", buf.String())
	}
}
