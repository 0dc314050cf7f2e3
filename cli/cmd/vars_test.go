package cmd

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestVarFlagsLoad(t *testing.T) {
	file := writeFile(t, "vars.yaml", "state: CA\nyear: 2024\nratio: 1.5\nflag: true\nempty: null\n")

	tests := []struct {
		name  string
		flags VarFlags
		want  map[string]string
	}{
		{
			name: "none",
			want: map[string]string{},
		},
		{
			name:  "flags only",
			flags: VarFlags{Var: map[string]string{"a": "1"}},
			want:  map[string]string{"a": "1"},
		},
		{
			name:  "file",
			flags: VarFlags{Vars: file},
			want: map[string]string{
				"state": "CA",
				"year":  "2024",
				"ratio": "1.5",
				"flag":  "true",
				"empty": "",
			},
		},
		{
			name:  "flags override file",
			flags: VarFlags{Vars: file, Var: map[string]string{"state": "NY"}},
			want: map[string]string{
				"state": "NY",
				"year":  "2024",
				"ratio": "1.5",
				"flag":  "true",
				"empty": "",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.flags.Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Load() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestVarFlagsLoadErrors(t *testing.T) {
	tests := []struct {
		name  string
		flags VarFlags
	}{
		{"missing file", VarFlags{Vars: filepath.Join(t.TempDir(), "none.yaml")}},
		{"not a mapping", VarFlags{Vars: writeFile(t, "list.yaml", "- a\n- b\n")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.flags.Load()
			if !errors.Is(err, ErrReadVars) {
				t.Errorf("Load() error = %v, want %v", err, ErrReadVars)
			}
		})
	}
}
