package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

type initFlags struct {
	Locale   string        `default:"de-DE"`
	Timezone string        `default:"UTC"`
	Pretty   bool          `default:"true"`
	Count    int           `default:"3"`
	Empty    string
	Secret   string        `default:"x" hidden:""`
	Config   kong.ConfigFlag
}

func initContext(t *testing.T, confPath string) context.Context {
	t.Helper()

	var flags initFlags

	parser, err := kong.New(&flags,
		kong.Exit(func(int) {}),
		kong.Vars{ConfigIdentifier: confPath},
		kong.Configuration(kong.JSON),
	)
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(nil)
	if err != nil {
		t.Fatal(err)
	}

	return WithContext(context.Background(), ktx)
}

func TestInitRun(t *testing.T) {
	tests := []struct {
		name    string
		force   bool
		exists  bool
		wantErr error
	}{
		{name: "create"},
		{name: "overwrite with force", force: true, exists: true},
		{name: "exists without force", exists: true, wantErr: ErrFileExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			confPath := filepath.Join(t.TempDir(), "config.yaml")

			if tt.exists {
				err := os.WriteFile(confPath, []byte("existing"), 0o600)
				if err != nil {
					t.Fatal(err)
				}
			}

			err := (&Init{Force: tt.force}).Run(initContext(t, confPath))

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Run() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			buf, err := os.ReadFile(confPath)
			if err != nil {
				t.Fatal(err)
			}

			var doc struct {
				Config map[string]any `yaml:"config"`
			}

			err = yaml.Unmarshal(buf, &doc)
			if err != nil {
				t.Fatalf("written config is not YAML: %v\n%s", err, buf)
			}

			for _, key := range []string{"locale", "timezone", "pretty", "count"} {
				if _, ok := doc.Config[key]; !ok {
					t.Errorf("config missing %q:\n%s", key, buf)
				}
			}

			for _, key := range []string{"empty", "secret", "help", "config"} {
				if _, ok := doc.Config[key]; ok {
					t.Errorf("config should omit %q:\n%s", key, buf)
				}
			}

			if got := doc.Config["locale"]; got != "de-DE" {
				t.Errorf("locale = %v, want de-DE", got)
			}
		})
	}
}

func TestConfigValue(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		want   any
		wantOK bool
	}{
		{"nil", nil, nil, false},
		{"bool", false, false, true},
		{"int", 7, 7, true},
		{"empty string", "", "", false},
		{"string", "x", "x", true},
		{"empty slice", []string{}, []string{}, false},
		{"stringer", stringer("debug"), "debug", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := configValue(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("configValue() ok = %v, want %v", ok, tt.wantOK)
			}

			if ok && got != tt.want {
				t.Errorf("configValue() = %v, want %v", got, tt.want)
			}
		})
	}
}

type stringer string

func (s stringer) String() string { return string(s) }
