package cmd

import (
	"fmt"
	"log/slog"
	"maps"
	"os"

	"github.com/goccy/go-yaml"
)

// VarFlags collects query variable values from repeated --var flags and an
// optional YAML mapping file. Values given with --var take precedence.
type VarFlags struct {
	Var  map[string]string `help:"Set a query variable (name=value)." mapsep:"none" placeholder:"NAME=VALUE" short:"v"`
	Vars string            `help:"Read query variables from a YAML mapping file."    placeholder:"FILE"       type:"existingfile"`
}

// Load returns the merged variable map. It never returns a nil map.
func (f VarFlags) Load() (map[string]string, error) {
	vars := make(map[string]string)

	if f.Vars != "" {
		data, err := os.ReadFile(f.Vars)
		if err != nil {
			return nil, ErrReadVars.With(slog.String("file", f.Vars)).Wrap(err)
		}

		var doc map[string]any

		err = yaml.Unmarshal(data, &doc)
		if err != nil {
			return nil, ErrReadVars.With(slog.String("file", f.Vars)).Wrap(err)
		}

		for name, value := range doc {
			vars[name] = varString(value)
		}
	}

	maps.Copy(vars, f.Var)

	return vars, nil
}

// varString renders a decoded YAML scalar the way it was written; null
// becomes the empty string.
func varString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
