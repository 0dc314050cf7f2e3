package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// resolve returns a [kong.ConfigurationLoader] that reads flag values from a
// YAML document.
//
// Flag values are read from the mapping under the key name when present, or
// from the top-level mapping otherwise. Keys may use hyphens or underscores:
//
//	config:
//	  log_level: debug
//	  locale: de-DE
//	  timezone: Europe/Berlin
//
// An empty or unreadable document yields no values so that a broken config
// file never prevents the command from running; command-line flags and
// environment variables always override config file values.
func resolve(name string) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		data, err := io.ReadAll(r)
		if err != nil {
			return config{}, nil //nolint:nilerr
		}

		var doc map[string]any

		err = yaml.Unmarshal(data, &doc)
		if err != nil || doc == nil {
			return config{}, nil //nolint:nilerr
		}

		if scoped, ok := doc[name].(map[string]any); ok {
			doc = scoped
		}

		return flatten(doc), nil
	}
}

// config implements [kong.Resolver] over a flat map of flag names.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	for _, key := range []string{
		flag.Name,
		strings.ReplaceAll(flag.Name, "-", "_"),
	} {
		if value, ok := c[key]; ok {
			return value, nil
		}
	}

	return nil, nil //nolint:nilnil
}

// flatten converts decoded YAML values into the forms kong accepts: nested
// mappings are joined with "-", numbers become strings, and sequences
// become comma-separated lists.
func flatten(doc map[string]any) config {
	out := make(config, len(doc))

	var walk func(prefix string, m map[string]any)

	walk = func(prefix string, m map[string]any) {
		for key, value := range m {
			if prefix != "" {
				key = prefix + "-" + key
			}

			if nested, ok := value.(map[string]any); ok {
				walk(key, nested)

				continue
			}

			out[key] = scalar(value)
		}
	}

	walk("", doc)

	return out
}

func scalar(value any) any {
	switch v := value.(type) {
	case uint64:
		return strconv.FormatUint(v, 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		items := make([]string, len(v))
		for i, item := range v {
			items[i] = fmt.Sprint(scalar(item))
		}

		return strings.Join(items, ",")
	default:
		return v
	}
}
