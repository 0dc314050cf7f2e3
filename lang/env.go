package lang

// This file defines the built-in evaluation environment available to all
// alias expressions. The environment is lazily initialized once per process
// and cloned for every evaluation, so declarations made by one script never
// leak into another.

import (
	"fmt"
	"maps"
	"math"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/ardnew/mung"
	"github.com/expr-lang/expr/builtin"
)

// Private singleton cache.
//
//nolint:gochecknoglobals
var (
	envCacheOnce sync.Once
	envCache     map[string]any
)

// disabledBuiltins are expr-lang builtins scripts may not call. Moment is the
// only access to the clock.
var disabledBuiltins = []string{"now", "date", "duration", "timezone"}

// makeEnv returns a clone of the lazily-initialized, process-scoped
// environment containing built-in values. The returned map can be safely
// mutated by the caller without affecting the shared cache.
func makeEnv() map[string]any {
	envCacheOnce.Do(func() {
		envCache = map[string]any{
			// Delimited list manipulation via mung.
			"list": map[string]any{
				"prefix": listPrefix,
				"split":  listSplit,
			},
		}
	})

	return maps.Clone(envCache)
}

// BuiltinNames returns the sorted names scripts can refer to without
// declaring them, including expr-lang builtins and dotted members of
// built-in namespaces. This is useful for code completion.
func BuiltinNames() []string {
	names := []string{"Moment"}

	for key, value := range makeEnv() {
		names = append(names, key)

		if m, ok := value.(map[string]any); ok {
			for member := range m {
				names = append(names, key+"."+member)
			}
		}
	}

	for _, fn := range builtin.Builtins {
		if !slices.Contains(disabledBuiltins, fn.Name) &&
			!strings.HasPrefix(fn.Name, "$") {
			names = append(names, fn.Name)
		}
	}

	slices.Sort(names)

	return slices.Compact(names)
}

// MethodNames returns the sorted method and property names scripts can use
// after a dot on Moment, string and array values.
func MethodNames() []string {
	names := []string{"length", "substring", "slice"}

	for _, m := range []map[string]string{momentMethods, stringMethods, stringOperators} {
		names = slices.AppendSeq(names, maps.Keys(m))
	}

	slices.Sort(names)

	return slices.Compact(names)
}

// isReservedName reports whether a script may not declare name.
func isReservedName(name string) bool {
	if strings.HasPrefix(name, "__") || name == "Moment" {
		return true
	}

	_, ok := makeEnv()[name]

	return ok
}

// listPrefix moves items to the front of a delimited list, removing any
// duplicates of them further back.
func listPrefix(list, delim string, items ...string) string {
	return mung.Make(
		mung.WithSubjectItems(list),
		mung.WithDelim(delim),
		mung.WithPrefixItems(items...),
	).String()
}

// listSplit splits a delimited list, dropping empty items.
func listSplit(list, delim string) []string {
	if delim == "" {
		return []string{list}
	}

	items := make([]string, 0)

	for item := range strings.SplitSeq(list, delim) {
		if item != "" {
			items = append(items, item)
		}
	}

	return items
}

// toString converts a value the way string concatenation does: nil becomes
// "null", whole floats print without a fraction and arrays join with commas.
func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return "null"
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	case float64:
		return formatFloat(s)
	case float32:
		return formatFloat(float64(s))
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = toString(rv.Index(i).Interface())
		}

		return strings.Join(parts, ",")
	}

	return fmt.Sprint(v)
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return fmt.Sprintf("%d", int64(f))
	}

	return fmt.Sprint(f)
}
