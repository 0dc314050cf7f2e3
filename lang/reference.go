package lang

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// refDelim opens and closes a query variable reference.
const refDelim = '$'

// bindingPrefix starts the identifiers query variables are bound to.
// User declarations may not use it.
const bindingPrefix = "__ref"

// References returns the distinct query variable names referenced in source
// with the $name$ convention, in first-seen order. A name is one or more
// letters, digits or underscores. A '$' that does not open a complete
// reference is ignored, so References never fails.
func References(source string) []string {
	names := make([]string, 0)
	seen := make(map[string]struct{})

	for i := 0; i < len(source); {
		j := strings.IndexByte(source[i:], refDelim)
		if j < 0 {
			break
		}

		i += j

		name, size, ok := scanReference(source[i:])
		if !ok {
			i++ // skip the lone delimiter

			continue
		}

		if _, dup := seen[name]; !dup {
			seen[name] = struct{}{}
			names = append(names, name)
		}

		i += size
	}

	return names
}

// scanReference reads the reference at the start of s. It returns the name
// and the byte length of the whole reference including both delimiters.
func scanReference(s string) (name string, size int, ok bool) {
	if len(s) < 3 || s[0] != refDelim {
		return "", 0, false
	}

	i := 1

	for i < len(s) {
		r, w := utf8.DecodeRuneInString(s[i:])
		if r == refDelim {
			break
		}

		if !isNameRune(r) {
			return "", 0, false
		}

		i += w
	}

	if i == 1 || i >= len(s) {
		return "", 0, false
	}

	return s[1:i], i + 1, true
}

func isNameRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// bindingsFor assigns an evaluation identifier to each referenced name.
func bindingsFor(names []string) map[string]string {
	bindings := make(map[string]string, len(names))
	for i, name := range names {
		bindings[name] = bindingPrefix + strconv.Itoa(i)
	}

	return bindings
}

// missingNames returns the names in refs that have no entry in vars.
func missingNames(refs []string, vars map[string]string) []string {
	var missing []string

	for _, name := range refs {
		if _, ok := vars[name]; !ok {
			missing = append(missing, name)
		}
	}

	return missing
}
