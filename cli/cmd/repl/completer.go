package repl

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/aliasexpr/lang"
)

// ctrlCommands are the control-mode commands offered for completion.
var ctrlCommands = []string{"help", "vars", "unset", "mode", "edit", "clear", "quit"}

// isWordBoundary reports whether r ends a completion word. '$' is not a
// boundary so that a query variable reference completes as one word.
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t',
		'(', ')', '[', ']', '{', '}',
		'+', '-', '*', '/', '%',
		'<', '>', '=', '!',
		'&', '|', ',', '?', ':', ';',
		'\'', '"', '`':
		return true
	}

	return false
}

// wordBounds returns the word containing cursor and its byte offsets in
// input. The word is empty when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	for start = cursor; start > 0; {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	for end = cursor; end < len(input); {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentPath returns the member-access chain before the word starting at
// wordStart, e.g. "list" for "x + list.sp". It is "" for a top-level word.
func parentPath(input string, wordStart int) string {
	prefix := input[:wordStart]

	if !strings.HasSuffix(prefix, ".") {
		return ""
	}

	prefix = strings.TrimRight(prefix, ".")

	pos := len(prefix)

	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:pos])
		if r != '.' && r != ')' && isWordBoundary(r) {
			break
		}

		pos -= size
	}

	return strings.TrimSpace(prefix[pos:])
}

// completer supplies completion candidates for alias expressions.
type completer struct {
	builtins []string
	methods  []string
}

func newCompleter() completer {
	return completer{
		builtins: lang.BuiltinNames(),
		methods:  lang.MethodNames(),
	}
}

// candidates returns the names that can complete a word following parent.
// Built-in namespaces complete to their members; any other receiver
// completes to the Moment, string and array methods. Words opening a
// $reference$ complete to the names in vars.
func (c completer) candidates(parent, word string, vars []string) []string {
	if strings.HasPrefix(word, "$") {
		refs := make([]string, len(vars))
		for i, name := range vars {
			refs[i] = "$" + name + "$"
		}

		return refs
	}

	if parent == "" {
		return slices.DeleteFunc(slices.Clone(c.builtins), func(s string) bool {
			return strings.Contains(s, ".")
		})
	}

	var members []string

	for _, name := range c.builtins {
		if member, ok := strings.CutPrefix(name, parent+"."); ok {
			members = append(members, member)
		}
	}

	if len(members) > 0 {
		return members
	}

	return c.methods
}

// matches returns the fuzzy matches for the word at cursor, ranked best
// first, together with the word's offsets. An empty top-level word has no
// matches so the hint line stays visible; an empty word after a dot lists
// every member.
func (c completer) matches(
	input string,
	cursor int,
	vars []string,
) (matches fuzzy.Matches, start, end int) {
	word, start, end := wordBounds(input, cursor)
	parent := parentPath(input, start)

	if word == "" && parent == "" {
		return nil, start, end
	}

	candidates := c.candidates(parent, word, vars)
	if len(candidates) == 0 {
		return nil, start, end
	}

	if word == "" {
		matches = make(fuzzy.Matches, len(candidates))
		for i, s := range candidates {
			matches[i] = fuzzy.Match{Str: s, Index: i}
		}

		return matches, start, end
	}

	return fuzzy.Find(word, candidates), start, end
}

// matchCommands returns the control commands matching the word at cursor.
func matchCommands(input string, cursor int) (matches fuzzy.Matches, start, end int) {
	word, start, end := wordBounds(input, cursor)
	if word == "" || start > 0 {
		return nil, start, end
	}

	return fuzzy.Find(word, ctrlCommands), start, end
}

// renderCandidateBar renders matches on a single line no wider than width,
// ending in an ellipsis when they do not all fit. The candidate at selected
// is highlighted while tab-cycling.
func renderCandidateBar(matches fuzzy.Matches, selected int, cycling bool, width int) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, cycling && i == selected)

		w := lipgloss.Width(rendered)
		if i > 0 {
			w += len(sep)
		}

		if i > 0 && used+w+lipgloss.Width(ellipsis) > width {
			b.WriteString(sep + ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += w
	}

	return b.String()
}

// renderCandidate renders match with its matched characters emphasized.
// Known functions are shown with a "()" suffix that completion does not
// insert.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, emphasis := suggestionStyle, matchStyle
	if selected {
		base, emphasis = selectedStyle, selectedMatchStyle
	}

	var b strings.Builder

	for i, r := range match.Str {
		if slices.Contains(match.MatchedIndexes, i) {
			b.WriteString(emphasis.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	if isFunction(match.Str) {
		b.WriteString(base.Render("()"))
	}

	return b.String()
}

// isFunction reports whether name is a callable with a known signature.
func isFunction(name string) bool {
	_, fn := functionSignatures[name]
	_, method := methodSignatures[name]

	return fn || method
}
