package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

// signature describes the parameters of a callable for the hint line.
type signature struct {
	name   string
	params []string
}

// String formats the signature as name(param, ...).
func (s signature) String() string {
	return s.name + "(" + strings.Join(s.params, ", ") + ")"
}

func sig(name string, params ...string) signature {
	return signature{name: name, params: params}
}

// functionSignatures are the callables scripts can name directly.
var functionSignatures = map[string]signature{
	"Moment":      sig("Moment", "value?", "pattern?"),
	"list.prefix": sig("list.prefix", "list", "delim", "...items"),
	"list.split":  sig("list.split", "list", "delim"),
	"len":         sig("len", "v"),
	"all":         sig("all", "array", "predicate"),
	"any":         sig("any", "array", "predicate"),
	"one":         sig("one", "array", "predicate"),
	"none":        sig("none", "array", "predicate"),
	"map":         sig("map", "array", "mapper"),
	"filter":      sig("filter", "array", "predicate"),
	"find":        sig("find", "array", "predicate"),
	"findIndex":   sig("findIndex", "array", "predicate"),
	"count":       sig("count", "array", "predicate?"),
	"sum":         sig("sum", "array"),
	"min":         sig("min", "...values"),
	"max":         sig("max", "...values"),
	"abs":         sig("abs", "number"),
	"round":       sig("round", "number"),
	"floor":       sig("floor", "number"),
	"ceil":        sig("ceil", "number"),
	"join":        sig("join", "array", "separator?"),
	"split":       sig("split", "string", "separator"),
	"replace":     sig("replace", "string", "old", "new"),
	"trim":        sig("trim", "string", "chars?"),
	"upper":       sig("upper", "string"),
	"lower":       sig("lower", "string"),
	"indexOf":     sig("indexOf", "string", "substring"),
	"hasPrefix":   sig("hasPrefix", "string", "prefix"),
	"hasSuffix":   sig("hasSuffix", "string", "suffix"),
	"repeat":      sig("repeat", "string", "n"),
	"int":         sig("int", "v"),
	"float":       sig("float", "v"),
	"string":      sig("string", "v"),
	"type":        sig("type", "v"),
}

// methodSignatures are the methods callable on Moment, string and array
// values, keyed by method name.
var methodSignatures = map[string]signature{
	"add":         sig("add", "amount", "unit"),
	"subtract":    sig("subtract", "amount", "unit"),
	"format":      sig("format", "pattern?"),
	"locale":      sig("locale", "tag"),
	"startOf":     sig("startOf", "unit"),
	"endOf":       sig("endOf", "unit"),
	"isBefore":    sig("isBefore", "moment"),
	"isAfter":     sig("isAfter", "moment"),
	"isSame":      sig("isSame", "moment", "unit?"),
	"year":        sig("year"),
	"month":       sig("month"),
	"date":        sig("date"),
	"day":         sig("day"),
	"hour":        sig("hour"),
	"minute":      sig("minute"),
	"second":      sig("second"),
	"daysInMonth": sig("daysInMonth"),
	"valueOf":     sig("valueOf"),
	"unix":        sig("unix"),
	"toISOString": sig("toISOString"),
	"clone":       sig("clone"),
	"toString":    sig("toString"),
	"toUpperCase": sig("toUpperCase"),
	"toLowerCase": sig("toLowerCase"),
	"trim":        sig("trim"),
	"split":       sig("split", "separator"),
	"join":        sig("join", "separator?"),
	"indexOf":     sig("indexOf", "search"),
	"lastIndexOf": sig("lastIndexOf", "search"),
	"includes":    sig("includes", "search"),
	"startsWith":  sig("startsWith", "prefix"),
	"endsWith":    sig("endsWith", "suffix"),
	"replaceAll":  sig("replaceAll", "search", "replacement"),
	"substring":   sig("substring", "start", "end?"),
	"slice":       sig("slice", "start", "end?"),
}

var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// functionCall is the call whose argument list contains the cursor.
type functionCall struct {
	name     string // callee including any receiver chain, e.g. "d.format"
	argIndex int    // 0-based index of the argument under the cursor
	inCall   bool
}

// detectFunctionCall reports the innermost open call enclosing cursor.
// Parentheses inside string literals are not distinguished.
func detectFunctionCall(input string, cursor int) functionCall {
	if cursor > len(input) {
		cursor = len(input)
	}

	open := -1
	depth := 0

scan:
	for i := cursor; i > 0; {
		r, size := utf8.DecodeLastRuneInString(input[:i])
		i -= size

		switch r {
		case ')':
			depth++
		case '(':
			if depth == 0 {
				open = i

				break scan
			}

			depth--
		}
	}

	if open < 0 {
		return functionCall{}
	}

	start := open

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if r != '.' && r != '$' && !isIdentRune(r) {
			break
		}

		start -= size
	}

	name := input[start:open]
	if name == "" || strings.HasSuffix(name, ".") {
		return functionCall{}
	}

	arg := 0
	depth = 0

	for _, r := range input[open+1 : cursor] {
		switch r {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				arg++
			}
		}
	}

	return functionCall{name: name, argIndex: arg, inCall: true}
}

func isIdentRune(r rune) bool {
	return r == '_' ||
		r >= 'a' && r <= 'z' ||
		r >= 'A' && r <= 'Z' ||
		r >= '0' && r <= '9'
}

// lookupSignature returns the signature of the callee name. A dotted name
// that is not a built-in function is looked up as a method by its last
// segment.
func lookupSignature(name string) (signature, bool) {
	if s, ok := functionSignatures[name]; ok {
		return s, true
	}

	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return signature{}, false
	}

	s, ok := methodSignatures[name[i+1:]]

	return s, ok
}

// renderSignatureHint renders s with the parameter at argIndex highlighted.
// A variadic parameter stays highlighted for every argument it absorbs.
func renderSignatureHint(s signature, argIndex int) string {
	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(s.name))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range s.params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		current := argIndex == i ||
			strings.HasPrefix(param, "...") && argIndex >= i

		if current {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
