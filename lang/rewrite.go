package lang

import (
	"log/slog"
	"strings"
	"unicode/utf8"
)

// literals maps JavaScript identifiers to their expr-lang spelling.
var literals = map[string]string{
	"null":      "nil",
	"undefined": "nil",
}

// rewrite converts a statement's expression text to expr-lang source.
//
// Query variable references outside string literals become their binding
// identifier. A string literal containing references becomes a parenthesized
// concatenation of the literal pieces and the bindings. Comments are
// removed, strict equality operators become their expr-lang equivalents,
// and null and undefined become nil.
func rewrite(text string, bindings map[string]string) (string, error) {
	var b strings.Builder

	b.Grow(len(text))

	var prev rune // last significant character written

	for i := 0; i < len(text); {
		c := text[i]

		switch {
		case c == '"' || c == '\'' || c == '`':
			n, err := rewriteString(&b, text[i:], bindings)
			if err != nil {
				return "", err
			}

			i += n
			prev = rune(c)

			continue

		case strings.HasPrefix(text[i:], "//"):
			end := strings.IndexByte(text[i:], '\n')
			if end < 0 {
				end = len(text) - i
			}

			b.WriteByte(' ')

			i += end

			continue

		case strings.HasPrefix(text[i:], "/*"):
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				return "", ErrParse.With(slog.String("error", "unterminated comment"))
			}

			b.WriteByte(' ')

			i += end + 4

			continue

		case strings.HasPrefix(text[i:], "==="), strings.HasPrefix(text[i:], "!=="):
			b.WriteString(text[i : i+2])

			i += 3
			prev = '='

			continue

		case c == refDelim:
			if name, size, ok := scanReference(text[i:]); ok && bindings[name] != "" {
				b.WriteString(bindings[name])

				i += size
				prev = 'a'

				continue
			}
		}

		r, size := utf8.DecodeRuneInString(text[i:])
		if isIdentifierStart(r) {
			j := i + size

			for j < len(text) {
				r2, s2 := utf8.DecodeRuneInString(text[j:])
				if !isIdentifierContinue(r2) {
					break
				}

				j += s2
			}

			word := text[i:j]
			if lit, ok := literals[word]; ok && prev != '.' {
				word = lit
			}

			b.WriteString(word)

			i = j
			prev = 'a'

			continue
		}

		b.WriteRune(r)

		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			prev = r
		}

		i += size
	}

	return strings.TrimSpace(b.String()), nil
}

// rewriteString writes the string literal at the start of s and returns its
// length in bytes. References in the literal split it into a concatenation.
func rewriteString(
	b *strings.Builder,
	s string,
	bindings map[string]string,
) (int, error) {
	quote := s[0]

	end := -1

	for i := 1; i < len(s); i++ {
		if s[i] == '\\' && quote != '`' {
			i++

			continue
		}

		if s[i] == quote {
			end = i

			break
		}
	}

	if end < 0 {
		return 0, ErrParse.With(slog.String("error", "unterminated string"))
	}

	body := s[1:end]

	parts := make([]string, 0, 1)
	lit := 0

	for i := 0; i < len(body); {
		if body[i] == '\\' && quote != '`' {
			i += 2

			continue
		}

		if body[i] != refDelim {
			i++

			continue
		}

		name, size, ok := scanReference(body[i:])
		if !ok || bindings[name] == "" {
			i++

			continue
		}

		if i > lit {
			parts = append(parts, string(quote)+body[lit:i]+string(quote))
		}

		parts = append(parts, bindings[name])

		i += size
		lit = i
	}

	if lit == 0 {
		b.WriteString(s[:end+1])

		return end + 1, nil
	}

	if lit < len(body) {
		parts = append(parts, string(quote)+body[lit:]+string(quote))
	}

	b.WriteByte('(')
	b.WriteString(strings.Join(parts, " + "))
	b.WriteByte(')')

	return end + 1, nil
}
