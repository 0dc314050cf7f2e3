package lang

import (
	"context"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ardnew/aliasexpr/log"
)

// Parse parses an alias expression body into a [Program]. Query variable
// references are recorded and rewritten to their bindings, but no value is
// required until evaluation.
func Parse(ctx context.Context, source string, opts ...Option) (*Program, error) {
	return parse(ctx, source, makeOptions(opts...))
}

func parse(ctx context.Context, source string, o options) (*Program, error) {
	if o.maxSourceLength > 0 && len(source) > o.maxSourceLength {
		return nil, ErrSourceTooLong.With(
			slog.Int("length", len(source)),
			slog.Int("max_length", o.maxSourceLength),
		)
	}

	p := &parser{
		input:  []byte(source),
		line:   1,
		col:    1,
		logger: o.logger,
	}

	stmts, err := p.parseBody()
	if err != nil {
		return nil, err
	}

	refs := References(source)
	bindings := bindingsFor(refs)

	for _, s := range stmts {
		if s.Text == "" {
			continue
		}

		s.Expr, err = rewrite(s.Text, bindings)
		if err != nil {
			return nil, ErrParse.WithPosition(s.ExprPos).Wrap(err)
		}
	}

	p.logger.TraceContext(ctx, "parse complete",
		slog.Int("statement_count", len(stmts)),
		slog.Int("reference_count", len(refs)))

	return &Program{
		Source:     source,
		Statements: stmts,
		References: refs,
		Bindings:   bindings,
	}, nil
}

// parser scans an expression body into statements. Positions are 1-based.
type parser struct {
	input  []byte
	pos    int
	line   int
	col    int
	logger log.Logger
}

// keywords that open statements the body grammar does not support.
var unsupportedKeywords = map[string]bool{
	"if": true, "else": true, "for": true, "while": true, "do": true,
	"switch": true, "case": true, "break": true, "continue": true,
	"function": true, "class": true, "try": true, "catch": true,
	"finally": true, "import": true, "export": true, "new": true,
	"delete": true, "with": true, "yield": true, "async": true,
	"await": true,
}

// parseBody parses the entire input as a list of statements.
func (p *parser) parseBody() ([]*Statement, error) {
	stmts := make([]*Statement, 0)

	for {
		p.skipSeparators()

		if p.eof() {
			break
		}

		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}

		p.logger.Trace("parse statement",
			slog.String("kind", stmt.Kind.String()),
			slog.Any("position", stmt.Pos))

		stmts = append(stmts, stmt)
	}

	return stmts, nil
}

// parseStatement parses: Declaration | Assignment | Return | Throw |
// Expression.
func (p *parser) parseStatement() (*Statement, error) {
	pos := p.position()

	if isIdentifierStart(p.peek()) {
		word := p.peekWord()

		switch word {
		case "var":
			return p.parseDeclaration(pos, DeclVar)
		case "let":
			return p.parseDeclaration(pos, DeclLet)
		case "const":
			return p.parseDeclaration(pos, DeclConst)
		case "return":
			return p.parseReturn(pos)
		case "throw":
			return p.parseThrow(pos)
		}

		if unsupportedKeywords[word] {
			return nil, ErrUnsupported.WithPosition(pos).
				With(slog.String("keyword", word))
		}

		stmt, ok, err := p.tryAssignment(pos)
		if err != nil || ok {
			return stmt, err
		}
	}

	exprPos := p.position()

	text, err := p.captureExpression()
	if err != nil {
		return nil, err
	}

	return &Statement{
		Kind:    StmtExpr,
		Text:    text,
		Pos:     pos,
		ExprPos: exprPos,
	}, nil
}

// parseDeclaration parses: Keyword Identifier ('=' Expression)?.
func (p *parser) parseDeclaration(pos Position, kind DeclKind) (*Statement, error) {
	p.skipWord()
	p.skipWhitespaceAndComments()

	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}

	stmt := &Statement{
		Kind: StmtDeclare,
		Decl: kind,
		Name: name,
		Pos:  pos,
	}

	p.skipInlineSpace()

	if p.peek() == '=' && p.peekN(2) != "==" {
		p.advance()
		p.skipWhitespaceAndComments()

		stmt.ExprPos = p.position()

		stmt.Text, err = p.requireExpression()
		if err != nil {
			return nil, err
		}

		return stmt, nil
	}

	if kind == DeclConst {
		return nil, ErrParse.WithPosition(p.position()).
			With(slog.String("name", name)).
			With(slog.String("expected", "initializer"))
	}

	if !p.atStatementEnd() {
		return nil, p.unexpected()
	}

	return stmt, nil
}

// parseReturn parses: 'return' Expression?. A return followed by the end of
// the line returns nothing.
func (p *parser) parseReturn(pos Position) (*Statement, error) {
	p.skipWord()
	p.skipInlineSpace()

	stmt := &Statement{Kind: StmtReturn, Pos: pos}

	if p.atStatementEnd() {
		return stmt, nil
	}

	stmt.ExprPos = p.position()

	text, err := p.captureExpression()
	if err != nil {
		return nil, err
	}

	stmt.Text = text

	return stmt, nil
}

// parseThrow parses: 'throw' Expression.
func (p *parser) parseThrow(pos Position) (*Statement, error) {
	p.skipWord()
	p.skipInlineSpace()

	if p.atStatementEnd() {
		return nil, ErrParse.WithPosition(p.position()).
			With(slog.String("expected", "expression"))
	}

	stmt := &Statement{Kind: StmtThrow, Pos: pos, ExprPos: p.position()}

	text, err := p.captureExpression()
	if err != nil {
		return nil, err
	}

	stmt.Text = text

	return stmt, nil
}

// tryAssignment parses: Identifier ('=' | '+=') Expression. If the input at
// pos is not an assignment, the parser is left unchanged and ok is false.
func (p *parser) tryAssignment(pos Position) (stmt *Statement, ok bool, err error) {
	saved := *p

	name, err := p.parseIdentifier()
	if err != nil {
		*p = saved

		return nil, false, nil
	}

	p.skipInlineSpace()

	compound := false

	switch {
	case p.peekN(2) == "+=":
		compound = true

		p.advance()
		p.advance()

	case p.peek() == '=' && p.peekN(2) != "==" && p.peekN(2) != "=>":
		p.advance()

	default:
		*p = saved

		return nil, false, nil
	}

	p.skipWhitespaceAndComments()

	stmt = &Statement{
		Kind:     StmtAssign,
		Name:     name,
		Compound: compound,
		Pos:      pos,
		ExprPos:  p.position(),
	}

	stmt.Text, err = p.requireExpression()
	if err != nil {
		return nil, true, err
	}

	return stmt, true, nil
}

func (p *parser) requireExpression() (string, error) {
	pos := p.position()

	text, err := p.captureExpression()
	if err != nil {
		return "", err
	}

	if text == "" {
		return "", ErrParse.WithPosition(pos).
			With(slog.String("expected", "expression"))
	}

	return text, nil
}

// captureExpression captures raw expression text.
// Stops at ';' or a statement-ending newline at depth 0, or EOF.
// Tracks balanced '()', '[]', '{}'.
// Skips string literals and comments so delimiters inside them don't
// terminate.
func (p *parser) captureExpression() (string, error) {
	start := p.pos
	open := make([]Position, 0, 4) // positions of unclosed brackets

	var last rune // last significant character

scan:
	for !p.eof() {
		ch := p.peek()

		switch {
		case ch == '"' || ch == '\'' || ch == '`':
			if err := p.skipString(ch); err != nil {
				return "", err
			}

			last = ch

			continue

		case ch == '/' && p.peekN(2) == "//":
			p.skipLineComment()

			continue

		case ch == '/' && p.peekN(2) == "/*":
			if err := p.skipBlockComment(); err != nil {
				return "", err
			}

			continue
		}

		switch ch {
		case '(', '[', '{':
			open = append(open, p.position())

		case ')', ']', '}':
			if len(open) == 0 {
				return "", p.unexpected()
			}

			open = open[:len(open)-1]

		case ';':
			if len(open) == 0 {
				break scan
			}

		case '\n':
			if len(open) == 0 && !p.continues(last) {
				break scan
			}
		}

		if !unicode.IsSpace(ch) {
			last = ch
		}

		p.advance()
	}

	if len(open) > 0 {
		return "", ErrParse.WithPosition(open[len(open)-1]).
			With(slog.String("error", "unclosed bracket"))
	}

	return strings.TrimSpace(string(p.input[start:p.pos])), nil
}

// continues reports whether the expression extends past the newline at the
// current position, given the last significant character before it.
func (p *parser) continues(last rune) bool {
	if last != 0 && strings.ContainsRune("+-*/%=<>&|!?:,.([{~^", last) {
		return true
	}

	i := p.pos
	for i < len(p.input) && isSpaceByte(p.input[i]) {
		i++
	}

	rest := p.input[i:]
	if len(rest) == 0 {
		return false
	}

	switch rest[0] {
	case '/':
		return len(rest) > 1 && rest[1] != '/' && rest[1] != '*'
	case '.', '?', ':', '+', '-', '*', '%', '&', '|', '=', '<', '>', ',':
		return true
	}

	return false
}

// atStatementEnd reports whether the current position ends a statement.
func (p *parser) atStatementEnd() bool {
	if p.eof() {
		return true
	}

	switch p.peek() {
	case ';', '\n', '\r':
		return true
	case '/':
		return p.peekN(2) == "//"
	}

	return false
}

func (p *parser) unexpected() *Error {
	r := p.peek()

	return ErrParse.WithPosition(p.position()).
		With(slog.String("unexpected", string(r)))
}

// parseIdentifier parses an identifier token.
func (p *parser) parseIdentifier() (string, error) {
	start := p.pos

	if !isIdentifierStart(p.peek()) {
		return "", ErrParse.WithPosition(p.position()).
			With(slog.String("expected", "identifier"))
	}

	p.advance()

	for !p.eof() && isIdentifierContinue(p.peek()) {
		p.advance()
	}

	return string(p.input[start:p.pos]), nil
}

// peekWord returns the identifier at the current position without
// consuming it.
func (p *parser) peekWord() string {
	i := p.pos

	for i < len(p.input) {
		r, size := utf8.DecodeRune(p.input[i:])
		if i == p.pos && !isIdentifierStart(r) {
			break
		}

		if !isIdentifierContinue(r) {
			break
		}

		i += size
	}

	return string(p.input[p.pos:i])
}

func (p *parser) skipWord() {
	for n := utf8.RuneCountInString(p.peekWord()); n > 0; n-- {
		p.advance()
	}
}

// Helper methods

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}

	r, _ := utf8.DecodeRune(p.input[p.pos:])

	return r
}

func (p *parser) peekN(n int) string {
	if p.pos+n > len(p.input) {
		return string(p.input[p.pos:])
	}

	return string(p.input[p.pos : p.pos+n])
}

func (p *parser) advance() {
	if p.eof() {
		return
	}

	r, size := utf8.DecodeRune(p.input[p.pos:])

	p.pos += size
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) position() Position {
	return Position{
		Offset: p.pos,
		Line:   p.line,
		Column: p.col,
	}
}

// skipInlineSpace skips spaces and tabs but not newlines.
func (p *parser) skipInlineSpace() {
	for !p.eof() {
		switch p.peek() {
		case ' ', '\t', '\v', '\f':
			p.advance()
		default:
			return
		}
	}
}

func (p *parser) skipWhitespaceAndComments() {
	for {
		for !p.eof() && unicode.IsSpace(p.peek()) {
			p.advance()
		}

		switch {
		case p.peekN(2) == "//":
			p.skipLineComment()
		case p.peekN(2) == "/*":
			if p.skipBlockComment() != nil {
				return
			}
		default:
			return
		}
	}
}

// skipSeparators skips whitespace, comments and empty statements.
func (p *parser) skipSeparators() {
	for {
		p.skipWhitespaceAndComments()

		if p.peek() != ';' {
			return
		}

		p.advance()
	}
}

// skipLineComment skips to the end of the line, leaving the newline.
func (p *parser) skipLineComment() {
	for !p.eof() && p.peek() != '\n' {
		p.advance()
	}
}

func (p *parser) skipBlockComment() error {
	pos := p.position()

	p.advance() // skip '/'
	p.advance() // skip '*'

	for !p.eof() {
		if p.peekN(2) == "*/" {
			p.advance()
			p.advance()

			return nil
		}

		p.advance()
	}

	return ErrParse.WithPosition(pos).
		With(slog.String("error", "unterminated comment"))
}

func (p *parser) skipString(quote rune) error {
	pos := p.position()

	p.advance() // skip opening quote

	for !p.eof() {
		ch := p.peek()
		if ch == '\\' && quote != '`' {
			p.advance()

			if !p.eof() {
				p.advance()
			}

			continue
		}

		if ch == quote {
			p.advance()

			return nil
		}

		if ch == '\n' && quote != '`' {
			break
		}

		p.advance()
	}

	return ErrParse.WithPosition(pos).
		With(slog.String("error", "unterminated string"))
}

// Character classification

func isIdentifierStart(r rune) bool {
	return unicode.In(r,
		unicode.L,  // Letter
		unicode.Nl, // Letter, Number
		unicode.Other_ID_Start,
	) || r == '_'
}

func isIdentifierContinue(r rune) bool {
	return unicode.In(r,
		unicode.L,  // Letter
		unicode.Nl, // Letter, Number
		unicode.Other_ID_Start,
		unicode.Mn, // Mark, Nonspacing
		unicode.Mc, // Mark, Spacing Combining
		unicode.Nd, // Number, Decimal Digit
		unicode.Pc, // Punctuation, Connector
		unicode.Other_ID_Continue,
	)
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' ||
		b == '\f'
}
