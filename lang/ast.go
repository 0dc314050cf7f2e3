package lang

import (
	"fmt"
	"log/slog"
	"strings"
)

// Position identifies a location in expression source.
type Position struct {
	Offset int // byte offset, 0-based
	Line   int // 1-based
	Column int // 1-based, in runes
}

// String formats the position as "line:column".
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// LogValue implements slog.LogValuer.
func (p Position) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("line", p.Line),
		slog.Int("column", p.Column),
		slog.Int("offset", p.Offset),
	)
}

// StatementKind classifies a [Statement].
type StatementKind int

const (
	StmtExpr StatementKind = iota
	StmtDeclare
	StmtAssign
	StmtReturn
	StmtThrow
)

func (k StatementKind) String() string {
	switch k {
	case StmtExpr:
		return "expression"
	case StmtDeclare:
		return "declaration"
	case StmtAssign:
		return "assignment"
	case StmtReturn:
		return "return"
	case StmtThrow:
		return "throw"
	default:
		return fmt.Sprintf("StatementKind(%d)", int(k))
	}
}

// DeclKind is the keyword that introduced a declaration.
type DeclKind int

const (
	DeclVar DeclKind = iota
	DeclLet
	DeclConst
)

func (k DeclKind) String() string {
	switch k {
	case DeclVar:
		return "var"
	case DeclLet:
		return "let"
	case DeclConst:
		return "const"
	default:
		return fmt.Sprintf("DeclKind(%d)", int(k))
	}
}

// Statement is one statement of an alias expression body.
//
// Text is the expression as written. Expr is the same expression rewritten
// for expr-lang, with query variable references replaced by their bindings.
// Both are empty for a declaration without initializer or a bare return.
type Statement struct {
	Kind     StatementKind
	Decl     DeclKind // StmtDeclare only
	Name     string   // StmtDeclare and StmtAssign
	Compound bool     // StmtAssign with "+="
	Text     string
	Expr     string
	Pos      Position // start of the statement
	ExprPos  Position // start of Text
}

// String renders the statement in source form.
func (s *Statement) String() string {
	var b strings.Builder

	switch s.Kind {
	case StmtDeclare:
		b.WriteString(s.Decl.String() + " " + s.Name)

		if s.Text != "" {
			b.WriteString(" = " + s.Text)
		}

	case StmtAssign:
		op := " = "
		if s.Compound {
			op = " += "
		}

		b.WriteString(s.Name + op + s.Text)

	case StmtReturn:
		b.WriteString("return")

		if s.Text != "" {
			b.WriteString(" " + s.Text)
		}

	case StmtThrow:
		b.WriteString("throw " + s.Text)

	default:
		b.WriteString(s.Text)
	}

	return b.String()
}

// Program is a parsed alias expression.
type Program struct {
	Source     string
	Statements []*Statement

	// References lists the query variables the source refers to, in
	// first-seen order. Bindings maps each of them to the identifier its
	// value is bound to during evaluation.
	References []string
	Bindings   map[string]string
}

// String renders the program one statement per line.
func (p *Program) String() string {
	lines := make([]string, len(p.Statements))
	for i, s := range p.Statements {
		lines[i] = s.String()
	}

	return strings.Join(lines, "\n")
}
