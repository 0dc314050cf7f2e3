package lang

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse_Statements(t *testing.T) {
	source := `var province = $province$
let n = 1; n += 2
const label = 'x' +
  'y'
// a comment line
total = n
  .toString()
return province + label`

	prog, err := Parse(t.Context(), source)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	type stmt struct {
		Kind     StatementKind
		Decl     DeclKind
		Name     string
		Compound bool
		Text     string
	}

	want := []stmt{
		{Kind: StmtDeclare, Decl: DeclVar, Name: "province", Text: "$province$"},
		{Kind: StmtDeclare, Decl: DeclLet, Name: "n", Text: "1"},
		{Kind: StmtAssign, Name: "n", Compound: true, Text: "2"},
		{Kind: StmtDeclare, Decl: DeclConst, Name: "label", Text: "'x' +\n  'y'"},
		{Kind: StmtAssign, Name: "total", Text: "n\n  .toString()"},
		{Kind: StmtReturn, Text: "province + label"},
	}

	got := make([]stmt, len(prog.Statements))
	for i, s := range prog.Statements {
		got[i] = stmt{s.Kind, s.Decl, s.Name, s.Compound, s.Text}
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("statements mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"province"}, prog.References); diff != "" {
		t.Errorf("references mismatch (-want +got):\n%s", diff)
	}

	if got := prog.Statements[0].Expr; got != "__ref0" {
		t.Errorf("expected rewritten binding, got %q", got)
	}

	if pos := prog.Statements[1].Pos; pos.Line != 2 || pos.Column != 1 {
		t.Errorf("expected statement at 2:1, got %v", pos)
	}
}

func TestParse_BareReturn(t *testing.T) {
	prog, err := Parse(t.Context(), "return\n'unreachable'")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Statements))
	}

	if s := prog.Statements[0]; s.Kind != StmtReturn || s.Text != "" {
		t.Errorf("expected bare return, got %s %q", s.Kind, s.Text)
	}
}

func TestParse_DeclarationWithoutInitializer(t *testing.T) {
	prog, err := Parse(t.Context(), "let x; x = 'a'; return x")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if got := prog.String(); got != "let x\nx = 'a'\nreturn x" {
		t.Errorf("unexpected program:\n%s", got)
	}
}

func TestParse_Brackets(t *testing.T) {
	prog, err := Parse(t.Context(), "return [\n  'a',\n  'b'\n][0]")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   error
	}{
		{"unsupported if", "if (x) { return 'a' }", ErrUnsupported},
		{"unsupported function", "function f() {}", ErrUnsupported},
		{"unclosed paren", "return ('a'", ErrParse},
		{"unexpected closer", "return 'a')", ErrParse},
		{"unterminated string", "return 'a", ErrParse},
		{"unterminated comment", "return 'a' /* b", ErrParse},
		{"const without initializer", "const x", ErrParse},
		{"assignment without value", "x =", ErrParse},
		{"throw without value", "throw", ErrParse},
		{"declaration junk", "let x y", ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(t.Context(), tt.source)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Parse(%q) error = %v, want %v", tt.source, err, tt.want)
			}

			var pe *Error
			if errors.As(err, &pe) {
				if _, ok := pe.Position(); !ok {
					t.Errorf("expected error position for %q", tt.source)
				}
			}
		})
	}
}

func TestParse_SourceTooLong(t *testing.T) {
	_, err := Parse(t.Context(), "return 'abcdef'", WithMaxSourceLength(4))
	if !errors.Is(err, ErrSourceTooLong) {
		t.Fatalf("expected ErrSourceTooLong, got %v", err)
	}
}
