package repl

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestDetectFunctionCall(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		cursor int
		want   functionCall
	}{
		{"no call", "region", 6, functionCall{}},
		{"first argument", "upper(", 6, functionCall{"upper", 0, true}},
		{"second argument", "replace($s$, 'a'", 16, functionCall{"replace", 1, true}},
		{"namespace", "list.split($l$, ", 16, functionCall{"list.split", 1, true}},
		{"method", "d.format('YY", 12, functionCall{"d.format", 0, true}},
		{"reference receiver", "$d$.add(1, ", 11, functionCall{"$d$.add", 1, true}},
		{"nested call", "upper(lower(x), ", 16, functionCall{"upper", 1, true}},
		{"inner call", "upper(lower(x", 13, functionCall{"lower", 0, true}},
		{"closed call", "upper(x) + ", 11, functionCall{}},
		{"array argument", "join([a, b], ", 13, functionCall{"join", 1, true}},
		{"bare paren", "(a + ", 5, functionCall{}},
		{"cursor before call", "upper(x)", 3, functionCall{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectFunctionCall(tt.input, tt.cursor); got != tt.want {
				t.Errorf("detectFunctionCall(%q, %d) = %+v, want %+v",
					tt.input, tt.cursor, got, tt.want)
			}
		})
	}
}

func TestLookupSignature(t *testing.T) {
	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{"Moment", "Moment(value?, pattern?)", true},
		{"list.split", "list.split(list, delim)", true},
		{"d.format", "format(pattern?)", true},
		{"Moment().startOf", "startOf(unit)", true},
		{"$name$.replaceAll", "replaceAll(search, replacement)", true},
		{"year", "", false},
		{"d.unknown", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := lookupSignature(tt.name)
			if ok != tt.wantOK {
				t.Fatalf("lookupSignature(%q) ok = %v, want %v", tt.name, ok, tt.wantOK)
			}

			if ok && got.String() != tt.want {
				t.Errorf("lookupSignature(%q) = %q, want %q", tt.name, got.String(), tt.want)
			}
		})
	}
}

func TestRenderSignatureHint(t *testing.T) {
	s := sig("list.prefix", "list", "delim", "...items")

	for _, arg := range []int{0, 1, 2, 5} {
		got := ansi.Strip(renderSignatureHint(s, arg))
		if got != "list.prefix(list, delim, ...items)" {
			t.Errorf("renderSignatureHint(%d) = %q", arg, got)
		}
	}

	if got := ansi.Strip(renderSignatureHint(sig("year"), 0)); got != "year()" {
		t.Errorf("renderSignatureHint() = %q, want %q", got, "year()")
	}
}

func TestSignatureTablesNamed(t *testing.T) {
	for key, s := range functionSignatures {
		if s.name != key {
			t.Errorf("functionSignatures[%q].name = %q", key, s.name)
		}
	}

	for key, s := range methodSignatures {
		if s.name != key {
			t.Errorf("methodSignatures[%q].name = %q", key, s.name)
		}

		if strings.Contains(key, ".") {
			t.Errorf("method %q contains a dot", key)
		}
	}
}
