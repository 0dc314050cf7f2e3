package pkg

import (
	"os"
	"strings"
	"testing"
)

func TestVersion(t *testing.T) {
	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("read VERSION: %v", err)
	}

	if want := strings.TrimSpace(string(buf)); Version != want {
		t.Errorf("Version = %q, want %q", Version, want)
	}
}

func TestAuthor(t *testing.T) {
	if len(Author) == 0 {
		t.Fatal("Author is empty")
	}

	for i, author := range Author {
		if author.Name == "" && author.Email == "" {
			t.Errorf("Author[%d] must define at least Name or Email", i)
		}
	}
}

func TestPrefix(t *testing.T) {
	tests := []struct {
		name string
		exe  string
		want string
	}{
		{"plain", "/usr/bin/aliasexpr", "aliasexpr"},
		{"extension", "bin/aliasexpr.exe", "aliasexpr"},
		{"debugger", "/tmp/__debug_bin3920", Name},
		{"dotted", "/home/u/.aliasexpr", "aliasexpr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := prefixOf(tt.exe); got != tt.want {
				t.Errorf("prefixOf(%q) = %q, want %q", tt.exe, got, tt.want)
			}
		})
	}
}
