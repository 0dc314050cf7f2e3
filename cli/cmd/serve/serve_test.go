package serve

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/goleak"

	"github.com/ardnew/aliasexpr/cli/cmd"
	"github.com/ardnew/aliasexpr/lang"
	"github.com/ardnew/aliasexpr/log"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestServer() *Server {
	return NewServer(log.Make(io.Discard),
		lang.WithClock(func() time.Time {
			return time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)
		}),
		lang.WithLocation(time.UTC),
	)
}

func buildRequest(toolName string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      toolName,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()

	if result == nil || len(result.Content) == 0 {
		t.Fatal("empty tool result")
	}

	return mcp.GetTextFromContent(result.Content[0])
}

func TestReferencesTool(t *testing.T) {
	s := newTestServer()

	result, err := s.handleReferences(context.Background(),
		buildRequest("references", map[string]any{"expression": "$b$ + $a$ + $b$"}))
	if err != nil {
		t.Fatalf("handleReferences() error = %v", err)
	}

	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}

	var names []string

	err = json.Unmarshal([]byte(resultText(t, result)), &names)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"b", "a"}, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluateTool(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]any
		want     string
		wantErr  bool
		contains string
	}{
		{
			name: "string variables",
			args: map[string]any{
				"expression": "return $state$ + '-' + $year$",
				"variables":  map[string]any{"state": "CA", "year": 2024},
			},
			want: "CA-2024",
		},
		{
			name: "moment",
			args: map[string]any{"expression": "return Moment().format('YYYY-MM-DD')"},
			want: "2024-03-15",
		},
		{
			name:     "missing variable",
			args:     map[string]any{"expression": "return $x$"},
			wantErr:  true,
			contains: `"x"`,
		},
		{
			name:     "missing expression",
			args:     map[string]any{},
			wantErr:  true,
			contains: "expression is required",
		},
		{
			name:     "evaluation failure",
			args:     map[string]any{"expression": "return 1"},
			wantErr:  true,
			contains: "not a string",
		},
	}

	s := newTestServer()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.handleEvaluate(context.Background(), buildRequest("evaluate", tt.args))
			if err != nil {
				t.Fatalf("handleEvaluate() error = %v", err)
			}

			text := resultText(t, result)

			if result.IsError != tt.wantErr {
				t.Fatalf("IsError = %v, want %v (%s)", result.IsError, tt.wantErr, text)
			}

			if tt.wantErr {
				if !strings.Contains(text, tt.contains) {
					t.Errorf("error %q does not contain %q", text, tt.contains)
				}

				return
			}

			if text != tt.want {
				t.Errorf("result = %q, want %q", text, tt.want)
			}
		})
	}
}

func TestResolveTool(t *testing.T) {
	doc := `
fields:
  - name: a
    alias: Alpha
    useExpression: false
  - name: b
    alias: "return $x$ + '!'"
    useExpression: true
`

	s := newTestServer()

	result, err := s.handleResolve(context.Background(), buildRequest("resolve", map[string]any{
		"document":  doc,
		"variables": map[string]any{"x": "hi"},
	}))
	if err != nil {
		t.Fatalf("handleResolve() error = %v", err)
	}

	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}

	var rows []cmd.Row

	err = json.Unmarshal([]byte(resultText(t, result)), &rows)
	if err != nil {
		t.Fatal(err)
	}

	want := []cmd.Row{
		{Field: "a", DisplayName: "Alpha", Mode: "literal"},
		{Field: "b", DisplayName: "hi!", Mode: "expression"},
	}

	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveToolErrors(t *testing.T) {
	s := newTestServer()

	for name, args := range map[string]map[string]any{
		"missing document": {},
		"bad query":        {"document": "a: 1", "query": ".["},
	} {
		t.Run(name, func(t *testing.T) {
			result, err := s.handleResolve(context.Background(), buildRequest("resolve", args))
			if err != nil {
				t.Fatalf("handleResolve() error = %v", err)
			}

			if !result.IsError {
				t.Errorf("expected tool error, got %s", resultText(t, result))
			}
		})
	}
}

func TestToolsList(t *testing.T) {
	s := newTestServer()

	resp := s.MCPServer().HandleMessage(context.Background(),
		json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))

	buf, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}

	for _, tool := range []string{`"references"`, `"evaluate"`, `"resolve"`} {
		if !bytes.Contains(buf, []byte(tool)) {
			t.Errorf("tools/list response missing %s:\n%s", tool, buf)
		}
	}
}
