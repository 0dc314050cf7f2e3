// Package serve exposes expression tools to MCP clients over stdio.
package serve

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ardnew/aliasexpr/alias"
	"github.com/ardnew/aliasexpr/cli/cmd"
	"github.com/ardnew/aliasexpr/lang"
	"github.com/ardnew/aliasexpr/log"
	"github.com/ardnew/aliasexpr/pkg"
)

// Serve runs the MCP tool server on standard input and output.
type Serve struct{}

// Run executes the serve command. It blocks until ctx is canceled or stdin
// is closed.
func (s *Serve) Run(ctx context.Context) error {
	srv := NewServer(log.Default(), cmd.EvalOptionsFrom(ctx)...)

	log.InfoContext(ctx, "serving MCP over stdio",
		slog.Int("tools", len(srv.tools())),
	)

	return srv.Serve(ctx, os.Stdin, os.Stdout)
}

// Server wraps an MCP server with handlers backed by a shared evaluator.
type Server struct {
	eval      *lang.Evaluator
	resolver  *alias.Resolver
	logger    log.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a Server with all tools registered.
func NewServer(logger log.Logger, opts ...lang.Option) *Server {
	eval := lang.NewEvaluator(append([]lang.Option{lang.WithLogger(logger)}, opts...)...)

	s := &Server{
		eval:     eval,
		resolver: alias.NewResolver(alias.WithLogger(logger), alias.WithEvaluator(eval)),
		logger:   logger,
	}

	s.mcpServer = server.NewMCPServer(
		pkg.Name,
		pkg.Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("Use references to list the $name$ query variables an "+
			"alias expression needs, evaluate to run an expression with variable "+
			"values, and resolve to compute the display names of the fields in a "+
			"widget configuration document."),
	)

	s.mcpServer.AddTools(s.tools()...)

	return s
}

// Serve starts the stdio transport and blocks until ctx is canceled or in
// is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.mcpServer).Listen(ctx, in, out)
}

// MCPServer returns the underlying MCP server for tests or other transports.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

func (s *Server) tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: referencesTool(), Handler: s.handleReferences},
		{Tool: evaluateTool(), Handler: s.handleEvaluate},
		{Tool: resolveTool(), Handler: s.handleResolve},
	}
}

func referencesTool() mcp.Tool {
	return mcp.NewTool("references",
		mcp.WithDescription("List the query variables an alias expression references, in first-seen order"),
		mcp.WithString("expression", mcp.Required(), mcp.Description("Alias expression text")),
	)
}

func evaluateTool() mcp.Tool {
	return mcp.NewTool("evaluate",
		mcp.WithDescription("Evaluate an alias expression to its display string"),
		mcp.WithString("expression", mcp.Required(), mcp.Description("Alias expression text")),
		mcp.WithObject("variables", mcp.Description("Query variable values by name")),
	)
}

func resolveTool() mcp.Tool {
	return mcp.NewTool("resolve",
		mcp.WithDescription("Resolve the display names of the fields in a widget configuration document"),
		mcp.WithString("document", mcp.Required(), mcp.Description("Widget configuration document (YAML or JSON)")),
		mcp.WithString("query", mcp.Description("jq query selecting field objects")),
		mcp.WithString("where", mcp.Description("Boolean filter applied to selected fields")),
		mcp.WithObject("variables", mcp.Description("Query variable values by name")),
	)
}

func (s *Server) handleReferences(
	_ context.Context,
	req mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	src, err := req.RequireString("expression")
	if err != nil {
		return mcp.NewToolResultError("expression is required"), nil
	}

	return marshalResult(lang.References(src))
}

func (s *Server) handleEvaluate(
	ctx context.Context,
	req mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	src, err := req.RequireString("expression")
	if err != nil {
		return mcp.NewToolResultError("expression is required"), nil
	}

	result, err := s.eval.Evaluate(ctx, src, variables(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleResolve(
	ctx context.Context,
	req mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	doc, err := req.RequireString("document")
	if err != nil {
		return mcp.NewToolResultError("document is required"), nil
	}

	opts := []alias.DecodeOption{
		alias.WithDecodeLogger(s.logger),
		alias.WithQuery(req.GetString("query", "")),
	}

	if where := req.GetString("where", ""); where != "" {
		opts = append(opts, alias.WithWhere(where))
	}

	fields, err := alias.Decode(ctx, strings.NewReader(doc), opts...)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	vars := variables(req)
	rows := make([]cmd.Row, 0, len(fields))

	for _, f := range fields {
		mode := "literal"
		if f.Config.UseExpression {
			mode = "expression"
		}

		rows = append(rows, cmd.Row{
			Field:       f.Name,
			DisplayName: s.resolver.DisplayName(ctx, f.Name, &f.Config, vars),
			Mode:        mode,
			Missing:     s.resolver.Missing(f.Config, vars),
		})
	}

	return marshalResult(rows)
}

// variables converts the "variables" argument to a string map. Non-string
// values are formatted with their default representation.
func variables(req mcp.CallToolRequest) map[string]string {
	raw := mcp.ParseStringMap(req, "variables", nil)
	vars := make(map[string]string, len(raw))

	for name, value := range raw {
		switch v := value.(type) {
		case string:
			vars[name] = v
		case nil:
			vars[name] = ""
		default:
			vars[name] = fmt.Sprint(v)
		}
	}

	return vars
}

// marshalResult converts a value to a JSON text tool result.
func marshalResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}

	return mcp.NewToolResultText(string(data)), nil
}
