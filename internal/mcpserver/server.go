// Package mcpserver exposes a gowick tool session over the Model Context
// Protocol. Tool definitions come from gowick.ToolSchemas, so the stdio
// server and the HTTP server always agree on names and parameters.
package mcpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/njchilds90/gowick"
	"github.com/njchilds90/gowick/internal/logging"
)

// ToolCallObserver is told about every finished tool call.
type ToolCallObserver interface {
	ToolCall(tool string, failed bool)
}

// Server binds one session to an MCP server.
type Server struct {
	session  *gowick.Session
	logger   *slog.Logger
	observer ToolCallObserver
	mcp      *server.MCPServer
}

// New registers every gowick tool on a fresh MCP server. observer may be
// nil.
func New(session *gowick.Session, logger *slog.Logger, observer ToolCallObserver) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	s := &Server{session: session, logger: logger, observer: observer}
	s.mcp = server.NewMCPServer(
		"gowick",
		gowick.Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)
	for _, spec := range gowick.ToolSchemas() {
		s.mcp.AddTool(Definition(spec), s.handler(spec.Name))
	}
	return s
}

// MCP returns the underlying server, for transports other than stdio.
func (s *Server) MCP() *server.MCPServer { return s.mcp }

// ServeStdio blocks serving requests on stdin/stdout.
func (s *Server) ServeStdio() error {
	s.logger.Info("serving MCP over stdio", "tools", len(gowick.ToolSchemas()))
	return server.ServeStdio(s.mcp)
}

// Definition converts a tool schema into an MCP tool.
func Definition(spec gowick.ToolSchema) mcp.Tool {
	required := map[string]bool{}
	for _, r := range spec.Required {
		required[r] = true
	}
	opts := []mcp.ToolOption{mcp.WithDescription(spec.Description)}
	for _, name := range sortedProps(spec.Properties) {
		var popts []mcp.PropertyOption
		if required[name] {
			popts = append(popts, mcp.Required())
		}
		switch spec.Properties[name] {
		case "integer", "number":
			opts = append(opts, mcp.WithNumber(name, popts...))
		case "boolean":
			opts = append(opts, mcp.WithBoolean(name, popts...))
		case "array":
			opts = append(opts, mcp.WithArray(name, popts...))
		case "object":
			opts = append(opts, mcp.WithObject(name, popts...))
		default:
			opts = append(opts, mcp.WithString(name, popts...))
		}
	}
	return mcp.NewTool(spec.Name, opts...)
}

func (s *Server) handler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		resp := s.session.HandleToolCallContext(ctx, gowick.ToolRequest{Tool: name, Params: req.GetArguments()})
		if s.observer != nil {
			s.observer.ToolCall(name, resp.Error != "")
		}
		if resp.Error != "" {
			s.logger.Warn("tool call failed", "tool", name, "error", resp.Error)
			return mcp.NewToolResultError(resp.Error), nil
		}
		return Result(resp)
	}
}

// Result renders a tool response as MCP text content: the plain string
// form when there is one, otherwise the JSON result.
func Result(resp gowick.ToolResponse) (*mcp.CallToolResult, error) {
	if resp.Result == nil {
		return mcp.NewToolResultText(resp.String), nil
	}
	b, err := json.MarshalIndent(map[string]interface{}{
		"result": resp.Result,
		"string": resp.String,
		"latex":  resp.LaTeX,
	}, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(b)), nil
}

func sortedProps(props map[string]string) []string {
	names := make([]string, 0, len(props))
	for k := range props {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
