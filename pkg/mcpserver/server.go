package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/shieldscan/shieldscan/pkg/defaults"
	"github.com/shieldscan/shieldscan/pkg/finding"
	"github.com/shieldscan/shieldscan/pkg/jsonutil"
)

// Scanner runs one scan. *scanner.Scanner implements it.
type Scanner interface {
	Run(ctx context.Context, rawURL string) (*finding.Report, error)
}

// Config holds MCP server configuration.
type Config struct {
	Scanner Scanner
	Logger  *slog.Logger
}

// Server wraps the MCP server with the scan tools.
type Server struct {
	mcp     *mcp.Server
	scanner Scanner
	logger  *slog.Logger
}

// New creates a new MCP server with all tools and resources registered.
func New(cfg Config) (*Server, error) {
	if cfg.Scanner == nil {
		return nil, errors.New("mcpserver: nil scanner")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Server{scanner: cfg.Scanner, logger: cfg.Logger}
	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    defaults.ToolName,
			Title:   "shieldscan web vulnerability scanner",
			Version: defaults.Version,
		},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)

	s.registerTools()
	s.registerResources()
	return s, nil
}

// MCPServer returns the underlying MCP server for direct access (e.g., testing).
func (s *Server) MCPServer() *mcp.Server { return s.mcp }

// RunStdio runs the MCP server over stdio until ctx is cancelled or the
// client disconnects.
func (s *Server) RunStdio(ctx context.Context) error {
	s.logger.Info("mcp server listening on stdio")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// textResult wraps text in a CallToolResult.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// jsonResult marshals v to indented JSON and wraps it in a CallToolResult.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := jsonutil.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return textResult(string(data)), nil
}

// errorResult creates an IsError CallToolResult so the LLM can see the error
// and self-correct rather than raising a protocol-level exception.
func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}

func boolPtr(b bool) *bool { return &b }

// parseArgs unmarshals the raw JSON arguments from a tool call into dst.
func parseArgs(req *mcp.CallToolRequest, dst any) error {
	if len(req.Params.Arguments) == 0 {
		return nil
	}
	if err := jsonutil.Unmarshal(req.Params.Arguments, dst); err != nil {
		return fmt.Errorf("parsing tool arguments: %w", err)
	}
	return nil
}

const serverInstructions = `shieldscan checks one web page at a time for common weaknesses.

Use run_scan with a full URL including the scheme, for example {"target": "https://example.com/login"}.
A scan submits every form on the page with quote characters appended to detect error-based SQL injection, then sweeps TCP ports 1-1024 of the host, resolves the host, reads robots.txt, reports the Server header, audits three security headers and lists cookies.

The result is a JSON report with one entry per category in a fixed order. Each entry has human-readable findings and an "error" field when the check could not complete.
Only scan systems you are authorized to test.`
