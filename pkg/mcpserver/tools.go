package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/shieldscan/shieldscan/pkg/finding"
	"github.com/shieldscan/shieldscan/pkg/target"
)

// registerTools adds the scan tools to the MCP server.
func (s *Server) registerTools() {
	s.addRunScanTool()
	s.addListCategoriesTool()
}

// ═══════════════════════════════════════════════════════════════════════════
// run_scan: full scan of one URL
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addRunScanTool() {
	s.mcp.AddTool(
		&mcp.Tool{
			Name:  "run_scan",
			Title: "Run Scan",
			Description: `Scan one web page and its host.

Checks, in order: SQL injection in the page's forms, open TCP ports 1-1024, host IP and reverse name, robots.txt disallowed paths, Server header, missing security headers, cookies set by the page.

This sends live traffic to the target, including form submissions with quote characters. Only use it on systems the user is authorized to test.

EXAMPLE INPUT: {"target": "https://example.com/search"}

Returns the JSON report: id, target, host, started_at, duration_ms and one result per category with its findings.`,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"target": map[string]any{
						"type":        "string",
						"description": "Full URL of the page to scan, including http:// or https://.",
					},
				},
				"required": []string{"target"},
			},
			Annotations: &mcp.ToolAnnotations{
				ReadOnlyHint:    false,
				DestructiveHint: boolPtr(false),
				IdempotentHint:  false,
				OpenWorldHint:   boolPtr(true),
				Title:           "Run Scan",
			},
		},
		s.handleRunScan,
	)
}

type runScanArgs struct {
	Target string `json:"target"`
}

func (s *Server) handleRunScan(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args runScanArgs
	if err := parseArgs(req, &args); err != nil {
		return errorResult(fmt.Sprintf("invalid arguments: %v. Expected 'target' (string).", err)), nil
	}
	args.Target = strings.TrimSpace(args.Target)
	if args.Target == "" {
		return errorResult("target is required (e.g. https://example.com/)"), nil
	}

	rep, err := s.scanner.Run(ctx, args.Target)
	if err != nil {
		s.logger.Warn("mcp scan failed", slog.String("target", args.Target), slog.String("error", err.Error()))
		if errors.Is(err, target.ErrNoSchemeSeparator) {
			return errorResult(fmt.Sprintf("%v. Pass a full URL such as https://%s", err, args.Target)), nil
		}
		return errorResult(err.Error()), nil
	}
	return jsonResult(rep)
}

// ═══════════════════════════════════════════════════════════════════════════
// list_categories: report sections, no traffic
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addListCategoriesTool() {
	s.mcp.AddTool(
		&mcp.Tool{
			Name:        "list_categories",
			Title:       "List Categories",
			Description: "List the report categories run_scan fills, in report order. Sends no traffic.",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
			Annotations: &mcp.ToolAnnotations{
				ReadOnlyHint:   true,
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(false),
				Title:          "List Categories",
			},
		},
		func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return jsonResult(categoryNames())
		},
	)
}

func categoryNames() []string {
	cats := finding.Categories()
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = string(c)
	}
	return out
}
