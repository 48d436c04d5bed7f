package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/shieldscan/shieldscan/pkg/defaults"
	"github.com/shieldscan/shieldscan/pkg/mcpserver"
)

// runMCP serves the scan tools on stdio. Stdout carries the protocol, so
// every log line goes to stderr.
func runMCP(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var common commonFlags
	common.register(fs)

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: shieldscan mcp [flags]\n\n")
		fmt.Fprintf(stderr, "Start an MCP server on stdio exposing the run_scan and list_categories tools.\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return defaults.ExitSuccess
		}
		return defaults.ExitUserError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := setup(ctx, common, stderr, false, nil)
	if err != nil {
		fmt.Fprintf(stderr, "mcp: %v\n", err)
		return exitCodeFor(err)
	}
	defer e.close(ctx)

	srv, err := mcpserver.New(mcpserver.Config{Scanner: e.scanner, Logger: e.logger})
	if err != nil {
		fmt.Fprintf(stderr, "mcp: %v\n", err)
		return defaults.ExitInternalError
	}
	if err := srv.RunStdio(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(stderr, "mcp: %v\n", err)
		return defaults.ExitInternalError
	}
	return defaults.ExitSuccess
}
