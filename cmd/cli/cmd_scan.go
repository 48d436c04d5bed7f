package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/shieldscan/shieldscan/pkg/config"
	"github.com/shieldscan/shieldscan/pkg/defaults"
	"github.com/shieldscan/shieldscan/pkg/duration"
	"github.com/shieldscan/shieldscan/pkg/finding"
	"github.com/shieldscan/shieldscan/pkg/report"
	"github.com/shieldscan/shieldscan/pkg/target"
	"github.com/shieldscan/shieldscan/pkg/ui"
)

// httpCategories are the checks that fail only when the target cannot be
// fetched at all.
var httpCategories = []finding.Category{
	finding.RobotsTxt,
	finding.Technology,
	finding.SecurityHeaders,
	finding.Cookies,
}

func runScan(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var common commonFlags
	common.register(fs)
	var targetURL string
	fs.StringVar(&targetURL, "u", "", "Target URL (e.g. https://example.com/login)")
	fs.StringVar(&targetURL, "url", "", "Target URL (alias for -u)")
	format := fs.String("format", string(report.FormatConsole), "Output format: console, json, md, html")
	outFile := fs.String("o", "", "Write the report to this file instead of stdout")
	noColor := fs.Bool("no-color", false, "Disable colored output")
	silent := fs.Bool("silent", false, "Do not print the banner")
	ports := fs.String("ports", "", "Port range to sweep as first-last (default from config: 1-1024)")
	timeout := fs.String("timeout", "", "HTTP timeout, e.g. 10s (default from config: 30s)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: shieldscan scan -u <url> [flags]\n\n")
		fmt.Fprintf(stderr, "Scan the forms on one page for SQL injection and report on the host.\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return defaults.ExitSuccess
		}
		return defaults.ExitUserError
	}
	if targetURL == "" && fs.NArg() > 0 {
		targetURL = fs.Arg(0)
	}
	if strings.TrimSpace(targetURL) == "" {
		fmt.Fprintln(stderr, "scan: a target URL is required (-u)")
		fs.Usage()
		return defaults.ExitUserError
	}

	f, err := report.ParseFormat(*format)
	if err != nil {
		fmt.Fprintf(stderr, "scan: %v\n", err)
		return defaults.ExitUserError
	}
	override, err := scanOverrides(*ports, *timeout)
	if err != nil {
		fmt.Fprintf(stderr, "scan: %v\n", err)
		return defaults.ExitUserError
	}

	ui.SetNoColor(*noColor)
	if !*noColor {
		ui.ConfigureColor(stdout)
	}
	if !*silent && f == report.FormatConsole && *outFile == "" {
		ui.PrintBanner(stderr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := setup(ctx, common, stderr, false, override)
	if err != nil {
		fmt.Fprintf(stderr, "scan: %v\n", err)
		return exitCodeFor(err)
	}
	defer e.close(ctx)

	rep, err := e.scanner.Run(ctx, targetURL)
	if err != nil {
		fmt.Fprintf(stderr, "scan: %v\n", err)
		return exitCodeFor(err)
	}

	gen, err := report.NewGenerator()
	if err != nil {
		fmt.Fprintf(stderr, "scan: %v\n", err)
		return defaults.ExitInternalError
	}
	if err := writeReport(gen, rep, f, *outFile, stdout); err != nil {
		fmt.Fprintf(stderr, "scan: %v\n", err)
		return defaults.ExitInternalError
	}
	if *outFile != "" && !*silent {
		fmt.Fprintf(stderr, "report written to %s\n", *outFile)
	}
	return scanExitCode(rep)
}

// scanOverrides turns the -ports and -timeout flags into a config mutation.
func scanOverrides(ports, timeout string) (func(*config.Config), error) {
	first, last := 0, 0
	if ports != "" {
		lo, hi, ok := strings.Cut(ports, "-")
		if !ok {
			hi = lo
		}
		var err error
		if first, err = strconv.Atoi(strings.TrimSpace(lo)); err != nil {
			return nil, fmt.Errorf("invalid -ports %q: %w", ports, err)
		}
		if last, err = strconv.Atoi(strings.TrimSpace(hi)); err != nil {
			return nil, fmt.Errorf("invalid -ports %q: %w", ports, err)
		}
	}
	var httpTimeout duration.Duration
	if timeout != "" {
		d, err := duration.Parse(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid -timeout %q: %w", timeout, err)
		}
		httpTimeout = duration.Duration(d)
	}
	return func(c *config.Config) {
		if ports != "" {
			c.Ports.First, c.Ports.Last = first, last
		}
		if httpTimeout > 0 {
			c.HTTP.Timeout = httpTimeout
		}
	}, nil
}

func writeReport(gen *report.Generator, rep *finding.Report, f report.Format, path string, stdout io.Writer) error {
	if path == "" {
		return gen.Generate(rep, f, stdout)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := gen.Generate(rep, f, out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// exitCodeFor maps a setup or scan error to an exit code.
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, target.ErrNoSchemeSeparator),
		errors.Is(err, config.ErrInvalidConfig),
		errors.Is(err, config.ErrNotFound):
		return defaults.ExitUserError
	default:
		return defaults.ExitInternalError
	}
}

// scanExitCode maps a finished report to an exit code.
func scanExitCode(rep *finding.Report) int {
	if rep.Vulnerable() {
		return defaults.ExitFindings
	}
	if unreachable(rep) {
		return defaults.ExitNetworkError
	}
	return defaults.ExitSuccess
}

// unreachable reports whether every HTTP check failed on the network.
func unreachable(rep *finding.Report) bool {
	for _, c := range httpCategories {
		res, ok := rep.Get(c)
		if !ok || !errors.Is(res.Err, finding.ErrCheckFailed) {
			return false
		}
	}
	return true
}
