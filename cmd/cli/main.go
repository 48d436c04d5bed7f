// Command shieldscan scans a web page for SQL injection in its forms and
// reports on the host's ports, DNS, robots.txt, server technology, security
// headers and cookies.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/shieldscan/shieldscan/pkg/defaults"
	"github.com/shieldscan/shieldscan/pkg/ui"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run dispatches a subcommand and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return defaults.ExitUserError
	}

	switch args[0] {
	case "scan":
		return runScan(args[1:], stdout, stderr)
	case "serve", "server", "web":
		return runServe(args[1:], stderr)
	case "mcp":
		return runMCP(args[1:], stderr)
	case "-h", "--help", "help":
		printUsage(stdout)
		return defaults.ExitSuccess
	case "-v", "--version", "version":
		fmt.Fprintf(stdout, "%s v%s\n", defaults.ToolName, defaults.Version)
		return defaults.ExitSuccess
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		printUsage(stderr)
		return defaults.ExitUserError
	}
}

func printUsage(w io.Writer) {
	ui.PrintBanner(w)

	fmt.Fprintln(w, ui.SectionStyle.Render("COMMANDS"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s  %s\n", ui.ValueStyle.Render("scan   "), "Scan one URL and print the report")
	fmt.Fprintf(w, "  %s  %s\n", ui.ValueStyle.Render("serve  "), "Run the web front end (default :5000)")
	fmt.Fprintf(w, "  %s  %s\n", ui.ValueStyle.Render("mcp    "), "Serve the scan tool over MCP on stdio")
	fmt.Fprintf(w, "  %s  %s\n", ui.ValueStyle.Render("version"), "Print the version")
	fmt.Fprintln(w)

	fmt.Fprintln(w, ui.SectionStyle.Render("EXAMPLES"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "    %s\n", ui.ValueStyle.Render("shieldscan scan -u https://example.com/login"))
	fmt.Fprintf(w, "    %s\n", ui.ValueStyle.Render("shieldscan scan -u https://example.com/ -format json -o report.json"))
	fmt.Fprintf(w, "    %s\n", ui.ValueStyle.Render("shieldscan serve -listen 127.0.0.1:8080 -config shieldscan.yaml"))
	fmt.Fprintln(w)

	fmt.Fprintln(w, ui.SectionStyle.Render("EXIT CODES"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "    %d  scan completed, no injection found\n", defaults.ExitSuccess)
	fmt.Fprintf(w, "    %d  scan completed, SQL injection found\n", defaults.ExitFindings)
	fmt.Fprintf(w, "    %d  invalid arguments, configuration or URL\n", defaults.ExitUserError)
	fmt.Fprintf(w, "    %d  target unreachable\n", defaults.ExitNetworkError)
	fmt.Fprintf(w, "    %d  internal error\n", defaults.ExitInternalError)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'shieldscan <command> -h' for the flags of a command.")
}
