// Package report renders a finding.Report for people and machines.
//
// # Formats (report.go)
//
// Console output is styled with lipgloss and degrades to plain text when
// colors are off. JSON is the finding.Report itself, encoded
// deterministically. Markdown and HTML are rendered from templates that
// have the Sprig function library available.
//
// # Templates (templates.go)
//
// The HTML template is a standalone page and is also what the web front
// end returns for a scan.
package report
