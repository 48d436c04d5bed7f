package report

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"io"
	"strings"
	texttemplate "text/template"

	"github.com/Masterminds/sprig/v3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/shieldscan/shieldscan/pkg/defaults"
	"github.com/shieldscan/shieldscan/pkg/finding"
	"github.com/shieldscan/shieldscan/pkg/jsonutil"
)

// Format is an output format.
type Format string

const (
	FormatConsole  Format = "console"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
)

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatConsole, FormatJSON, FormatMarkdown, FormatHTML}
}

// ParseFormat accepts a format name, case-insensitively. "markdown" and
// "text" are aliases for md and console.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "console", "text":
		return FormatConsole, nil
	case "json":
		return FormatJSON, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("report: unsupported format %q", s)
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return defaults.ContentTypeJSON
	case FormatMarkdown:
		return defaults.ContentTypeMarkdown
	case FormatHTML:
		return defaults.ContentTypeHTML
	default:
		return defaults.ContentTypePlain
	}
}

// Title capitalises every word of a category name.
func Title(v any) string {
	return cases.Title(language.English).String(fmt.Sprint(v))
}

// view is what the templates see.
type view struct {
	*finding.Report
	Version string
	Prefix  string
}

// Generator renders reports. It is safe for concurrent use.
type Generator struct {
	html     *htmltemplate.Template
	markdown *texttemplate.Template
}

// NewGenerator parses the built-in templates.
func NewGenerator() (*Generator, error) {
	htmlFuncs := sprig.FuncMap()
	htmlFuncs["title"] = Title
	html, err := htmltemplate.New("html").Funcs(htmlFuncs).Parse(htmlTmpl)
	if err != nil {
		return nil, fmt.Errorf("report: parse html template: %w", err)
	}

	textFuncs := sprig.TxtFuncMap()
	textFuncs["title"] = Title
	md, err := texttemplate.New("markdown").Funcs(textFuncs).Parse(markdownTmpl)
	if err != nil {
		return nil, fmt.Errorf("report: parse markdown template: %w", err)
	}
	return &Generator{html: html, markdown: md}, nil
}

// Generate writes r to w in format f.
func (g *Generator) Generate(r *finding.Report, f Format, w io.Writer) error {
	if r == nil {
		return fmt.Errorf("report: nil report")
	}
	switch f {
	case FormatConsole:
		return Console(r, w)
	case FormatJSON:
		return jsonutil.Write(w, r, "  ")
	case FormatMarkdown:
		return g.markdown.Execute(w, g.view(r))
	case FormatHTML:
		return g.html.Execute(w, g.view(r))
	default:
		return fmt.Errorf("report: unsupported format %q", f)
	}
}

// GenerateToString renders r into a string.
func (g *Generator) GenerateToString(r *finding.Report, f Format) (string, error) {
	var buf bytes.Buffer
	if err := g.Generate(r, f, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (g *Generator) view(r *finding.Report) view {
	return view{Report: r, Version: defaults.Version, Prefix: finding.VulnerablePrefix}
}
