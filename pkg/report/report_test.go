package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shieldscan/shieldscan/pkg/defaults"
	"github.com/shieldscan/shieldscan/pkg/finding"
	"github.com/shieldscan/shieldscan/pkg/jsonutil"
	"github.com/shieldscan/shieldscan/pkg/sqli"
	"github.com/shieldscan/shieldscan/pkg/ui"
)

func sampleReport() *finding.Report {
	r := finding.NewReport("7c9e6679-7425-40de-944b-e07fc1f90ae7", "http://shop.test/", "shop.test")

	inj := finding.NewResult(finding.SQLInjection)
	inj.Add(finding.VulnerablePrefix+"http://shop.test/search", sqli.MsgClean)
	r.Add(inj)

	ports := finding.NewResult(finding.OpenPorts)
	ports.Add("Scanning open ports on shop.test...", "Port 80: Open")
	r.Add(ports)

	tech := finding.NewResult(finding.Technology)
	tech.Fail(errors.New("connection refused"), "Error getting technology details: connection refused")
	r.Add(tech)

	r.Add(finding.NewResult(finding.Cookies))
	r.Finish()
	return r
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"":         FormatConsole,
		"console":  FormatConsole,
		"TEXT":     FormatConsole,
		"json":     FormatJSON,
		"md":       FormatMarkdown,
		"Markdown": FormatMarkdown,
		"html":     FormatHTML,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("pdf")
	assert.Error(t, err)
}

func TestFormat_ContentType(t *testing.T) {
	assert.Equal(t, defaults.ContentTypeJSON, FormatJSON.ContentType())
	assert.Equal(t, defaults.ContentTypeHTML, FormatHTML.ContentType())
	assert.Equal(t, defaults.ContentTypeMarkdown, FormatMarkdown.ContentType())
	assert.Equal(t, defaults.ContentTypePlain, FormatConsole.ContentType())
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Sql Injection Scan", Title(finding.SQLInjection))
	assert.Equal(t, "Robots Txt", Title("robots txt"))
}

func TestGenerate_JSON(t *testing.T) {
	g, err := NewGenerator()
	require.NoError(t, err)

	out, err := g.GenerateToString(sampleReport(), FormatJSON)
	require.NoError(t, err)

	var decoded finding.Report
	require.NoError(t, jsonutil.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "http://shop.test/", decoded.Target)
	require.Len(t, decoded.Results, 4)
	assert.Equal(t, finding.SQLInjection, decoded.Results[0].Category)
	assert.True(t, decoded.Results[2].Failed())
	assert.Contains(t, out, `"findings": []`)
}

func TestGenerate_Markdown(t *testing.T) {
	g, err := NewGenerator()
	require.NoError(t, err)

	out, err := g.GenerateToString(sampleReport(), FormatMarkdown)
	require.NoError(t, err)

	assert.Contains(t, out, "# Scan results for http://shop.test/")
	assert.Contains(t, out, "## Sql Injection Scan\n")
	assert.Contains(t, out, "- "+finding.VulnerablePrefix+"http://shop.test/search\n")
	assert.Contains(t, out, "- Port 80: Open\n")
	assert.Contains(t, out, "> Check failed: finding: check failed: connection refused")
	assert.Contains(t, out, "## Cookies\n")
	assert.Contains(t, out, "_No findings._")
	assert.Contains(t, out, "shieldscan v"+defaults.Version)

	// Category order is preserved.
	assert.Less(t, strings.Index(out, "Sql Injection Scan"), strings.Index(out, "Open Port Scan"))
	assert.Less(t, strings.Index(out, "Technology Details"), strings.Index(out, "## Cookies"))
}

func TestGenerate_HTML(t *testing.T) {
	g, err := NewGenerator()
	require.NoError(t, err)

	r := sampleReport()
	ports := finding.NewResult(finding.OpenPorts)
	ports.Add(`<script>alert(1)</script>`)
	r.Add(ports)

	out, err := g.GenerateToString(r, FormatHTML)
	require.NoError(t, err)

	assert.Contains(t, out, "<h2>Sql Injection Scan</h2>")
	assert.Contains(t, out, `<li class="vulnerable">`+finding.VulnerablePrefix+"http://shop.test/search</li>")
	assert.Contains(t, out, "<li>"+sqli.MsgClean+"</li>")
	assert.Contains(t, out, `class="section failed"`)
	assert.Contains(t, out, "No findings.")
	assert.NotContains(t, out, "<script>alert(1)</script>")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestGenerate_Errors(t *testing.T) {
	g, err := NewGenerator()
	require.NoError(t, err)

	assert.Error(t, g.Generate(nil, FormatJSON, &bytes.Buffer{}))
	assert.Error(t, g.Generate(sampleReport(), Format("pdf"), &bytes.Buffer{}))
}

func TestConsole(t *testing.T) {
	ui.SetNoColor(true)

	var buf bytes.Buffer
	require.NoError(t, Console(sampleReport(), &buf))
	out := buf.String()

	assert.Contains(t, out, "Scan report")
	assert.Contains(t, out, "http://shop.test/")
	assert.Contains(t, out, "Sql Injection Scan")
	assert.Contains(t, out, finding.VulnerablePrefix+"http://shop.test/search")
	assert.Contains(t, out, "Port 80: Open")
	assert.Contains(t, out, "(none)")
	assert.Contains(t, out, "SQL injection found")
	assert.Contains(t, out, "failed: "+string(finding.Technology))
	assert.NotContains(t, out, "\x1b[")
}

func TestConsole_EscapesHostControlledText(t *testing.T) {
	ui.SetNoColor(true)

	r := finding.NewReport("id", "http://shop.test/", "shop.test")
	tech := finding.NewResult(finding.Technology)
	tech.Add("Server: nginx\x1b]0;owned\x07\x1b[2J")
	r.Add(tech)
	cookies := finding.NewResult(finding.Cookies)
	cookies.Add("Cookies found:", "session: a\rb")
	r.Add(cookies)
	r.Finish()

	var buf bytes.Buffer
	require.NoError(t, Console(r, &buf))
	out := buf.String()

	assert.NotContains(t, out, "\x1b")
	assert.NotContains(t, out, "\x07")
	assert.NotContains(t, out, "\r")
	assert.Contains(t, out, `Server: nginx\x1b]0;owned\x07\x1b[2J`)
	assert.Contains(t, out, `session: a\x0db`)
}
