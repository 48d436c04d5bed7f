package sqli

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shieldscan/shieldscan/pkg/defaults"
	"github.com/shieldscan/shieldscan/pkg/finding"
	"github.com/shieldscan/shieldscan/pkg/forms"
	"github.com/shieldscan/shieldscan/pkg/httpclient"
	"github.com/shieldscan/shieldscan/pkg/target"
)

// recorder serves one HTML page at / and answers every other request with
// respond, logging what was submitted.
type recorder struct {
	mu       sync.Mutex
	page     string
	respond  func(w http.ResponseWriter, r *http.Request, values url.Values)
	requests []*http.Request
	values   []url.Values
}

func (rec *recorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/" && r.URL.RawQuery == "" && r.Method == http.MethodGet {
		_, _ = io.WriteString(w, rec.page)
		return
	}
	_ = r.ParseForm()
	rec.mu.Lock()
	rec.requests = append(rec.requests, r)
	rec.values = append(rec.values, r.Form)
	rec.mu.Unlock()
	rec.respond(w, r, r.Form)
}

func newScanner() *Scanner {
	return NewScanner(Config{Client: httpclient.New(httpclient.DefaultConfig())})
}

func TestIsVulnerable(t *testing.T) {
	tests := []struct {
		body string
		want bool
	}{
		{"You have an error in your SQL syntax; check the manual", true},
		{"ERROR: QUOTED STRING NOT PROPERLY TERMINATED", true},
		{"Unclosed quotation mark after the character string ''.", true},
		{"<html>Welcome</html>", false},
		{"", false},
		{"you have an error in your sql", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsVulnerable(tt.body), tt.body)
	}
}

func TestPayloadOrder(t *testing.T) {
	assert.Equal(t, []string{`"`, `'`}, PayloadChars)
}

func TestBuildSubmission(t *testing.T) {
	fields := []forms.Field{
		{Type: "text", Name: "q", HasName: true},
		{Type: "text", Name: "user", HasName: true, Value: "admin"},
		{Type: "hidden", Name: "csrf", HasName: true},
		{Type: "hidden", Name: "token", HasName: true, Value: "t0k"},
		{Type: "submit", Name: "go", HasName: true},
		{Type: "submit", Name: "send", HasName: true, Value: "Send"},
		{Type: "password", HasName: false},
		{Type: "checkbox", Name: "", HasName: true},
	}

	got := BuildSubmission(fields, `'`)

	assert.Equal(t, "test'", got.Get("q"))
	assert.Equal(t, "admin'", got.Get("user"))
	assert.Equal(t, "'", got.Get("csrf"))
	assert.Equal(t, "t0k'", got.Get("token"))
	assert.Equal(t, "Send'", got.Get("send"))
	assert.Equal(t, "test'", got.Get(""))
	_, present := got["go"]
	assert.False(t, present, "value-less submit must not be submitted")
	assert.Len(t, got, 6)
}

func TestBuildSubmission_TypeIsCaseInsensitive(t *testing.T) {
	page := `<form><input type="HIDDEN" name="csrf"><input type="Submit" name="go"></form>`
	parsed := forms.Parse(strings.NewReader(page))
	require.Len(t, parsed, 1)

	got := BuildSubmission(parsed[0].Fields, `"`)
	assert.Equal(t, `"`, got.Get("csrf"))
	_, present := got["go"]
	assert.False(t, present)
}

func TestBuildSubmission_DuplicateNameKeepsLast(t *testing.T) {
	got := BuildSubmission([]forms.Field{
		{Type: "text", Name: "a", HasName: true, Value: "first"},
		{Type: "text", Name: "a", HasName: true, Value: "second"},
	}, `"`)
	assert.Equal(t, []string{`second"`}, got["a"])
}

func TestResolveAction(t *testing.T) {
	base := "http://example.com/app/page.php?x=1"
	tests := []struct {
		name string
		form forms.Form
		want string
	}{
		{"absent", forms.Form{}, base},
		{"empty", forms.Form{HasAction: true}, base},
		{"relative", forms.Form{Action: "search", HasAction: true}, "http://example.com/app/search"},
		{"root", forms.Form{Action: "/search", HasAction: true}, "http://example.com/search"},
		{"parent", forms.Form{Action: "../login", HasAction: true}, "http://example.com/login"},
		{"query only", forms.Form{Action: "?y=2", HasAction: true}, "http://example.com/app/page.php?y=2"},
		{"absolute", forms.Form{Action: "https://other.test/x", HasAction: true}, "https://other.test/x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveAction(base, tt.form))
		})
	}
}

func TestScan_EarlyExitOnClean(t *testing.T) {
	// Only the single quote triggers an error, but the double quote is
	// tried first and its clean response ends the form.
	rec := &recorder{
		page: `<form action="/search"><input name="q"></form>`,
		respond: func(w http.ResponseWriter, r *http.Request, v url.Values) {
			if strings.Contains(v.Get("q"), "'") {
				_, _ = io.WriteString(w, "You have an error in your SQL syntax")
				return
			}
			_, _ = io.WriteString(w, "results")
		},
	}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	got := newScanner().Scan(context.Background(), srv.URL+"/")
	assert.Equal(t, []finding.Finding{MsgClean}, got)
	require.Len(t, rec.values, 1)
	assert.Equal(t, `test"`, rec.values[0].Get("q"))
	assert.Equal(t, http.MethodGet, rec.requests[0].Method)
	assert.Equal(t, "/search", rec.requests[0].URL.Path)
}

func TestScan_VulnerableContinues(t *testing.T) {
	rec := &recorder{
		page: `<form action="/search"><input name="q"></form>`,
		respond: func(w http.ResponseWriter, r *http.Request, v url.Values) {
			_, _ = io.WriteString(w, "you have an error in your SQL syntax near '\"'")
		},
	}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	got := newScanner().Scan(context.Background(), srv.URL+"/")
	want := finding.Finding(finding.VulnerablePrefix + srv.URL + "/search")
	assert.Equal(t, []finding.Finding{want, want}, got)
	require.Len(t, rec.values, 2)
	assert.Equal(t, `test"`, rec.values[0].Get("q"))
	assert.Equal(t, `test'`, rec.values[1].Get("q"))
}

func TestScan_VulnerableThenClean(t *testing.T) {
	rec := &recorder{
		page: `<form method="post"><input type="hidden" name="id" value="7"></form>`,
		respond: func(w http.ResponseWriter, r *http.Request, v url.Values) {
			if strings.HasSuffix(v.Get("id"), `"`) {
				_, _ = io.WriteString(w, "ORA-01756: quoted string not properly terminated")
				return
			}
			_, _ = io.WriteString(w, "ok")
		},
	}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	base := srv.URL + "/"
	got := newScanner().Scan(context.Background(), base)
	assert.Equal(t, []finding.Finding{
		finding.Finding(finding.VulnerablePrefix + base),
		MsgClean,
	}, got)

	require.Len(t, rec.requests, 2)
	for _, r := range rec.requests {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, defaults.ContentTypeForm, r.Header.Get("Content-Type"))
		assert.Equal(t, defaults.UAChrome103, r.Header.Get("User-Agent"))
	}
	assert.Equal(t, `7"`, rec.values[0].Get("id"))
	assert.Equal(t, `7'`, rec.values[1].Get("id"))
}

func TestScan_Non200StopsForm(t *testing.T) {
	rec := &recorder{
		page: `<form action="/a"><input name="x"></form><form action="/b"><input name="y"></form>`,
		respond: func(w http.ResponseWriter, r *http.Request, v url.Values) {
			if r.URL.Path == "/a" {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = io.WriteString(w, "you have an error in your sql syntax")
				return
			}
			_, _ = io.WriteString(w, "fine")
		},
	}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	got := newScanner().Scan(context.Background(), srv.URL+"/")
	assert.Equal(t, []finding.Finding{
		finding.Finding("Failed to fetch: " + srv.URL + "/a"),
		MsgClean,
	}, got)
	assert.Len(t, rec.requests, 2)
}

func TestScan_GetKeepsActionQuery(t *testing.T) {
	rec := &recorder{
		page: `<form action="/s?lang=en"><input type="submit"><input name="q" value="x"></form>`,
		respond: func(w http.ResponseWriter, r *http.Request, v url.Values) {
			_, _ = io.WriteString(w, "ok")
		},
	}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	newScanner().Scan(context.Background(), srv.URL+"/")
	require.Len(t, rec.requests, 1)
	q := rec.requests[0].URL.Query()
	assert.Equal(t, "en", q.Get("lang"))
	assert.Equal(t, `x"`, q.Get("q"))
	assert.Len(t, q, 2)
}

func TestScan_NoForms(t *testing.T) {
	srv := httptest.NewServer(&recorder{page: "<p>nothing here</p>"})
	defer srv.Close()

	assert.Empty(t, newScanner().Scan(context.Background(), srv.URL+"/"))
}

func TestScanForm_NetworkFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	base := "http://" + addr + "/"
	form := forms.Form{Action: "/login", HasAction: true, Method: forms.MethodPost,
		Fields: []forms.Field{{Type: "text", Name: "u", HasName: true}}}

	got := newScanner().ScanForm(context.Background(), base, form)
	assert.Equal(t, []finding.Finding{finding.Finding("Failed to fetch: http://" + addr + "/login")}, got)
}

func TestRun_WrapsFindings(t *testing.T) {
	srv := httptest.NewServer(&recorder{page: "<p>no forms</p>"})
	defer srv.Close()

	s := newScanner()
	res := s.Run(context.Background(), target.Target{URL: srv.URL + "/", Host: "ignored"})
	assert.Equal(t, finding.SQLInjection, s.Category())
	assert.Equal(t, finding.SQLInjection, res.Category)
	assert.NotNil(t, res.Findings)
	assert.Empty(t, res.Findings)
	assert.False(t, res.Failed())
}
