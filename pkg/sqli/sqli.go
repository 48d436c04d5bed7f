// Package sqli tests HTML forms for error-based SQL injection.
//
// Every form on the scanned page is submitted once per payload character with
// that character appended to its field values. A 200 response whose body
// carries a database syntax error marks the form's action as vulnerable.
package sqli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/shieldscan/shieldscan/pkg/defaults"
	"github.com/shieldscan/shieldscan/pkg/finding"
	"github.com/shieldscan/shieldscan/pkg/forms"
	"github.com/shieldscan/shieldscan/pkg/httpclient"
	"github.com/shieldscan/shieldscan/pkg/iohelper"
	"github.com/shieldscan/shieldscan/pkg/target"
)

// PayloadChars are appended to field values, tried in this order.
var PayloadChars = []string{`"`, `'`}

// ErrorSignatures are lower-case database error fragments. A response body
// containing any of them, case-insensitively, is treated as vulnerable.
var ErrorSignatures = []string{
	"quoted string not properly terminated",
	"unclosed quotation mark after the character string",
	"you have an error in your sql syntax",
}

// Finding lines.
const (
	MsgClean  = "No SQL injection attack vulnerability detected"
	msgFailed = "Failed to fetch: %s"
)

// Config configures a Scanner.
type Config struct {
	// Client submits the forms (default: httpclient.Default())
	Client *http.Client

	// Extractor finds the forms (default: one sharing Client)
	Extractor *forms.Extractor

	Logger *slog.Logger
}

// Scanner runs the form injection check.
type Scanner struct {
	client    *http.Client
	extractor *forms.Extractor
	logger    *slog.Logger
}

// NewScanner creates a Scanner.
func NewScanner(cfg Config) *Scanner {
	client := cfg.Client
	if client == nil {
		client = httpclient.Default()
	}
	logger := orDefault(cfg.Logger)
	extractor := cfg.Extractor
	if extractor == nil {
		extractor = forms.NewExtractor(forms.Config{Client: client, Logger: logger})
	}
	return &Scanner{client: client, extractor: extractor, logger: logger}
}

// Category returns the report section the scanner fills.
func (s *Scanner) Category() finding.Category { return finding.SQLInjection }

// Run scans t.URL and wraps the findings in a Result. The check itself
// never fails; unreachable forms are reported in-band.
func (s *Scanner) Run(ctx context.Context, t target.Target) finding.Result {
	res := finding.NewResult(finding.SQLInjection)
	res.Findings = append(res.Findings, s.Scan(ctx, t.URL)...)
	return res
}

// Scan extracts the forms of pageURL and submits each one. Findings come out
// in form order, then payload-character order.
func (s *Scanner) Scan(ctx context.Context, pageURL string) []finding.Finding {
	var out []finding.Finding
	for _, form := range s.extractor.Extract(ctx, pageURL) {
		if ctx.Err() != nil {
			break
		}
		out = append(out, s.ScanForm(ctx, pageURL, form)...)
	}
	return out
}

// ScanForm tests one form. The next payload character is only tried after a
// vulnerable response; a clean response or a failed fetch ends the form.
func (s *Scanner) ScanForm(ctx context.Context, pageURL string, form forms.Form) []finding.Finding {
	action := ResolveAction(pageURL, form)
	var out []finding.Finding

	for _, payload := range PayloadChars {
		data := BuildSubmission(form.Fields, payload)

		status, body, err := s.submit(ctx, form.Method, action, data)
		if err != nil {
			s.logger.Debug("form submission failed",
				slog.String("action", action),
				slog.String("method", form.Method),
				slog.String("error", httpclient.Classify(err).Error()))
			out = append(out, finding.Finding(fmt.Sprintf(msgFailed, action)))
			break
		}

		s.logger.Debug("form submitted",
			slog.String("action", action),
			slog.String("method", form.Method),
			slog.String("payload", payload),
			slog.Int("status", status))

		if status != http.StatusOK {
			out = append(out, finding.Finding(fmt.Sprintf(msgFailed, action)))
			break
		}
		if !IsVulnerable(body) {
			out = append(out, MsgClean)
			break
		}
		out = append(out, finding.Finding(finding.VulnerablePrefix+action))
	}
	return out
}

// BuildSubmission returns the values submitted for fields with payload
// appended. Unnamed fields are skipped. Hidden fields and fields with a
// default value send value+payload, other non-submit fields send
// "test"+payload, and value-less submit buttons are left out. A repeated name
// keeps its last value.
func BuildSubmission(fields []forms.Field, payload string) url.Values {
	data := url.Values{}
	for _, f := range fields {
		if !f.HasName {
			continue
		}
		switch {
		case f.Type == "hidden" || f.Value != "":
			data.Set(f.Name, f.Value+payload)
		case f.Type != "submit":
			data.Set(f.Name, "test"+payload)
		}
	}
	return data
}

// ResolveAction joins the form's action onto pageURL. An absent or empty
// action resolves to pageURL unchanged.
func ResolveAction(pageURL string, form forms.Form) string {
	if !form.HasAction || form.Action == "" {
		return pageURL
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return form.Action
	}
	ref, err := url.Parse(strings.TrimSpace(form.Action))
	if err != nil {
		return form.Action
	}
	return base.ResolveReference(ref).String()
}

// IsVulnerable reports whether body contains an error signature.
func IsVulnerable(body string) bool {
	lower := strings.ToLower(body)
	for _, sig := range ErrorSignatures {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}

// submit sends data to action, as a form body for post and as query
// parameters appended to the action's own query for get.
func (s *Scanner) submit(ctx context.Context, method, action string, data url.Values) (int, string, error) {
	var (
		req *http.Request
		err error
	)

	if method == forms.MethodPost {
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, action, strings.NewReader(data.Encode()))
		if err != nil {
			return 0, "", err
		}
		req.Header.Set("Content-Type", defaults.ContentTypeForm)
	} else {
		parsedURL, err := url.Parse(action)
		if err != nil {
			return 0, "", err
		}
		if enc := data.Encode(); enc != "" {
			if parsedURL.RawQuery != "" {
				parsedURL.RawQuery += "&" + enc
			} else {
				parsedURL.RawQuery = enc
			}
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, parsedURL.String(), nil)
		if err != nil {
			return 0, "", err
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer iohelper.DrainAndClose(resp.Body)

	body, err := iohelper.ReadBodyDefault(resp.Body)
	if err != nil {
		return 0, "", err
	}
	return resp.StatusCode, string(body), nil
}

func orDefault(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}
