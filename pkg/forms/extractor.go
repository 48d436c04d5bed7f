package forms

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"

	"golang.org/x/net/html/charset"

	"github.com/shieldscan/shieldscan/pkg/httpclient"
	"github.com/shieldscan/shieldscan/pkg/iohelper"
)

// Config configures an Extractor.
type Config struct {
	// Client fetches the page (default: httpclient.Default())
	Client *http.Client

	Logger *slog.Logger
}

// Extractor fetches pages and parses their forms.
type Extractor struct {
	client *http.Client
	logger *slog.Logger
}

// NewExtractor creates an Extractor.
func NewExtractor(cfg Config) *Extractor {
	client := cfg.Client
	if client == nil {
		client = httpclient.Default()
	}
	return &Extractor{client: client, logger: orDefault(cfg.Logger)}
}

// Extract fetches pageURL and returns its forms. Any fetch failure yields
// no forms; the status code is not checked, error pages are parsed too.
func (e *Extractor) Extract(ctx context.Context, pageURL string) []Form {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		e.logger.Debug("form page request invalid", slog.String("url", pageURL), slog.String("error", err.Error()))
		return nil
	}

	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Debug("form page fetch failed", slog.String("url", pageURL),
			slog.String("error", httpclient.Classify(err).Error()))
		return nil
	}
	defer iohelper.DrainAndClose(resp.Body)

	body, err := iohelper.ReadBodyDefault(resp.Body)
	if err != nil {
		e.logger.Debug("form page read failed", slog.String("url", pageURL), slog.String("error", err.Error()))
	}

	forms := Parse(decode(body, resp.Header.Get("Content-Type")))
	e.logger.Debug("forms extracted", slog.String("url", pageURL),
		slog.Int("status", resp.StatusCode), slog.Int("forms", len(forms)))
	return forms
}

// decode converts body to UTF-8 using the Content-Type charset or a <meta>
// declaration, falling back to the raw bytes.
func decode(body []byte, contentType string) *bytes.Reader {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return bytes.NewReader(body)
	}
	utf8, err := iohelper.ReadBodyDefault(r)
	if err != nil {
		return bytes.NewReader(body)
	}
	return bytes.NewReader(utf8)
}

func orDefault(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}
