package httpclient

import (
	"log/slog"
	"net/http"
	"time"
)

// middlewareTransport stamps the configured User-Agent on every request,
// including redirect hops, and logs each round trip at debug level.
type middlewareTransport struct {
	base      http.RoundTripper
	userAgent string
	logger    *slog.Logger
}

// RoundTrip implements http.RoundTripper.
func (m *middlewareTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	if m.userAgent != "" {
		r.Header.Set("User-Agent", m.userAgent)
	}

	start := time.Now()
	resp, err := m.base.RoundTrip(r)

	if m.logger != nil {
		attrs := []any{
			slog.String("method", r.Method),
			slog.String("url", r.URL.String()),
			slog.Duration("took", time.Since(start)),
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		} else {
			attrs = append(attrs, slog.Int("status", resp.StatusCode))
		}
		m.logger.Debug("http round trip", attrs...)
	}
	return resp, err
}
