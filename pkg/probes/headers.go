package probes

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/shieldscan/shieldscan/pkg/finding"
	"github.com/shieldscan/shieldscan/pkg/iohelper"
	"github.com/shieldscan/shieldscan/pkg/target"
)

// RequiredSecurityHeaders are audited in this order.
var RequiredSecurityHeaders = []string{
	"X-Frame-Options",
	"X-XSS-Protection",
	"X-Content-Type-Options",
}

// HeaderAuditor reports required security headers the target omits.
type HeaderAuditor struct {
	client *http.Client
	logger *slog.Logger
}

// NewHeaderAuditor creates a HeaderAuditor.
func NewHeaderAuditor(cfg HTTPConfig) *HeaderAuditor {
	return &HeaderAuditor{client: cfg.client(), logger: orDefault(cfg.Logger)}
}

// Category implements Check.
func (a *HeaderAuditor) Category() finding.Category { return finding.SecurityHeaders }

// Run implements Check.
func (a *HeaderAuditor) Run(ctx context.Context, t target.Target) finding.Result {
	return a.Audit(ctx, t.URL)
}

// MissingHeaders returns the required headers absent from h. A header sent
// with an empty value counts as present.
func MissingHeaders(h http.Header) []string {
	var missing []string
	for _, name := range RequiredSecurityHeaders {
		if _, ok := h[http.CanonicalHeaderKey(name)]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Audit fetches pageURL and reports each missing header.
func (a *HeaderAuditor) Audit(ctx context.Context, pageURL string) finding.Result {
	res := finding.NewResult(finding.SecurityHeaders)

	resp, err := get(ctx, a.client, pageURL)
	if err != nil {
		res.Fail(err, "Error checking security headers: "+err.Error())
		return res
	}
	defer iohelper.DrainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		res.Fail(notFetched(pageURL, resp.StatusCode), "Failed to fetch security headers.")
		return res
	}

	missing := MissingHeaders(resp.Header)
	a.logger.Debug("security headers audited", slog.String("url", pageURL), slog.Any("missing", missing))
	for _, name := range missing {
		res.Addf("Missing %s header.", name)
	}
	if len(missing) == 0 {
		res.Add("All required security headers present.")
	}
	return res
}
