package probes

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/shieldscan/shieldscan/pkg/finding"
	"github.com/shieldscan/shieldscan/pkg/iohelper"
	"github.com/shieldscan/shieldscan/pkg/target"
)

// CookieAuditor lists the cookies the target sets.
type CookieAuditor struct {
	client *http.Client
	logger *slog.Logger
}

// NewCookieAuditor creates a CookieAuditor.
func NewCookieAuditor(cfg HTTPConfig) *CookieAuditor {
	return &CookieAuditor{client: cfg.client(), logger: orDefault(cfg.Logger)}
}

// Category implements Check.
func (a *CookieAuditor) Category() finding.Category { return finding.Cookies }

// Run implements Check.
func (a *CookieAuditor) Run(ctx context.Context, t target.Target) finding.Result {
	return a.Audit(ctx, t.URL)
}

// Audit fetches pageURL and reports each cookie set by the final response
// as "name: value".
func (a *CookieAuditor) Audit(ctx context.Context, pageURL string) finding.Result {
	res := finding.NewResult(finding.Cookies)

	resp, err := get(ctx, a.client, pageURL)
	if err != nil {
		res.Fail(err, "Error checking cookies: "+err.Error())
		return res
	}
	defer iohelper.DrainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		res.Fail(notFetched(pageURL, resp.StatusCode), "Failed to fetch cookies.")
		return res
	}

	cookies := resp.Cookies()
	if len(cookies) == 0 {
		res.Add("No cookies found.")
		return res
	}
	res.Add("Cookies found:")
	for _, c := range cookies {
		res.Addf("%s: %s", c.Name, c.Value)
	}
	a.logger.Debug("cookies audited", slog.String("url", pageURL), slog.Int("cookies", len(cookies)))
	return res
}
