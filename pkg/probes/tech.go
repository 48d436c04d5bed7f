package probes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/shieldscan/shieldscan/pkg/finding"
	"github.com/shieldscan/shieldscan/pkg/iohelper"
	"github.com/shieldscan/shieldscan/pkg/target"
)

// TechDetector reports the Server header of the target.
type TechDetector struct {
	client *http.Client
	logger *slog.Logger
}

// NewTechDetector creates a TechDetector.
func NewTechDetector(cfg HTTPConfig) *TechDetector {
	return &TechDetector{client: cfg.client(), logger: orDefault(cfg.Logger)}
}

// Category implements Check.
func (p *TechDetector) Category() finding.Category { return finding.Technology }

// Run implements Check.
func (p *TechDetector) Run(ctx context.Context, t target.Target) finding.Result {
	return p.Fingerprint(ctx, t.URL)
}

// Fingerprint fetches pageURL and reports its Server header.
func (p *TechDetector) Fingerprint(ctx context.Context, pageURL string) finding.Result {
	res := finding.NewResult(finding.Technology)

	resp, err := get(ctx, p.client, pageURL)
	if err != nil {
		res.Fail(err, "Error getting technology details: "+err.Error())
		return res
	}
	defer iohelper.DrainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		res.Fail(notFetched(pageURL, resp.StatusCode), "Failed to fetch technology details.")
		return res
	}

	server := resp.Header.Get("Server")
	p.logger.Debug("technology fingerprinted", slog.String("url", pageURL), slog.String("server", server))
	if server != "" {
		res.Addf("Server: %s", server)
	} else {
		res.Add("Server header not found.")
	}
	return res
}

func notFetched(pageURL string, status int) error {
	return fmt.Errorf("%w: %s returned %d", finding.ErrNotFetched, pageURL, status)
}
