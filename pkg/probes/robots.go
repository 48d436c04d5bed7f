package probes

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/shieldscan/shieldscan/pkg/finding"
	"github.com/shieldscan/shieldscan/pkg/iohelper"
	"github.com/shieldscan/shieldscan/pkg/regexcache"
	"github.com/shieldscan/shieldscan/pkg/target"
)

const disallowPattern = `Disallow: (.*)`

// RobotsReader lists the Disallow entries of the target's robots.txt.
type RobotsReader struct {
	client *http.Client
	logger *slog.Logger
}

// NewRobotsReader creates a RobotsReader.
func NewRobotsReader(cfg HTTPConfig) *RobotsReader {
	return &RobotsReader{client: cfg.client(), logger: orDefault(cfg.Logger)}
}

// Category implements Check.
func (p *RobotsReader) Category() finding.Category { return finding.RobotsTxt }

// Run implements Check.
func (p *RobotsReader) Run(ctx context.Context, t target.Target) finding.Result {
	return p.Check(ctx, t.URL)
}

// RobotsURL returns the robots.txt at the root of pageURL's origin.
func RobotsURL(pageURL string) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(&url.URL{Path: "/robots.txt"}).String(), nil
}

// DisallowedPaths returns every "Disallow: " value in body, in file order.
func DisallowedPaths(body string) []string {
	var paths []string
	for _, m := range regexcache.MustGet(disallowPattern).FindAllStringSubmatch(body, -1) {
		paths = append(paths, strings.TrimSuffix(m[1], "\r"))
	}
	return paths
}

// Check fetches robots.txt and reports its disallowed paths.
func (p *RobotsReader) Check(ctx context.Context, pageURL string) finding.Result {
	res := finding.NewResult(finding.RobotsTxt)

	robotsURL, err := RobotsURL(pageURL)
	if err != nil {
		res.Fail(err, "Error checking robots.txt: "+err.Error())
		return res
	}

	resp, err := get(ctx, p.client, robotsURL)
	if err != nil {
		res.Fail(err, "Error checking robots.txt: "+err.Error())
		return res
	}
	if resp.StatusCode != http.StatusOK {
		iohelper.DrainAndClose(resp.Body)
		p.logger.Debug("robots.txt absent", slog.String("url", robotsURL), slog.Int("status", resp.StatusCode))
		res.Add("robots.txt does not exist.")
		return res
	}

	res.Add("robots.txt exists. Checking for disallowed paths...")
	paths := DisallowedPaths(iohelper.ReadText(resp, p.logger))
	if len(paths) == 0 {
		res.Add("No disallowed paths found in robots.txt")
		return res
	}
	res.Add("Disallowed paths:")
	res.Add(paths...)
	return res
}
