// Package probes implements the auxiliary checks of a scan: port sweep,
// host resolution, robots.txt, technology fingerprint, security headers
// and cookies.
//
// Every check reports through a finding.Result and never returns an error;
// failures become a finding line plus Result.Err.
package probes

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/shieldscan/shieldscan/pkg/finding"
	"github.com/shieldscan/shieldscan/pkg/httpclient"
	"github.com/shieldscan/shieldscan/pkg/target"
)

// Check is one auxiliary check.
type Check interface {
	// Category is the report section the check fills.
	Category() finding.Category

	// Run checks t. HTTP checks use t.URL, socket checks t.Host.
	Run(ctx context.Context, t target.Target) finding.Result
}

// Resolver is the subset of *net.Resolver the socket checks need.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
	LookupAddr(ctx context.Context, addr string) ([]string, error)
}

// HTTPConfig is shared by the HTTP-based checks.
type HTTPConfig struct {
	// Client fetches the target (default: httpclient.Default())
	Client *http.Client

	Logger *slog.Logger
}

func (c HTTPConfig) client() *http.Client {
	if c.Client != nil {
		return c.Client
	}
	return httpclient.Default()
}

// get issues a plain GET for rawURL.
func get(ctx context.Context, client *http.Client, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, httpclient.Classify(err)
	}
	return resp, nil
}

// hostname drops the port and IPv6 brackets from a bare host so it can be
// resolved. A host without a port is returned unchanged.
func hostname(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
}

// firstIPv4 picks the first IPv4 address, or the first address when the
// host has none.
func firstIPv4(addrs []net.IPAddr) net.IP {
	for _, a := range addrs {
		if v4 := a.IP.To4(); v4 != nil {
			return v4
		}
	}
	if len(addrs) > 0 {
		return addrs[0].IP
	}
	return nil
}

func orDefault(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}
