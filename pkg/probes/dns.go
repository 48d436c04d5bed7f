package probes

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/shieldscan/shieldscan/pkg/duration"
	"github.com/shieldscan/shieldscan/pkg/finding"
	"github.com/shieldscan/shieldscan/pkg/target"
)

// DNSConfig configures a DNSLookup.
type DNSConfig struct {
	// Timeout bounds each lookup (default: 5s)
	Timeout time.Duration

	// Nameserver, as host or host:port, replaces the system resolver
	Nameserver string

	// Resolver overrides both of the above
	Resolver Resolver

	Logger *slog.Logger
}

// DNSLookup resolves a host to an IP and back to a name.
type DNSLookup struct {
	timeout  time.Duration
	resolver Resolver
	logger   *slog.Logger
}

// NewDNSLookup creates a DNSLookup.
func NewDNSLookup(cfg DNSConfig) *DNSLookup {
	if cfg.Timeout == 0 {
		cfg.Timeout = duration.DNSLookup
	}
	resolver := cfg.Resolver
	if resolver == nil {
		resolver = newResolver(cfg.Timeout, cfg.Nameserver)
	}
	return &DNSLookup{timeout: cfg.Timeout, resolver: resolver, logger: orDefault(cfg.Logger)}
}

// NewResolver returns a resolver that queries nameserver when set and the
// system configuration otherwise.
func NewResolver(timeout time.Duration, nameserver string) Resolver {
	return newResolver(timeout, nameserver)
}

func newResolver(timeout time.Duration, nameserver string) *net.Resolver {
	if nameserver != "" {
		if _, _, err := net.SplitHostPort(nameserver); err != nil {
			nameserver = net.JoinHostPort(nameserver, "53")
		}
	}
	return &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
			dialer := net.Dialer{Timeout: timeout}
			if nameserver != "" {
				return dialer.DialContext(ctx, network, nameserver)
			}
			return dialer.DialContext(ctx, network, address)
		},
	}
}

// Category implements Check.
func (d *DNSLookup) Category() finding.Category { return finding.HostDetails }

// Run implements Check.
func (d *DNSLookup) Run(ctx context.Context, t target.Target) finding.Result {
	return d.Lookup(ctx, t.Host)
}

// Lookup reports the host's IP and the name that IP reverse-resolves to.
// The IP line is kept when only the reverse lookup fails.
func (d *DNSLookup) Lookup(ctx context.Context, host string) finding.Result {
	res := finding.NewResult(finding.HostDetails)
	res.Addf("Getting host details for %s...", host)

	ip, err := d.forward(ctx, host)
	if err != nil {
		res.Fail(err, "Error getting host details: "+err.Error())
		return res
	}
	res.Addf("Host IP: %s", ip)

	name, err := d.reverse(ctx, ip)
	if err != nil {
		res.Fail(err, "Error getting host details: "+err.Error())
		return res
	}
	res.Addf("Host Name: %s", name)

	d.logger.Debug("host resolved", slog.String("host", host), slog.String("ip", ip), slog.String("name", name))
	return res
}

func (d *DNSLookup) forward(ctx context.Context, host string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	addrs, err := d.resolver.LookupIPAddr(ctx, hostname(host))
	if err != nil {
		return "", err
	}
	ip := firstIPv4(addrs)
	if ip == nil {
		return "", fmt.Errorf("%w: %s", ErrNoAddress, host)
	}
	return ip.String(), nil
}

func (d *DNSLookup) reverse(ctx context.Context, ip string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	names, err := d.resolver.LookupAddr(ctx, ip)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", &net.DNSError{Err: "no PTR record", Name: ip, IsNotFound: true}
	}
	return strings.TrimSuffix(names[0], "."), nil
}
