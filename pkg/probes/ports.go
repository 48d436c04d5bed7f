package probes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/shieldscan/shieldscan/pkg/defaults"
	"github.com/shieldscan/shieldscan/pkg/duration"
	"github.com/shieldscan/shieldscan/pkg/finding"
	"github.com/shieldscan/shieldscan/pkg/target"
	"github.com/shieldscan/shieldscan/pkg/workerpool"
)

// ErrPortRange is returned for a sweep range outside 1-65535 or reversed.
var ErrPortRange = errors.New("probes: invalid port range")

// ErrNoAddress is returned when a host resolves to no addresses.
var ErrNoAddress = errors.New("probes: host has no address")

// PortConfig configures a PortScanner.
type PortConfig struct {
	// First and Last bound the swept range, inclusive (default: 1-1024)
	First, Last int

	// Timeout is the per-port connect timeout (default: 1s)
	Timeout time.Duration

	// Concurrency caps parallel connects (default: 100)
	Concurrency int

	// Rate caps connects per second; 0 means unlimited
	Rate float64

	// Resolver turns the host into an address (default: net.DefaultResolver)
	Resolver Resolver

	Logger *slog.Logger
}

// DefaultPortConfig returns the default sweep settings.
func DefaultPortConfig() PortConfig {
	return PortConfig{
		First:       defaults.PortFirst,
		Last:        defaults.PortLast,
		Timeout:     duration.PortConnect,
		Concurrency: defaults.ConcurrencyPorts,
		Rate:        defaults.PortRate,
	}
}

// PortScanner reports which TCP ports of a host accept connections.
type PortScanner struct {
	cfg    PortConfig
	logger *slog.Logger
}

// NewPortScanner creates a PortScanner; zero fields take their defaults.
func NewPortScanner(cfg PortConfig) *PortScanner {
	def := DefaultPortConfig()
	if cfg.First == 0 && cfg.Last == 0 {
		cfg.First, cfg.Last = def.First, def.Last
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.Resolver == nil {
		cfg.Resolver = net.DefaultResolver
	}
	return &PortScanner{cfg: cfg, logger: orDefault(cfg.Logger)}
}

// Category implements Check.
func (p *PortScanner) Category() finding.Category { return finding.OpenPorts }

// Run implements Check.
func (p *PortScanner) Run(ctx context.Context, t target.Target) finding.Result {
	return p.Sweep(ctx, t.Host)
}

// Sweep connects to every port in the range and lists the open ones in
// ascending order.
func (p *PortScanner) Sweep(ctx context.Context, host string) finding.Result {
	res := finding.NewResult(finding.OpenPorts)
	res.Addf("Scanning open ports on %s...", host)

	open, err := p.OpenPorts(ctx, host)
	for _, port := range open {
		res.Addf("Port %d: Open", port)
	}
	if err != nil {
		res.Fail(err, "Error during port scan: "+err.Error())
	}
	return res
}

// OpenPorts returns the open ports of host in ascending order. A cancelled
// context returns the ports found so far with the context error.
func (p *PortScanner) OpenPorts(ctx context.Context, host string) ([]int, error) {
	if p.cfg.First < 1 || p.cfg.Last > defaults.PortMax || p.cfg.First > p.cfg.Last {
		return nil, fmt.Errorf("%w: %d-%d", ErrPortRange, p.cfg.First, p.cfg.Last)
	}

	addrs, err := p.cfg.Resolver.LookupIPAddr(ctx, hostname(host))
	if err != nil {
		return nil, err
	}
	ip := firstIPv4(addrs)
	if ip == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoAddress, host)
	}

	ports := make([]int, 0, p.cfg.Last-p.cfg.First+1)
	for port := p.cfg.First; port <= p.cfg.Last; port++ {
		ports = append(ports, port)
	}

	var limiter *rate.Limiter
	if p.cfg.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(p.cfg.Rate), 1)
	}

	pool := workerpool.New(p.cfg.Concurrency)
	defer pool.Close()

	dialer := &net.Dialer{Timeout: p.cfg.Timeout}
	addr := ip.String()

	start := time.Now()
	open := workerpool.Filter(ctx, pool, ports, func(ctx context.Context, port int) bool {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return false
			}
		}
		conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(addr, strconv.Itoa(port)))
		if err != nil {
			return false
		}
		conn.Close()
		return true
	})

	p.logger.Debug("port sweep finished",
		slog.String("host", host),
		slog.String("ip", addr),
		slog.Int("ports", len(ports)),
		slog.Int("open", len(open)),
		slog.Duration("took", time.Since(start)))

	return open, ctx.Err()
}
