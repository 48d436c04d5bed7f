// Package scanner runs every check of a scan against one target and
// collects their results into a finding.Report.
//
// Checks are registered with a Dispatcher and executed one after another in
// registration order, which New fixes to the finding category order: the
// form injection check first, then the six auxiliary checks.
package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/shieldscan/shieldscan/pkg/finding"
	"github.com/shieldscan/shieldscan/pkg/httpclient"
	"github.com/shieldscan/shieldscan/pkg/metrics"
	"github.com/shieldscan/shieldscan/pkg/probes"
	"github.com/shieldscan/shieldscan/pkg/sqli"
	"github.com/shieldscan/shieldscan/pkg/target"
)

// Check is one section of a scan. Both sqli.Scanner and every auxiliary check
// implement it.
type Check interface {
	Category() finding.Category
	Run(ctx context.Context, t target.Target) finding.Result
}

// Dispatcher holds checks keyed by category.
type Dispatcher struct {
	checks map[finding.Category]Check
	order  []finding.Category // registration order, used for execution
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{checks: make(map[finding.Category]Check)}
}

// Register adds c under its category. Registering a category twice
// replaces the check but keeps its original position.
func (d *Dispatcher) Register(c Check) {
	cat := c.Category()
	if _, exists := d.checks[cat]; !exists {
		d.order = append(d.order, cat)
	}
	d.checks[cat] = c
}

// Categories returns the registered categories in registration order.
func (d *Dispatcher) Categories() []finding.Category {
	out := make([]finding.Category, len(d.order))
	copy(out, d.order)
	return out
}

// Get returns the check for c, or nil.
func (d *Dispatcher) Get(c finding.Category) Check {
	return d.checks[c]
}

// Count returns the number of registered checks.
func (d *Dispatcher) Count() int {
	return len(d.checks)
}

// Config configures a Scanner.
type Config struct {
	// HTTP configures the clients built by the scanner
	HTTP httpclient.Config

	// SharedClient reuses one client and cookie jar for every scan. When
	// false each Run builds its own client and jar.
	SharedClient bool

	// Client, when set, is the shared client (implies SharedClient)
	Client *http.Client

	Ports probes.PortConfig
	DNS   probes.DNSConfig

	// Metrics may be nil
	Metrics *metrics.Metrics

	// Tracer records one span per scan and one per check (default: no-op)
	Tracer trace.Tracer

	Logger *slog.Logger
}

// DefaultConfig returns a configuration with a shared client and the
// default check settings.
func DefaultConfig() Config {
	return Config{
		HTTP:         httpclient.DefaultConfig(),
		SharedClient: true,
		Ports:        probes.DefaultPortConfig(),
	}
}

// Scanner runs scans.
type Scanner struct {
	cfg      Config
	shared   *http.Client
	resolver probes.Resolver
	tracer   trace.Tracer
	logger   *slog.Logger
}

// New creates a Scanner.
func New(cfg Config) *Scanner {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.HTTP.Logger == nil {
		cfg.HTTP.Logger = logger
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}

	s := &Scanner{cfg: cfg, tracer: tracer, logger: logger}
	switch {
	case cfg.Client != nil:
		s.shared = cfg.Client
	case cfg.SharedClient:
		hc := cfg.HTTP
		if hc.Jar == nil {
			hc.Jar = httpclient.NewJar()
		}
		s.shared = httpclient.New(hc)
	}

	// The port sweep and the host lookup share one resolver unless the
	// caller injected its own.
	switch {
	case cfg.DNS.Resolver != nil:
		s.resolver = cfg.DNS.Resolver
	case cfg.Ports.Resolver != nil:
		s.resolver = cfg.Ports.Resolver
	default:
		s.resolver = probes.NewResolver(cfg.DNS.Timeout, cfg.DNS.Nameserver)
	}
	return s
}

// client returns the client for one scan.
func (s *Scanner) client() *http.Client {
	if s.shared != nil {
		return s.shared
	}
	hc := s.cfg.HTTP
	hc.Jar = httpclient.NewJar()
	return httpclient.New(hc)
}

// Dispatcher builds the checks of one scan around client, in report order.
func (s *Scanner) Dispatcher(client *http.Client) *Dispatcher {
	httpCfg := probes.HTTPConfig{Client: client, Logger: s.logger}

	ports := s.cfg.Ports
	if ports.Resolver == nil {
		ports.Resolver = s.resolver
	}
	if ports.Logger == nil {
		ports.Logger = s.logger
	}
	dns := s.cfg.DNS
	if dns.Resolver == nil {
		dns.Resolver = s.resolver
	}
	if dns.Logger == nil {
		dns.Logger = s.logger
	}

	d := NewDispatcher()
	d.Register(sqli.NewScanner(sqli.Config{Client: client, Logger: s.logger}))
	d.Register(probes.NewPortScanner(ports))
	d.Register(probes.NewDNSLookup(dns))
	d.Register(probes.NewRobotsReader(httpCfg))
	d.Register(probes.NewTechDetector(httpCfg))
	d.Register(probes.NewHeaderAuditor(httpCfg))
	d.Register(probes.NewCookieAuditor(httpCfg))
	return d
}

// Run scans rawURL. A URL without a "//" scheme separator aborts the scan
// with target.ErrNoSchemeSeparator and no report; every other failure is
// reported inside the affected category.
func (s *Scanner) Run(ctx context.Context, rawURL string) (*finding.Report, error) {
	start := time.Now()
	s.cfg.Metrics.ScanStarted()

	t, err := target.Parse(rawURL)
	if err != nil {
		s.cfg.Metrics.ScanFinished(metrics.OutcomeRejected, time.Since(start))
		s.logger.Warn("scan rejected", slog.String("target", rawURL), slog.String("error", err.Error()))
		return nil, err
	}

	id := uuid.NewString()
	ctx, span := s.tracer.Start(ctx, "shieldscan.scan",
		trace.WithAttributes(
			attribute.String("scan.id", id),
			attribute.String("scan.target", t.URL),
			attribute.String("scan.host", t.Host),
		))
	defer span.End()

	logger := s.logger.With(slog.String("scan_id", id))
	d := s.Dispatcher(s.client())
	logger.Info("scan started",
		slog.String("target", t.URL),
		slog.String("host", t.Host),
		slog.Int("checks", d.Count()))

	report := finding.NewReport(id, t.URL, t.Host)
	for _, cat := range d.Categories() {
		report.Add(s.runCheck(ctx, logger, d.Get(cat), t))
	}
	report.Finish()

	outcome := metrics.OutcomeCompleted
	if report.Vulnerable() {
		outcome = metrics.OutcomeVulnerable
	}
	took := time.Since(start)
	s.cfg.Metrics.ScanFinished(outcome, took)

	span.SetAttributes(
		attribute.Int("scan.findings", report.Count()),
		attribute.Bool("scan.vulnerable", report.Vulnerable()),
	)
	if failed := report.Failures(); len(failed) > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d checks failed", len(failed)))
	}

	logger.Info("scan finished",
		slog.String("target", t.URL),
		slog.String("outcome", outcome),
		slog.Int("findings", report.Count()),
		slog.Duration("took", took),
	)
	return report, nil
}

func (s *Scanner) runCheck(ctx context.Context, logger *slog.Logger, c Check, t target.Target) finding.Result {
	cat := c.Category()
	ctx, span := s.tracer.Start(ctx, "shieldscan.check",
		trace.WithAttributes(attribute.String("check.category", string(cat))))
	defer span.End()

	start := time.Now()
	res := c.Run(ctx, t)
	took := time.Since(start)
	res.Category = cat
	res.Took(took)
	s.cfg.Metrics.ObserveCheck(res, took)

	span.SetAttributes(attribute.Int("check.findings", len(res.Findings)))
	attrs := []any{
		slog.String("category", string(cat)),
		slog.Int("findings", len(res.Findings)),
		slog.Duration("took", took),
	}
	if res.Failed() {
		span.SetStatus(codes.Error, res.Error)
		if res.Err != nil {
			span.RecordError(res.Err)
		}
		logger.Warn("check failed", append(attrs, slog.String("error", res.Error))...)
	} else {
		logger.Debug("check finished", attrs...)
	}
	return res
}
