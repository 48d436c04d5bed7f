// Package metrics exposes scan counters and check latencies for Prometheus.
//
// A nil *Metrics is valid and records nothing, so library callers that do
// not serve /metrics can pass nil.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shieldscan/shieldscan/pkg/defaults"
	"github.com/shieldscan/shieldscan/pkg/finding"
)

// Scan outcomes used as the "outcome" label.
const (
	OutcomeCompleted  = "completed"
	OutcomeVulnerable = "vulnerable"
	OutcomeRejected   = "rejected"
)

// Metrics holds the scanner's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	scansTotal    *prometheus.CounterVec
	findingsTotal *prometheus.CounterVec
	checkFailures *prometheus.CounterVec

	scansInFlight prometheus.Gauge

	checkDuration *prometheus.HistogramVec
	scanDuration  prometheus.Histogram
}

// New creates and registers every collector.
func New() (*Metrics, error) {
	ns := defaults.ToolName
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		scansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "scans_total",
				Help:      "Scans run, by outcome",
			},
			[]string{"outcome"},
		),
		findingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "findings_total",
				Help:      "Finding lines reported, by category",
			},
			[]string{"category"},
		),
		checkFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "check_failures_total",
				Help:      "Checks that could not complete, by category",
			},
			[]string{"category"},
		),
		scansInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: ns,
				Name:      "scans_in_flight",
				Help:      "Scans currently running",
			},
		),
		checkDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "check_duration_seconds",
				Help:      "Time spent in each check",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 300},
			},
			[]string{"category"},
		),
		scanDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "scan_duration_seconds",
				Help:      "Time spent per full scan",
				Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600, 1200},
			},
		),
	}

	for _, c := range []prometheus.Collector{
		m.scansTotal, m.findingsTotal, m.checkFailures,
		m.scansInFlight, m.checkDuration, m.scanDuration,
	} {
		if err := m.registry.Register(c); err != nil {
			return nil, fmt.Errorf("metrics: register: %w", err)
		}
	}
	return m, nil
}

// Handler serves the registry in Prometheus or OpenMetrics format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ScanStarted marks a scan as in flight.
func (m *Metrics) ScanStarted() {
	if m == nil {
		return
	}
	m.scansInFlight.Inc()
}

// ScanFinished records a finished or rejected scan.
func (m *Metrics) ScanFinished(outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.scansInFlight.Dec()
	m.scansTotal.WithLabelValues(outcome).Inc()
	if outcome != OutcomeRejected {
		m.scanDuration.Observe(took.Seconds())
	}
}

// ObserveCheck records one check's result.
func (m *Metrics) ObserveCheck(res finding.Result, took time.Duration) {
	if m == nil {
		return
	}
	cat := string(res.Category)
	m.checkDuration.WithLabelValues(cat).Observe(took.Seconds())
	m.findingsTotal.WithLabelValues(cat).Add(float64(len(res.Findings)))
	if res.Failed() {
		m.checkFailures.WithLabelValues(cat).Inc()
	}
}
