// Package duration provides the canonical time constants for shieldscan and
// a tolerant parser for durations read from config files.
//
// Usage:
//
//	client := httpclient.New(httpclient.Config{Timeout: duration.HTTPDefault})
//	d, err := duration.Parse("1500ms")
//
// Timeout fields outside this package reference these constants instead of
// literal `N * time.Second` expressions (enforced by duration_test.go).
package duration

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ============================================================================
// HTTP CLIENT TIMEOUTS
// ============================================================================

const (
	// HTTPDefault is the total request timeout of the shared client (30s)
	HTTPDefault = 30 * time.Second

	// HTTPDial is the TCP connect timeout used by the HTTP transport (10s)
	HTTPDial = 10 * time.Second

	// HTTPTLSHandshake bounds the TLS handshake (10s)
	HTTPTLSHandshake = 10 * time.Second

	// HTTPIdleConn is how long pooled connections stay idle (90s)
	HTTPIdleConn = 90 * time.Second

	// HTTPKeepAlive is the TCP keep-alive period (30s)
	HTTPKeepAlive = 30 * time.Second

	// HTTPExpectContinue bounds the wait for a 100-continue (1s)
	HTTPExpectContinue = 1 * time.Second
)

// ============================================================================
// SOCKET CHECKS
// ============================================================================

const (
	// PortConnect is the per-port connect timeout of the port sweep (1s)
	PortConnect = 1 * time.Second

	// DNSLookup bounds a single forward or reverse lookup (5s)
	DNSLookup = 5 * time.Second
)

// ============================================================================
// SERVER TIMEOUTS
// ============================================================================

const (
	// ServerReadHeader protects the front end against slowloris (10s)
	ServerReadHeader = 10 * time.Second

	// ServerIdle releases idle keep-alive connections (60s)
	ServerIdle = 60 * time.Second

	// ServerShutdown is the graceful drain window on SIGINT/SIGTERM (15s)
	ServerShutdown = 15 * time.Second

	// TelemetryShutdown bounds the span exporter flush (5s)
	TelemetryShutdown = 5 * time.Second

	// TelemetryConnect bounds the OTLP exporter setup (10s)
	TelemetryConnect = 10 * time.Second
)

// Parse accepts either a Go duration string ("1s", "250ms") or a bare
// number of seconds ("30", "0.5").
func Parse(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("duration: empty value")
	}
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("duration: negative value %q", s)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("duration: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("duration: negative value %q", s)
	}
	return d, nil
}

// Duration is a time.Duration that unmarshals from YAML via Parse.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }
