// Package defaults provides canonical default values for shieldscan.
// This is the single source of truth for runtime configuration defaults.
//
// Usage:
//
//	cfg.Concurrency = defaults.ConcurrencyPorts
//	req.Header.Set("Content-Type", defaults.ContentTypeForm)
//
// Literal tuning values belong here, not at call sites.
package defaults

// Version is the current shieldscan version
const Version = "1.3.0"

// ToolName is the canonical tool name used in banners, metrics and spans
const ToolName = "shieldscan"

// ============================================================================
// CONCURRENCY SETTINGS
// ============================================================================

const (
	// ConcurrencyMinimal is for strictly sequential work (1)
	ConcurrencyMinimal = 1

	// ConcurrencyPorts is the number of parallel connect attempts in the port sweep (100)
	ConcurrencyPorts = 100
)

// ============================================================================
// PORT SWEEP
// ============================================================================

const (
	// PortFirst is the first port dialed by the sweep (1)
	PortFirst = 1

	// PortLast is the last port dialed by the sweep (1024)
	PortLast = 1024

	// PortMax is the highest valid TCP port (65535)
	PortMax = 65535

	// PortRate is the sweep's connect attempts per second, 0 disables throttling
	PortRate = 0
)

// ============================================================================
// BUFFER SIZES
// ============================================================================

const (
	// BufferMax is the maximum response body read by any check (10MB)
	BufferMax = 10 * 1024 * 1024
)

// ============================================================================
// CONTENT TYPES
// ============================================================================

const (
	// ContentTypeJSON is application/json
	ContentTypeJSON = "application/json"

	// ContentTypeForm is application/x-www-form-urlencoded
	ContentTypeForm = "application/x-www-form-urlencoded"

	// ContentTypeHTML is text/html
	ContentTypeHTML = "text/html; charset=utf-8"

	// ContentTypeMarkdown is text/markdown
	ContentTypeMarkdown = "text/markdown; charset=utf-8"

	// ContentTypePlain is text/plain
	ContentTypePlain = "text/plain; charset=utf-8"
)

// ============================================================================
// USER AGENTS
// ============================================================================

const (
	// UAChrome103 is the desktop Chrome identity every outbound request carries
	UAChrome103 = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/103.0.0.0 Safari/537.36"

	// UAMinimal identifies the tool itself
	UAMinimal = "shieldscan/" + Version
)

// ============================================================================
// HTTP LIMITS
// ============================================================================

const (
	// MaxRedirects is the maximum number of redirects to follow
	MaxRedirects = 10

	// MaxIdleConns is the transport's idle pool size
	MaxIdleConns = 100

	// MaxIdleConnsPerHost is the transport's per-host idle pool size
	MaxIdleConnsPerHost = 10
)

// ============================================================================
// SERVER
// ============================================================================

const (
	// ListenAddr is the default web front end address
	ListenAddr = ":5000"

	// MetricsPath is where Prometheus metrics are exposed
	MetricsPath = "/metrics"
)
