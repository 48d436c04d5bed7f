// Package httpclient builds the HTTP client every shieldscan check uses:
// a fixed browser identity, relaxed certificate checks, a persistent
// cookie jar and requests-style redirect following.
package httpclient

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/shieldscan/shieldscan/pkg/defaults"
	"github.com/shieldscan/shieldscan/pkg/duration"
)

// Config holds HTTP client configuration options.
type Config struct {
	// Timeout is the total request timeout (default: 30s)
	Timeout time.Duration

	// UserAgent is sent on every request (default: desktop Chrome 103)
	UserAgent string

	// InsecureSkipVerify skips TLS certificate verification (default: true)
	InsecureSkipVerify bool

	// FollowRedirects follows 3xx responses up to MaxRedirects (default: true)
	FollowRedirects bool

	// MaxRedirects caps the redirect chain (default: 10)
	MaxRedirects int

	// Proxy is an optional http, https or socks5 proxy URL
	Proxy string

	// Jar stores cookies across requests. Nil gets a fresh jar.
	Jar http.CookieJar

	// DialTimeout is the TCP connect timeout (default: 10s)
	DialTimeout time.Duration

	// TLSHandshakeTimeout bounds the TLS handshake (default: 10s)
	TLSHandshakeTimeout time.Duration

	// Logger receives one debug line per round trip
	Logger *slog.Logger
}

// DefaultConfig returns the client settings of a browser-like session.
func DefaultConfig() Config {
	return Config{
		Timeout:             duration.HTTPDefault,
		UserAgent:           defaults.UAChrome103,
		InsecureSkipVerify:  true,
		FollowRedirects:     true,
		MaxRedirects:        defaults.MaxRedirects,
		DialTimeout:         duration.HTTPDial,
		TLSHandshakeTimeout: duration.HTTPTLSHandshake,
	}
}

var (
	defaultClient *http.Client
	defaultOnce   sync.Once
)

// Default returns the process-wide client. Every caller shares its
// connection pool and cookie jar.
func Default() *http.Client {
	defaultOnce.Do(func() {
		defaultClient = New(DefaultConfig())
	})
	return defaultClient
}

// NewJar returns an empty cookie jar that honours public suffix rules.
func NewJar() http.CookieJar {
	// cookiejar.New never returns a non-nil error.
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	return jar
}

// New creates a client from cfg. Zero durations and limits take their
// defaults; a malformed proxy URL is ignored.
func New(cfg Config) *http.Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = duration.HTTPDefault
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = duration.HTTPDial
	}
	if cfg.TLSHandshakeTimeout == 0 {
		cfg.TLSHandshakeTimeout = duration.HTTPTLSHandshake
	}
	if cfg.MaxRedirects == 0 {
		cfg.MaxRedirects = defaults.MaxRedirects
	}
	if cfg.Jar == nil {
		cfg.Jar = NewJar()
	}

	dialer := &net.Dialer{
		Timeout:   cfg.DialTimeout,
		KeepAlive: duration.HTTPKeepAlive,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          defaults.MaxIdleConns,
		MaxIdleConnsPerHost:   defaults.MaxIdleConnsPerHost,
		IdleConnTimeout:       duration.HTTPIdleConn,
		TLSHandshakeTimeout:   cfg.TLSHandshakeTimeout,
		ExpectContinueTimeout: duration.HTTPExpectContinue,
		ForceAttemptHTTP2:     true,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // user-controlled flag
		},
	}

	if cfg.Proxy != "" {
		if proxyURL, err := url.Parse(cfg.Proxy); err == nil && proxyURL.Host != "" {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	var rt http.RoundTripper = transport
	if cfg.UserAgent != "" || cfg.Logger != nil {
		rt = &middlewareTransport{
			base:      transport,
			userAgent: cfg.UserAgent,
			logger:    cfg.Logger,
		}
	}

	return &http.Client{
		Transport:     rt,
		Timeout:       cfg.Timeout,
		Jar:           cfg.Jar,
		CheckRedirect: redirectPolicy(cfg.FollowRedirects, cfg.MaxRedirects),
	}
}

// redirectPolicy follows up to max hops when follow is set and otherwise
// hands the 3xx response back to the caller.
func redirectPolicy(follow bool, max int) func(*http.Request, []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if !follow {
			return http.ErrUseLastResponse
		}
		if len(via) >= max {
			return fmt.Errorf("%w: stopped after %d redirects", ErrTooManyRedirects, max)
		}
		return nil
	}
}
