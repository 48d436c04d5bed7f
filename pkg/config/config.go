// Package config loads shieldscan settings from a YAML file and turns them
// into the configs of the scanner, the web front end and the exporters.
//
// Precedence is Default(), then the file, then command-line flags applied
// by the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shieldscan/shieldscan/pkg/defaults"
	"github.com/shieldscan/shieldscan/pkg/duration"
	"github.com/shieldscan/shieldscan/pkg/httpclient"
	"github.com/shieldscan/shieldscan/pkg/probes"
	"github.com/shieldscan/shieldscan/pkg/scanner"
	"github.com/shieldscan/shieldscan/pkg/telemetry"
)

// Log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds every setting the CLI reads from a file.
type Config struct {
	HTTP      HTTP      `yaml:"http"`
	Ports     Ports     `yaml:"ports"`
	DNS       DNS       `yaml:"dns"`
	Server    Server    `yaml:"server"`
	Telemetry Telemetry `yaml:"telemetry"`
	Log       Log       `yaml:"log"`
}

// HTTP configures the client used by the form scan and the HTTP checks.
type HTTP struct {
	Timeout            duration.Duration `yaml:"timeout"`
	UserAgent          string            `yaml:"user_agent"`
	InsecureSkipVerify bool              `yaml:"insecure_skip_verify"`
	FollowRedirects    bool              `yaml:"follow_redirects"`
	Proxy              string            `yaml:"proxy"`

	// SharedClient keeps one cookie jar for every scan of the process
	SharedClient bool `yaml:"shared_client"`
}

// Ports configures the port sweep.
type Ports struct {
	First       int               `yaml:"first"`
	Last        int               `yaml:"last"`
	Timeout     duration.Duration `yaml:"timeout"`
	Concurrency int               `yaml:"concurrency"`
	Rate        float64           `yaml:"rate"`
}

// DNS configures host resolution.
type DNS struct {
	Timeout    duration.Duration `yaml:"timeout"`
	Nameserver string            `yaml:"nameserver"`
}

// Server configures the web front end.
type Server struct {
	Listen  string `yaml:"listen"`
	Metrics bool   `yaml:"metrics"`
}

// Telemetry configures trace export.
type Telemetry struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	Insecure     bool   `yaml:"insecure"`
}

// Log configures the process logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		HTTP: HTTP{
			Timeout:            duration.Duration(duration.HTTPDefault),
			UserAgent:          defaults.UAChrome103,
			InsecureSkipVerify: true,
			FollowRedirects:    true,
			SharedClient:       true,
		},
		Ports: Ports{
			First:       defaults.PortFirst,
			Last:        defaults.PortLast,
			Timeout:     duration.Duration(duration.PortConnect),
			Concurrency: defaults.ConcurrencyPorts,
			Rate:        defaults.PortRate,
		},
		DNS: DNS{
			Timeout: duration.Duration(duration.DNSLookup),
		},
		Server: Server{
			Listen:  defaults.ListenAddr,
			Metrics: true,
		},
		Log: Log{
			Level:  "info",
			Format: FormatText,
		},
	}
}

// Load reads path over the defaults. An empty path returns Default().
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var problems []string
	if c.Ports.First < 1 || c.Ports.Last > defaults.PortMax || c.Ports.First > c.Ports.Last {
		problems = append(problems, fmt.Sprintf("ports: range %d-%d outside 1-%d", c.Ports.First, c.Ports.Last, defaults.PortMax))
	}
	if c.Ports.Concurrency < defaults.ConcurrencyMinimal {
		problems = append(problems, fmt.Sprintf("ports.concurrency: %d below %d", c.Ports.Concurrency, defaults.ConcurrencyMinimal))
	}
	if c.Ports.Rate < 0 {
		problems = append(problems, "ports.rate: negative")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Log.Format != FormatText && c.Log.Format != FormatJSON {
		problems = append(problems, fmt.Sprintf("log.format: %q is not %q or %q", c.Log.Format, FormatText, FormatJSON))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// Scanner converts the settings into a scanner.Config. Logger is passed
// through to every component.
func (c *Config) Scanner(logger *slog.Logger) scanner.Config {
	hc := httpclient.DefaultConfig()
	hc.Timeout = c.HTTP.Timeout.Std()
	hc.UserAgent = c.HTTP.UserAgent
	hc.InsecureSkipVerify = c.HTTP.InsecureSkipVerify
	hc.FollowRedirects = c.HTTP.FollowRedirects
	hc.Proxy = c.HTTP.Proxy
	hc.Logger = logger

	return scanner.Config{
		HTTP:         hc,
		SharedClient: c.HTTP.SharedClient,
		Ports: probes.PortConfig{
			First:       c.Ports.First,
			Last:        c.Ports.Last,
			Timeout:     c.Ports.Timeout.Std(),
			Concurrency: c.Ports.Concurrency,
			Rate:        c.Ports.Rate,
			Logger:      logger,
		},
		DNS: probes.DNSConfig{
			Timeout:    c.DNS.Timeout.Std(),
			Nameserver: c.DNS.Nameserver,
			Logger:     logger,
		},
		Logger: logger,
	}
}

// TelemetryOptions converts the telemetry section.
func (c *Config) TelemetryOptions() telemetry.Options {
	return telemetry.Options{
		Endpoint:    c.Telemetry.OTLPEndpoint,
		Insecure:    c.Telemetry.Insecure,
		ServiceName: defaults.ToolName,
	}
}

// ParseLevel maps "debug", "info", "warn" or "error" to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level: %q is not a level", s)
	}
	return l, nil
}

// NewLogger builds the process logger writing to w.
func (l Log) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := ParseLevel(l.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	opts := &slog.HandlerOptions{Level: level}
	switch l.Format {
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case FormatText, "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("%w: log.format %q", ErrInvalidConfig, l.Format)
	}
}
