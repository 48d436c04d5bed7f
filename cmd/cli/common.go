package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/shieldscan/shieldscan/pkg/config"
	"github.com/shieldscan/shieldscan/pkg/metrics"
	"github.com/shieldscan/shieldscan/pkg/scanner"
	"github.com/shieldscan/shieldscan/pkg/telemetry"
)

// commonFlags are accepted by every long-running command.
type commonFlags struct {
	configPath string
	logLevel   string
	logFormat  string
	otlp       string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", envOrDefault("SHIELDSCAN_CONFIG", ""), "YAML config file (env SHIELDSCAN_CONFIG)")
	fs.StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn, error (default from config: info)")
	fs.StringVar(&c.logFormat, "log-format", "", "Log format: text or json (default from config: text)")
	fs.StringVar(&c.otlp, "otlp-endpoint", envOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""), "OTLP/gRPC endpoint for traces (e.g. localhost:4317)")
}

// env is what a command needs to run scans.
type env struct {
	cfg       *config.Config
	logger    *slog.Logger
	metrics   *metrics.Metrics
	telemetry *telemetry.Provider
	scanner   *scanner.Scanner
}

// setup loads config, applies flag overrides through override, and builds
// the logger, exporters and scanner. logs receives the process log.
func setup(ctx context.Context, c commonFlags, logs io.Writer, withMetrics bool, override func(*config.Config)) (*env, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}
	if c.logFormat != "" {
		cfg.Log.Format = c.logFormat
	}
	if c.otlp != "" {
		cfg.Telemetry.OTLPEndpoint = c.otlp
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := cfg.Log.NewLogger(logs)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	e := &env{cfg: cfg, logger: logger}
	if withMetrics && cfg.Server.Metrics {
		if e.metrics, err = metrics.New(); err != nil {
			return nil, err
		}
	}

	if e.telemetry, err = telemetry.Setup(ctx, cfg.TelemetryOptions()); err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	sc := cfg.Scanner(logger)
	sc.Metrics = e.metrics
	sc.Tracer = e.telemetry.Tracer()
	e.scanner = scanner.New(sc)
	return e, nil
}

// close flushes the trace exporter.
func (e *env) close(ctx context.Context) {
	if err := e.telemetry.Shutdown(context.WithoutCancel(ctx)); err != nil {
		e.logger.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
	}
}

// envOrDefault returns the environment variable value if set, otherwise the default.
func envOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
