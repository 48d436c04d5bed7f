// Package telemetry exports scan traces to an OpenTelemetry collector over
// OTLP/gRPC. Without an endpoint it hands out a no-op tracer.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/shieldscan/shieldscan/pkg/defaults"
	"github.com/shieldscan/shieldscan/pkg/duration"
)

// InstrumentationName names the tracer scans are recorded with.
const InstrumentationName = "github.com/shieldscan/shieldscan/pkg/scanner"

// Options configures the exporter.
type Options struct {
	// Endpoint is the OTLP gRPC endpoint (e.g. "localhost:4317"); empty disables tracing
	Endpoint string

	// Insecure disables TLS to the collector
	Insecure bool

	// ServiceName is reported as service.name (default: "shieldscan")
	ServiceName string

	// Headers are sent with every export
	Headers map[string]string

	// ConnectTimeout bounds exporter setup (default: 10s)
	ConnectTimeout time.Duration

	// ShutdownTimeout bounds the final flush (default: 5s)
	ShutdownTimeout time.Duration
}

// Provider owns the tracer provider for the process.
type Provider struct {
	tp              *sdktrace.TracerProvider
	tracer          trace.Tracer
	shutdownTimeout time.Duration
}

// Setup builds the exporter and installs the provider globally. An empty
// endpoint returns a Provider whose tracer records nothing.
func Setup(ctx context.Context, opts Options) (*Provider, error) {
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = duration.TelemetryShutdown
	}
	if opts.Endpoint == "" {
		return &Provider{
			tracer:          noop.NewTracerProvider().Tracer(InstrumentationName),
			shutdownTimeout: opts.ShutdownTimeout,
		}, nil
	}
	if opts.ServiceName == "" {
		opts.ServiceName = defaults.ToolName
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = duration.TelemetryConnect
	}

	exporterOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(opts.Endpoint)}
	if opts.Insecure {
		exporterOpts = append(exporterOpts,
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		)
	}
	if len(opts.Headers) > 0 {
		exporterOpts = append(exporterOpts, otlptracegrpc.WithHeaders(opts.Headers))
	}

	cctx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()

	exporter, err := otlptracegrpc.New(cctx, exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("telemetry: otlp exporter: %w", err)
	}

	p := NewProvider(exporter, opts.ServiceName)
	p.shutdownTimeout = opts.ShutdownTimeout
	otel.SetTracerProvider(p.tp)
	return p, nil
}

// NewProvider builds a batching provider around exporter without touching
// the global provider.
func NewProvider(exporter sdktrace.SpanExporter, serviceName string) *Provider {
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(defaults.Version),
		attribute.String("service.component", "scanner"),
	)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	return &Provider{
		tp:              tp,
		tracer:          tp.Tracer(InstrumentationName),
		shutdownTimeout: duration.TelemetryShutdown,
	}
}

// Tracer returns the scan tracer.
func (p *Provider) Tracer() trace.Tracer {
	if p == nil {
		return noop.NewTracerProvider().Tracer(InstrumentationName)
	}
	return p.tracer
}

// Enabled reports whether spans are exported.
func (p *Provider) Enabled() bool {
	return p != nil && p.tp != nil
}

// Flush exports every span ended so far.
func (p *Provider) Flush(ctx context.Context) error {
	if !p.Enabled() {
		return nil
	}
	return p.tp.ForceFlush(ctx)
}

// Shutdown flushes pending spans and stops the exporter.
func (p *Provider) Shutdown(ctx context.Context) error {
	if !p.Enabled() {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, p.shutdownTimeout)
	defer cancel()
	return p.tp.Shutdown(ctx)
}
