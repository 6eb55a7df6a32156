// Package tracing exports spans over OTLP/HTTP when an endpoint is
// configured. Without one every span is a no-op.
package tracing

import (
	"context"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"linolayout/internal/config"
)

const (
	instrumentationName = "linolayout"
	envEndpoint         = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envTracesEndpoint   = "OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"
)

// Attribute keys of layout spans.
const (
	LayoutKey   = attribute.Key("linolayout.layout.name")
	RendererKey = attribute.Key("linolayout.renderer")
	SourceKey   = attribute.Key("linolayout.source")
	FileKey     = attribute.Key("linolayout.catalog.file")
)

// Provider owns the tracer provider. The zero value and a nil *Provider
// trace nothing.
type Provider struct {
	provider *sdktrace.TracerProvider
	tracer   oteltrace.Tracer
}

// New returns a provider exporting to cfg.Endpoint, or to the endpoint of
// the standard OTEL_EXPORTER_OTLP_ENDPOINT variables. Without either it
// returns a no-op provider.
func New(ctx context.Context, cfg config.TracingConfig) (*Provider, error) {
	var opts []otlptracehttp.Option
	switch {
	case cfg.Endpoint != "":
		opts = append(opts, otlptracehttp.WithEndpoint(cfg.Endpoint))
	case os.Getenv(envEndpoint) != "" || os.Getenv(envTracesEndpoint) != "":
		// the exporter reads the variables itself
	default:
		return &Provider{}, nil
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return newProvider(cfg.ServiceName, sdktrace.WithBatcher(exporter)), nil
}

// NewWithProcessor returns a provider feeding sp, e.g. a span recorder.
func NewWithProcessor(serviceName string, sp sdktrace.SpanProcessor) *Provider {
	return newProvider(serviceName, sdktrace.WithSpanProcessor(sp))
}

func newProvider(serviceName string, opts ...sdktrace.TracerProviderOption) *Provider {
	if serviceName == "" {
		serviceName = instrumentationName
	}
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
	)
	tp := sdktrace.NewTracerProvider(append(opts, sdktrace.WithResource(res))...)
	return &Provider{provider: tp, tracer: tp.Tracer(instrumentationName)}
}

// Enabled reports whether spans are exported.
func (p *Provider) Enabled() bool {
	return p != nil && p.provider != nil
}

// Tracer returns the tracer, a no-op one when disabled.
func (p *Provider) Tracer() oteltrace.Tracer {
	if !p.Enabled() {
		return noop.NewTracerProvider().Tracer(instrumentationName)
	}
	return p.tracer
}

// Start starts a span carrying attrs.
func (p *Provider) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, oteltrace.Span) {
	return p.Tracer().Start(ctx, name, oteltrace.WithAttributes(attrs...))
}

// End records err on span, if any, and ends it.
func End(span oteltrace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Shutdown flushes pending spans.
func (p *Provider) Shutdown(ctx context.Context) error {
	if !p.Enabled() {
		return nil
	}
	return p.provider.Shutdown(ctx)
}
