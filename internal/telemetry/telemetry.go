// Package telemetry wires OpenTelemetry tracing to an OTLP/HTTP collector.
//
// When no endpoint is configured the global no-op provider stays in place and [Tracer] spans cost nothing.
package telemetry

import (
	"context"
	"fmt"

	"github.com/desertthunder/playrec/internal/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/desertthunder/playrec"

// Tracer returns the package-wide tracer from the global provider.
func Tracer() oteltrace.Tracer {
	return otel.Tracer(instrumentationName)
}

// Provider owns the SDK tracer provider installed by [Setup].
type Provider struct {
	tp *sdktrace.TracerProvider
}

// Setup installs a batching OTLP/HTTP tracer provider as the global provider.
//
// Returns a nil *Provider (safe to Shutdown) when cfg.Endpoint is empty.
func Setup(ctx context.Context, cfg shared.TelemetryConfig) (*Provider, error) {
	if cfg.Endpoint == "" {
		return nil, nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	name := cfg.ServiceName
	if name == "" {
		name = "playrec"
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(name),
		)),
	)
	otel.SetTracerProvider(tp)

	return &Provider{tp: tp}, nil
}

// Shutdown flushes pending spans and stops the exporter.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	return p.tp.Shutdown(ctx)
}
