// Package telemetry configures the global OTel providers. Every
// package-level otel.Tracer/otel.Meter call elsewhere in this module is a
// no-op until Init runs — mirrors the teacher's internal/storage/dolt
// instrumentation, which registers its meters/tracers against the global
// delegating provider at init time and only starts actually exporting
// once something calls the equivalent of Init.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Shutdown flushes and stops every provider Init started.
type Shutdown func(ctx context.Context) error

// Init wires the global MeterProvider and TracerProvider. With
// otlpEndpoint empty, metrics print to stdout (local/dev); set it to
// ship to a collector instead. Traces always use the stdout exporter —
// no OTLP trace exporter is wired for this service, since nothing here
// needs cross-service trace propagation yet.
func Init(ctx context.Context, serviceName, otlpEndpoint string) (Shutdown, error) {
	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", serviceName),
	))
	if err != nil {
		return nil, fmt.Errorf("build resource: %w", err)
	}

	metricExporter, err := newMetricExporter(ctx, otlpEndpoint)
	if err != nil {
		return nil, fmt.Errorf("build metric exporter: %w", err)
	}
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(15*time.Second))),
	)
	otel.SetMeterProvider(meterProvider)

	traceExporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("build trace exporter: %w", err)
	}
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(0.1))),
	)
	otel.SetTracerProvider(tracerProvider)

	return func(ctx context.Context) error {
		if err := meterProvider.Shutdown(ctx); err != nil {
			return err
		}
		return tracerProvider.Shutdown(ctx)
	}, nil
}

func newMetricExporter(ctx context.Context, otlpEndpoint string) (sdkmetric.Exporter, error) {
	if otlpEndpoint == "" {
		return stdoutmetric.New()
	}
	return otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpoint(otlpEndpoint))
}
