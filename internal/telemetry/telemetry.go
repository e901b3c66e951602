// Package telemetry installs the OpenTelemetry tracer and meter providers.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"gitlab.com/yelinaung/event-crm/internal/config"
	"gitlab.com/yelinaung/event-crm/internal/logger"
)

// ServiceName is reported as the service.name resource attribute.
const ServiceName = "event-crm"

// Exporter names accepted by Setup.
const (
	ExporterNone     = "none"
	ExporterStdout   = "stdout"
	ExporterOTLPGRPC = "otlp-grpc"
	ExporterOTLPHTTP = "otlp-http"
)

const metricInterval = 30 * time.Second

// ShutdownFunc flushes and stops the installed providers.
type ShutdownFunc func(context.Context) error

// Setup installs global tracer and meter providers for cfg.OTelExporter.
// With the "none" exporter the global no-op providers stay in place.
// OTLP endpoints come from the standard OTEL_EXPORTER_OTLP_* variables.
func Setup(ctx context.Context, cfg *config.Config, version string) (ShutdownFunc, error) {
	exporter := ExporterNone
	if cfg != nil && cfg.OTelExporter != "" {
		exporter = cfg.OTelExporter
	}

	if exporter == ExporterNone {
		return func(context.Context) error { return nil }, nil
	}

	spanExp, metricExp, err := newExporters(ctx, exporter)
	if err != nil {
		return nil, err
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", ServiceName),
		attribute.String("service.version", version),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(spanExp),
		sdktrace.WithResource(res),
	)
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp, sdkmetric.WithInterval(metricInterval))),
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Log.Info().Str("exporter", exporter).Msg("Telemetry initialized")

	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}

func newExporters(ctx context.Context, exporter string) (sdktrace.SpanExporter, sdkmetric.Exporter, error) {
	var (
		spanExp   sdktrace.SpanExporter
		metricExp sdkmetric.Exporter
		err       error
	)

	switch exporter {
	case ExporterStdout:
		if spanExp, err = stdouttrace.New(); err != nil {
			return nil, nil, fmt.Errorf("failed to create stdout trace exporter: %w", err)
		}
		if metricExp, err = stdoutmetric.New(); err != nil {
			return nil, nil, fmt.Errorf("failed to create stdout metric exporter: %w", err)
		}
	case ExporterOTLPGRPC:
		if spanExp, err = otlptracegrpc.New(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to create OTLP/gRPC trace exporter: %w", err)
		}
		if metricExp, err = otlpmetricgrpc.New(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to create OTLP/gRPC metric exporter: %w", err)
		}
	case ExporterOTLPHTTP:
		if spanExp, err = otlptracehttp.New(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to create OTLP/HTTP trace exporter: %w", err)
		}
		if metricExp, err = otlpmetrichttp.New(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to create OTLP/HTTP metric exporter: %w", err)
		}
	default:
		return nil, nil, fmt.Errorf("unknown telemetry exporter %q", exporter)
	}

	return spanExp, metricExp, nil
}
