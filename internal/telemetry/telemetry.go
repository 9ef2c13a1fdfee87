// Package telemetry configures the OpenTelemetry trace and metric providers.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gitlab.com/yelinaung/billed/internal/logger"
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
)

// Exporter names accepted by Setup.
const (
	ExporterNone     = "none"
	ExporterStdout   = "stdout"
	ExporterOTLPGRPC = "otlp-grpc"
	ExporterOTLPHTTP = "otlp-http"
)

// ErrUnknownExporter is returned for exporter names outside the supported set.
var ErrUnknownExporter = errors.New("unknown telemetry exporter")

// Options selects the exporters and identifies the service.
type Options struct {
	ServiceName    string
	ServiceVersion string
	Exporter       string
	Endpoint       string
	// Writer receives stdout exporter output. Defaults to os.Stdout.
	Writer io.Writer
	// MetricInterval is the export period of the metric reader.
	MetricInterval time.Duration
}

// ShutdownFunc flushes and stops the providers.
type ShutdownFunc func(context.Context) error

// Setup installs global trace and metric providers and the W3C propagator.
// With ExporterNone only the propagator is installed.
func Setup(ctx context.Context, opts Options) (ShutdownFunc, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if opts.Exporter == "" || opts.Exporter == ExporterNone {
		return func(context.Context) error { return nil }, nil
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", opts.ServiceName),
		attribute.String("service.version", opts.ServiceVersion),
	)

	spanExporter, metricExporter, err := newExporters(ctx, opts)
	if err != nil {
		return nil, err
	}

	interval := opts.MetricInterval
	if interval <= 0 {
		interval = time.Minute
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(spanExporter),
		sdktrace.WithResource(res),
	)
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(interval))),
		sdkmetric.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	logger.Log.Info().
		Str("exporter", opts.Exporter).
		Str("service", opts.ServiceName).
		Msg("Telemetry initialized")

	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}

func newExporters(ctx context.Context, opts Options) (sdktrace.SpanExporter, sdkmetric.Exporter, error) {
	switch opts.Exporter {
	case ExporterStdout:
		w := opts.Writer
		if w == nil {
			w = os.Stdout
		}
		se, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create stdout trace exporter: %w", err)
		}
		me, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create stdout metric exporter: %w", err)
		}
		return se, me, nil

	case ExporterOTLPGRPC:
		var traceOpts []otlptracegrpc.Option
		var metricOpts []otlpmetricgrpc.Option
		if opts.Endpoint != "" {
			traceOpts = append(traceOpts, otlptracegrpc.WithEndpoint(opts.Endpoint), otlptracegrpc.WithInsecure())
			metricOpts = append(metricOpts, otlpmetricgrpc.WithEndpoint(opts.Endpoint), otlpmetricgrpc.WithInsecure())
		}
		se, err := otlptracegrpc.New(ctx, traceOpts...)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create OTLP gRPC trace exporter: %w", err)
		}
		me, err := otlpmetricgrpc.New(ctx, metricOpts...)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create OTLP gRPC metric exporter: %w", err)
		}
		return se, me, nil

	case ExporterOTLPHTTP:
		var traceOpts []otlptracehttp.Option
		var metricOpts []otlpmetrichttp.Option
		if opts.Endpoint != "" {
			traceOpts = append(traceOpts, otlptracehttp.WithEndpoint(opts.Endpoint), otlptracehttp.WithInsecure())
			metricOpts = append(metricOpts, otlpmetrichttp.WithEndpoint(opts.Endpoint), otlpmetrichttp.WithInsecure())
		}
		se, err := otlptracehttp.New(ctx, traceOpts...)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create OTLP HTTP trace exporter: %w", err)
		}
		me, err := otlpmetrichttp.New(ctx, metricOpts...)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create OTLP HTTP metric exporter: %w", err)
		}
		return se, me, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownExporter, opts.Exporter)
	}
}
