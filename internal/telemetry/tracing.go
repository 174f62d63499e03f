// Package telemetry installs the OpenTelemetry tracer provider that backs
// the replay and resolution span emitter
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"

	"github.com/dshills/bbflow/internal/logging"
)

// Exporter names accepted by Config.Exporter
const (
	ExporterNone    = "none"
	ExporterConsole = "console"
	ExporterOTLP    = "otlp"
)

const defaultServiceName = "bbflow"

type (
	// Config selects the span exporter and sampling ratio
	Config struct {
		Exporter    string
		Endpoint    string
		SampleRatio float64
		ServiceName string

		// Writer receives console spans. Defaults to os.Stdout
		Writer io.Writer
	}

	errorHandler struct {
		logger *slog.Logger
	}
)

// ErrUnknownExporter is returned for an exporter name other than none,
// console or otlp
var ErrUnknownExporter = errors.New("unknown trace exporter")

func (h *errorHandler) Handle(err error) {
	h.logger.Warn("Trace error occurred", logging.Error(err))
}

// NewTracerProvider builds a batching tracer provider for cfg. It returns
// nil with no error when the exporter is "none" or empty
func NewTracerProvider(
	ctx context.Context, cfg Config,
) (*sdktrace.TracerProvider, error) {
	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if exporter == nil {
		return nil, nil
	}

	name := cfg.ServiceName
	if name == "" {
		name = defaultServiceName
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.ParentBased(
			sdktrace.TraceIDRatioBased(cfg.SampleRatio),
		)),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(name),
		)),
	), nil
}

// InitTracing builds the provider for cfg and installs it, along with the
// W3C trace context propagator, as the process-wide default. The returned
// provider must be shut down on exit; it is nil when tracing is disabled
func InitTracing(
	ctx context.Context, cfg Config, logger *slog.Logger,
) (*sdktrace.TracerProvider, error) {
	tp, err := NewTracerProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if tp == nil {
		logger.Info("Tracing disabled")
		return nil, nil
	}

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))
	otel.SetErrorHandler(&errorHandler{logger: logger})

	logger.Info("Tracing enabled",
		slog.String("exporter", cfg.Exporter),
		slog.Float64("sample_ratio", cfg.SampleRatio))
	return tp, nil
}

func newExporter(
	ctx context.Context, cfg Config,
) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case "", ExporterNone:
		return nil, nil
	case ExporterConsole:
		w := cfg.Writer
		if w == nil {
			w = os.Stdout
		}
		exp, err := stdouttrace.New(
			stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create stdouttrace exporter: %w", err)
		}
		return exp, nil
	case ExporterOTLP:
		opts := []otlptracegrpc.Option{otlptracegrpc.WithInsecure()}
		if cfg.Endpoint != "" {
			opts = append(opts, otlptracegrpc.WithEndpoint(cfg.Endpoint))
		}
		exp, err := otlptracegrpc.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create otlp-grpc exporter: %w", err)
		}
		return exp, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownExporter, cfg.Exporter)
	}
}
