package tracing

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"videosplus/storefront/internal/config"
)

// Init configures an OTLP HTTP exporter when tracing.endpoint is set.
// If no exporter is configured, tracing will be a no-op.
func Init(ctx context.Context, log logrus.FieldLogger, cfg config.TracingConfig) (func(context.Context) error, error) {
	if cfg.Endpoint == "" {
		if log != nil {
			log.Info("tracing disabled: tracing.endpoint not set")
		}
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(cfg.Endpoint), otlptracehttp.WithInsecure())
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	if log != nil {
		log.WithField("endpoint", cfg.Endpoint).Info("tracing initialized")
	}
	return tp.Shutdown, nil
}
