// telemetry поднимает OpenTelemetry-трассировку (OTLP/HTTP).
// Пустой endpoint — трассировка выключена, возвращается no-op shutdown.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pribylovaa/profiles-service/internal/config"
	"github.com/pribylovaa/profiles-service/internal/pkg/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Shutdown сбрасывает буферы экспортёра и останавливает провайдер.
type Shutdown func(ctx context.Context) error

func noop(context.Context) error { return nil }

// Init настраивает пропагаторы и, если задан endpoint, глобальный TracerProvider.
func Init(ctx context.Context, cfg config.TelemetryConfig, env string) (Shutdown, error) {
	const op = "telemetry/Init"

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if strings.TrimSpace(cfg.OTLPEndpoint) == "" {
		log.From(ctx).Info("telemetry_disabled")
		return noop, nil
	}

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			attribute.String("deployment.environment", env),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: resource: %w", op, err)
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpointHost(cfg.OTLPEndpoint))}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: exporter: %w", op, err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	log.From(ctx).Info("telemetry_enabled",
		slog.String("endpoint", cfg.OTLPEndpoint),
		slog.String("service", cfg.ServiceName),
	)

	return tp.Shutdown, nil
}

// endpointHost отрезает схему: WithEndpoint ждёт host:port.
func endpointHost(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	endpoint = strings.TrimPrefix(endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	return strings.TrimRight(endpoint, "/")
}
