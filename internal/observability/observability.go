// Package observability provides OpenTelemetry integration for distributed tracing.
//
// # Architecture: OTLP/HTTP to a Local Collector
//
// Traces are exported over OTLP HTTP to a collector on localhost (an
// OpenTelemetry Collector, a vendor agent, anything that speaks OTLP).
// The collector owns authentication and forwarding, so the server never
// handles vendor credentials.
//
// Tracing is opt-in: with observability.enabled false (the default) nothing
// is exported and the dashboard client's spans stay no-ops.
//
// # Configuration
//
// Environment variables:
//   - PLOTDECK_TRACING_ENABLED: turn export on
//   - PLOTDECK_OTLP_ENDPOINT: override collector endpoint (default: localhost:4318)
//   - PLOTDECK_ENVIRONMENT: deployment environment tag (default: dev)
//
// Config file (~/.plotdeck/config.yaml):
//
//	observability:
//	  enabled: true
//	  endpoint: "localhost:4318"
//	  environment: "dev"
//	  service_name: "plotdeck-mcp"
//
// # Verify the Collector Endpoint
//
//	curl -v http://localhost:4318/v1/traces
//
// A 405 means the receiver is up (it only accepts POST).
package observability

import (
	"context"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/plotdeck/plotdeck-mcp/internal/log"
)

// Config for OTLP trace export.
type Config struct {
	// Endpoint is the OTLP/HTTP collector endpoint (default: localhost:4318)
	Endpoint string
	// Environment is the deployment environment (dev, staging, prod)
	Environment string
	// ServiceName is the service name stamped onto exported spans
	ServiceName string
}

// DefaultEndpoint is the conventional local OTLP HTTP endpoint.
const DefaultEndpoint = "localhost:4318"

// Setup installs a global tracer provider that batches spans to the
// configured OTLP collector. Service identity is passed through the standard
// OTEL_* resource variables so the SDK's default resource detector picks it
// up.
//
// Returns a shutdown function that flushes pending spans. Exporter creation
// failure degrades gracefully: a warning is logged, tracing stays disabled,
// and the returned shutdown is a no-op.
func Setup(ctx context.Context, logger log.Logger, cfg Config) (shutdown func(context.Context) error, err error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	if cfg.ServiceName != "" {
		_ = os.Setenv("OTEL_SERVICE_NAME", cfg.ServiceName)
	}
	if cfg.Environment != "" {
		_ = os.Setenv("OTEL_RESOURCE_ATTRIBUTES", "deployment.environment="+cfg.Environment)
	}

	// Collector is local, no TLS. It handles auth and forwarding.
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		logger.Warn("failed to create OTLP exporter, tracing disabled", "error", err)
		return func(context.Context) error { return nil }, nil
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(provider)

	logger.Debug("tracing enabled",
		"endpoint", endpoint,
		"service", cfg.ServiceName,
		"environment", cfg.Environment,
	)

	// Create a startup span to verify the pipeline works
	tracer := provider.Tracer("plotdeck-init")
	_, span := tracer.Start(ctx, "plotdeck.init")
	span.End()

	return provider.Shutdown, nil
}
