package config

// ObservabilityConfig holds OTLP trace export configuration.
//
// Tracing is opt-in and exports over OTLP/HTTP to a local collector.
// See internal/observability for the provider setup.
type ObservabilityConfig struct {
	// Enabled turns trace export on (default: false)
	Enabled bool `mapstructure:"enabled" json:"enabled"`
	// Endpoint is the OTLP/HTTP collector endpoint (default: localhost:4318)
	Endpoint string `mapstructure:"endpoint" json:"endpoint"`
	// Environment is the deployment environment tag (default: dev)
	Environment string `mapstructure:"environment" json:"environment"`
	// ServiceName is the service name on exported spans (default: plotdeck-mcp)
	ServiceName string `mapstructure:"service_name" json:"service_name"`
}
