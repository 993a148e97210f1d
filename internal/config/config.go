// Package config provides application configuration management with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.plotdeck/config.yaml)
//  3. Default values (sensible defaults for quick start)
//
// Main configuration categories:
//   - Dashboard: endpoint, API token, and organization seeds for the session
//   - HTTP: request timeout and client-side rate limiting
//   - Logging: level and format (always stderr, see internal/log)
//   - Observability: OTLP trace export (see observability.go)
//
// Everything here is a startup seed: the MCP tools can replace the endpoint,
// token, and organization at runtime, so every dashboard field is optional.
//
// Security: the API token is never logged; config directory uses 0750 permissions.
//
// Error Handling:
//   - Uses sentinel errors for Go-idiomatic error checking with errors.Is()
//   - Wrap with context using fmt.Errorf("%w: details", ErrXxx)
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidDashboardURL indicates the configured dashboard URL is malformed.
	ErrInvalidDashboardURL = errors.New("invalid dashboard URL")

	// ErrInvalidOrgID indicates the organization id is out of range.
	ErrInvalidOrgID = errors.New("invalid organization id")

	// ErrInvalidTimeout indicates the request timeout is out of range.
	ErrInvalidTimeout = errors.New("invalid request timeout")

	// ErrInvalidRateLimit indicates the rate limit settings are inconsistent.
	ErrInvalidRateLimit = errors.New("invalid rate limit")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
)

const (
	// DefaultRequestTimeoutSeconds bounds a single dashboard round trip.
	DefaultRequestTimeoutSeconds = 30

	// MaxRequestTimeoutSeconds is the absolute cap; chart exports can be
	// slow but nothing should hang a tool call for ten minutes.
	MaxRequestTimeoutSeconds = 600
)

// Config stores application configuration.
// SECURITY: Sensitive fields are explicitly masked in MarshalJSON().
// When adding new sensitive fields (tokens, secrets), update MarshalJSON.
type Config struct {
	// Dashboard connection seeds. All optional: the session starts empty
	// and the MCP tools can configure it at runtime.
	DashboardURL string `mapstructure:"dashboard_url" json:"dashboard_url"`
	APIToken     string `mapstructure:"api_token" json:"api_token"` // SENSITIVE: masked in MarshalJSON
	OrgID        int64  `mapstructure:"org_id" json:"org_id"`       // 0 means no organization scope

	// HTTP behavior for outgoing dashboard requests
	RequestTimeoutSeconds int     `mapstructure:"request_timeout_seconds" json:"request_timeout_seconds"`
	RateLimitRPS          float64 `mapstructure:"rate_limit_rps" json:"rate_limit_rps"` // 0 disables client-side limiting
	RateLimitBurst        int     `mapstructure:"rate_limit_burst" json:"rate_limit_burst"`

	// Logging configuration (output is always stderr)
	LogLevel string `mapstructure:"log_level" json:"log_level"`
	LogJSON  bool   `mapstructure:"log_json" json:"log_json"`

	// Observability configuration (see observability.go for type definition)
	Observability ObservabilityConfig `mapstructure:"observability" json:"observability"`
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	// Configuration directory: ~/.plotdeck/
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".plotdeck")

	// Ensure directory exists (use 0750 permission for better security)
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	// Configure Viper
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".") // Also support current directory

	// Set default values
	setDefaults()

	// Bind environment variables
	bindEnvVariables()

	// Read configuration file (if exists)
	if err := viper.ReadInConfig(); err != nil {
		// Configuration file not found is not an error, use default values
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."},
			"config_name", "config.yaml")
	}

	// Use Unmarshal to automatically map to struct (type-safe)
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// CRITICAL: Validate immediately (fail-fast)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults() {
	// Dashboard seeds default to empty: an unconfigured session
	viper.SetDefault("dashboard_url", "")
	viper.SetDefault("api_token", "")
	viper.SetDefault("org_id", 0)

	// HTTP defaults
	viper.SetDefault("request_timeout_seconds", DefaultRequestTimeoutSeconds)
	viper.SetDefault("rate_limit_rps", 0.0)
	viper.SetDefault("rate_limit_burst", 1)

	// Logging defaults
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_json", false)

	// Observability defaults (OTLP collector on the conventional local port)
	viper.SetDefault("observability.enabled", false)
	viper.SetDefault("observability.endpoint", "localhost:4318")
	viper.SetDefault("observability.environment", "dev")
	viper.SetDefault("observability.service_name", "plotdeck-mcp")
}

// bindEnvVariables binds environment variables explicitly. There is no
// AutomaticEnv: each supported variable is named here so the surface stays
// auditable.
func bindEnvVariables() {
	// Helper to panic on unexpected bind errors (hardcoded strings can't fail)
	// If this panics, it's a BUG in our code, not a runtime error
	mustBind := func(key, envVar string) {
		if err := viper.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	// Dashboard session seeds
	mustBind("dashboard_url", "PLOTDECK_DASHBOARD_URL")
	mustBind("api_token", "PLOTDECK_API_TOKEN")
	mustBind("org_id", "PLOTDECK_ORG_ID")

	// HTTP behavior
	mustBind("request_timeout_seconds", "PLOTDECK_REQUEST_TIMEOUT")
	mustBind("rate_limit_rps", "PLOTDECK_RATE_LIMIT_RPS")
	mustBind("rate_limit_burst", "PLOTDECK_RATE_LIMIT_BURST")

	// Logging
	mustBind("log_level", "PLOTDECK_LOG_LEVEL")
	mustBind("log_json", "PLOTDECK_LOG_JSON")

	// Observability
	mustBind("observability.enabled", "PLOTDECK_TRACING_ENABLED")
	mustBind("observability.endpoint", "PLOTDECK_OTLP_ENDPOINT")
	mustBind("observability.environment", "PLOTDECK_ENVIRONMENT")
}

// HTTPTimeout returns the per-request timeout as a duration.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// HasScope reports whether an organization scope is configured.
func (c *Config) HasScope() bool {
	return c.OrgID > 0
}

// maskedValue is the placeholder for masked sensitive data.
// Using ████████ (full-width blocks U+2588) to avoid substring matching
// Previous attempts:
// - "****" failed: tokens with "*" leaked
// - "[REDACTED]" failed: tokens with "A", "D", "E", etc. leaked
const maskedValue = "████████"

// maskSecret masks a secret string for safe logging.
// Shows first 2 and last 2 characters, masks the rest.
// SECURITY: For secrets <=8 chars, fully masks to prevent substring attacks.
// For longer secrets, shows partial chars with unique separator.
//
// THREAT MODEL: This defends against accidental logging of real secrets.
// It is NOT cryptographically secure - if logs are compromised, rotate secrets.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	// Fully mask short secrets to prevent substring matching attacks
	// Example attack: input "00***" → output "00******" contains "00***"
	if len(s) <= 8 {
		return maskedValue
	}
	// For longer secrets, show first/last 2 chars for debug utility
	// Example: "pd_live_9f2c77aa01" → "pd<████████>01"
	prefix := make([]byte, 2)
	suffix := make([]byte, 2)
	copy(prefix, s[:2])
	copy(suffix, s[len(s)-2:])
	return string(prefix) + "<" + maskedValue + ">" + string(suffix)
}

// MarshalJSON implements json.Marshaler with explicit sensitive field masking.
//
// Sensitive fields masked:
//   - APIToken
//
// When adding new sensitive fields, update this method.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	a.APIToken = maskSecret(a.APIToken)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// String implements Stringer to prevent accidental printing of secrets.
func (c Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}
