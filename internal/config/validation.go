package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// validLogLevels are the accepted log_level values. The empty string is
// allowed and means Info.
var validLogLevels = []string{"", "debug", "info", "warn", "warning", "error"}

// Validate validates configuration values.
// Returns sentinel errors that can be checked with errors.Is().
func (c *Config) Validate() error {
	// 0. Check for nil config (defensive programming)
	if c == nil {
		return ErrConfigNil
	}

	// 1. Dashboard URL validation. Empty is fine: the session starts
	// unconfigured and the client can set the endpoint at runtime. A
	// non-empty value must be usable as-is, misconfiguration should fail
	// at startup rather than on the first tool call.
	if c.DashboardURL != "" {
		u, err := url.Parse(c.DashboardURL)
		if err != nil {
			return fmt.Errorf("%w: %q: %v", ErrInvalidDashboardURL, c.DashboardURL, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("%w: %q: scheme must be http or https", ErrInvalidDashboardURL, c.DashboardURL)
		}
		if u.Host == "" {
			return fmt.Errorf("%w: %q: missing host", ErrInvalidDashboardURL, c.DashboardURL)
		}
	}

	// 2. Organization id validation (0 means unset)
	if c.OrgID < 0 {
		return fmt.Errorf("%w: must not be negative, got %d", ErrInvalidOrgID, c.OrgID)
	}

	// 3. HTTP behavior validation
	if c.RequestTimeoutSeconds < 1 || c.RequestTimeoutSeconds > MaxRequestTimeoutSeconds {
		return fmt.Errorf("%w: must be between 1 and %d seconds, got %d",
			ErrInvalidTimeout, MaxRequestTimeoutSeconds, c.RequestTimeoutSeconds)
	}

	if c.RateLimitRPS < 0 {
		return fmt.Errorf("%w: rate_limit_rps must not be negative, got %g", ErrInvalidRateLimit, c.RateLimitRPS)
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("%w: rate_limit_burst must be at least 1 when rate limiting is on, got %d",
			ErrInvalidRateLimit, c.RateLimitBurst)
	}

	// 4. Log level validation
	if !slices.Contains(validLogLevels, strings.ToLower(strings.TrimSpace(c.LogLevel))) {
		return fmt.Errorf("%w: %q is not valid, must be one of: debug, info, warn, error",
			ErrInvalidLogLevel, c.LogLevel)
	}

	return nil
}
