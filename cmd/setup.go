package cmd

import (
	"fmt"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/plotdeck/plotdeck-mcp/internal/config"
	"github.com/plotdeck/plotdeck-mcp/internal/dashboard"
	"github.com/plotdeck/plotdeck-mcp/internal/log"
)

// newLogger builds the process logger from configuration. Output always goes
// to stderr; stdout is reserved for the MCP transport.
func newLogger(cfg *config.Config) (log.Logger, error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("configuring logger: %w", err)
	}
	return log.New(log.Config{Level: level, JSON: cfg.LogJSON}), nil
}

// newDashboardClient assembles the dashboard client from configuration: the
// session is pre-seeded with whatever endpoint, token, and organization scope
// are configured, and the HTTP stack gets the configured timeout and optional
// rate limit.
//
// Seeded credentials start unverified; callers decide whether to probe.
func newDashboardClient(cfg *config.Config, logger log.Logger) (*dashboard.Client, error) {
	session := dashboard.NewSession()
	if cfg.DashboardURL != "" {
		if err := session.SetEndpoint(cfg.DashboardURL); err != nil {
			return nil, fmt.Errorf("configured dashboard URL: %w", err)
		}
	}
	if cfg.APIToken != "" {
		session.SeedCredential(cfg.APIToken)
	}
	if cfg.HasScope() {
		session.SetScope(cfg.OrgID)
	}

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}

	return dashboard.NewClient(session, dashboard.Config{
		HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout()},
		Limiter:    limiter,
		Logger:     logger.With("component", "dashboard"),
	})
}
