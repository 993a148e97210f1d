package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	mcpSdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/plotdeck/plotdeck-mcp/internal/config"
	"github.com/plotdeck/plotdeck-mcp/internal/dashboard"
	"github.com/plotdeck/plotdeck-mcp/internal/log"
	"github.com/plotdeck/plotdeck-mcp/internal/mcp"
	"github.com/plotdeck/plotdeck-mcp/internal/observability"
)

// runMCP initializes and starts the MCP server on stdio transport.
func runMCP() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting MCP server", "version", AppVersion)

	if cfg.Observability.Enabled {
		shutdown, err := observability.Setup(ctx, logger.With("component", "observability"), observability.Config{
			Endpoint:    cfg.Observability.Endpoint,
			Environment: cfg.Observability.Environment,
			ServiceName: cfg.Observability.ServiceName,
		})
		if err != nil {
			return fmt.Errorf("initializing tracing: %w", err)
		}
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if shutdownErr := shutdown(shutdownCtx); shutdownErr != nil {
				logger.Warn("tracing shutdown error", "error", shutdownErr)
			}
		}()
	}

	client, err := newDashboardClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing dashboard client: %w", err)
	}

	startupVerify(ctx, client, logger)

	server, err := mcp.NewServer(mcp.Config{
		Name:    serverName,
		Version: AppVersion,
		Client:  client,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	logger.Info("MCP server ready", "name", serverName, "version", AppVersion, "transport", "stdio")

	if err := server.Run(ctx, &mcpSdk.StdioTransport{}); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}

	logger.Info("MCP server shut down gracefully")
	return nil
}

// startupVerify probes seeded credentials once so the session starts verified
// when the dashboard is reachable. Seeded tokens are always unverified, so
// the gate is endpoint and token presence rather than readiness. The outcome
// is logged either way; startup never fails on it.
func startupVerify(ctx context.Context, client *dashboard.Client, logger log.Logger) {
	session := client.Session()
	if !session.IsEndpointSet() || !session.IsAuthenticated() {
		return
	}

	if client.Verify(ctx) {
		logger.Info("dashboard connection verified", "endpoint", session.Endpoint())
	} else {
		logger.Warn("dashboard not verified at startup, tools will report details", "endpoint", session.Endpoint())
	}
}
