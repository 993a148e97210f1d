package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/plotdeck/plotdeck-mcp/internal/config"
)

// runCheck performs a one-shot connectivity check: load the configuration,
// seed a session from it, and probe the dashboard. The exit status makes it
// scriptable; the printed lines make it readable.
func runCheck() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	client, err := newDashboardClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing dashboard client: %w", err)
	}

	session := client.Session()
	fmt.Printf("Dashboard URL: %s\n", orNotSet(session.Endpoint()))
	if session.IsAuthenticated() {
		fmt.Println("API token:     configured")
	} else {
		fmt.Println("API token:     not set")
	}
	if orgID, ok := session.Scope(); ok {
		fmt.Printf("Organization:  %d\n", orgID)
	} else {
		fmt.Println("Organization:  not set")
	}

	// Only missing settings short-circuit; the probe below decides ok or FAILED.
	if !session.IsEndpointSet() || !session.IsAuthenticated() {
		fmt.Println("Status:        not configured")
		return errors.New("set PLOTDECK_DASHBOARD_URL and PLOTDECK_API_TOKEN (or ~/.plotdeck/config.yaml) first")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout())
	defer cancel()

	if !client.Verify(ctx) {
		fmt.Println("Status:        FAILED")
		return errors.New("dashboard rejected the credentials or is unreachable")
	}

	fmt.Println("Status:        ok")
	return nil
}

// orNotSet renders empty values in the check output.
func orNotSet(s string) string {
	if s == "" {
		return "not set"
	}
	return s
}
