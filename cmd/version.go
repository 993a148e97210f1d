package cmd

import (
	"fmt"

	"github.com/plotdeck/plotdeck-mcp/internal/config"
)

// Version information (injected at build time via ldflags)
var (
	AppVersion = "development"
	BuildTime  = "unknown"
	GitCommit  = "unknown"
)

// runVersion prints build information and a configuration summary. Secret
// values are never echoed, only whether they are present.
func runVersion() {
	fmt.Printf("Plotdeck MCP %s\n", AppVersion)
	fmt.Printf("Build Time: %s\n", BuildTime)
	fmt.Printf("Git Commit: %s\n", GitCommit)
	fmt.Println()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Configuration: not loaded (%v)\n", err)
		return
	}

	fmt.Println("Configuration:")
	fmt.Printf("  Dashboard URL: %s\n", orNotSet(cfg.DashboardURL))
	if cfg.HasScope() {
		fmt.Printf("  Organization: %d\n", cfg.OrgID)
	} else {
		fmt.Println("  Organization: not set")
	}
	fmt.Printf("  Request timeout: %s\n", cfg.HTTPTimeout())
	fmt.Printf("  Log level: %s\n", orNotSet(cfg.LogLevel))

	if cfg.APIToken != "" {
		fmt.Println("  PLOTDECK_API_TOKEN: configured")
	} else {
		fmt.Println("  PLOTDECK_API_TOKEN: not set")
		fmt.Println()
		fmt.Println("Hint: set PLOTDECK_API_TOKEN or log in from your MCP client")
		fmt.Println("  export PLOTDECK_API_TOKEN=your-api-token")
	}
}
