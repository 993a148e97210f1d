// Package cmd provides CLI commands for the Plotdeck MCP server.
//
// Commands:
//   - mcp (default): MCP server on stdio, for MCP client integration
//   - check: one-shot dashboard connectivity check
//   - version: build and configuration summary
//
// Signal handling and graceful shutdown are implemented via context
// cancellation.
package cmd

import (
	"fmt"
	"os"
)

// serverName is the MCP implementation name advertised to clients.
const serverName = "plotdeck"

// Execute is the main entry point for the plotdeck-mcp application. With no
// arguments it starts the MCP server, which is how MCP client configurations
// invoke the binary.
func Execute() error {
	if len(os.Args) < 2 {
		return runMCP()
	}

	switch os.Args[1] {
	case "mcp":
		return runMCP()
	case "check":
		return runCheck()
	case "version", "--version", "-v":
		runVersion()
		return nil
	case "help", "--help", "-h":
		runHelp()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", os.Args[1])
	}
}

// runHelp displays the help message.
func runHelp() {
	fmt.Println("Plotdeck MCP - dashboard access for MCP clients")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  plotdeck-mcp           Start the MCP server on stdio (default)")
	fmt.Println("  plotdeck-mcp mcp       Same as the default")
	fmt.Println("  plotdeck-mcp check     Verify the configured dashboard connection")
	fmt.Println("  plotdeck-mcp version   Show version and configuration")
	fmt.Println("  plotdeck-mcp help      Show this help")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  PLOTDECK_DASHBOARD_URL  Dashboard base URL")
	fmt.Println("  PLOTDECK_API_TOKEN      API token (sessions can also log in at runtime)")
	fmt.Println("  PLOTDECK_ORG_ID         Organization scope for all requests")
	fmt.Println("  PLOTDECK_LOG_LEVEL      debug, info, warn, or error")
	fmt.Println()
	fmt.Println("Configuration is also read from ~/.plotdeck/config.yaml.")
	fmt.Println()
	fmt.Println("Learn more: https://github.com/plotdeck/plotdeck-mcp")
}
