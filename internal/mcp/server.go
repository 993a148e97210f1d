package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/plotdeck/plotdeck-mcp/internal/dashboard"
	"github.com/plotdeck/plotdeck-mcp/internal/log"
)

// Server wraps the MCP SDK server and the dashboard client.
type Server struct {
	mcpServer *mcp.Server
	client    *dashboard.Client
	logger    log.Logger
	name      string
	version   string
}

// Config holds MCP server configuration.
type Config struct {
	Name    string
	Version string
	Client  *dashboard.Client
	Logger  log.Logger
}

// NewServer creates the MCP server and registers all tools.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("server name is required")
	}
	if cfg.Version == "" {
		return nil, fmt.Errorf("server version is required")
	}
	if cfg.Client == nil {
		return nil, fmt.Errorf("dashboard client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, nil)

	s := &Server{
		mcpServer: mcpServer,
		client:    cfg.Client,
		logger:    logger,
		name:      cfg.Name,
		version:   cfg.Version,
	}

	if err := s.registerSessionTools(); err != nil {
		return nil, fmt.Errorf("registering session tools: %w", err)
	}
	if err := s.registerCategoryTools(); err != nil {
		return nil, fmt.Errorf("registering category tools: %w", err)
	}
	if err := s.registerChartTools(); err != nil {
		return nil, fmt.Errorf("registering chart tools: %w", err)
	}

	return s, nil
}

// Run starts the MCP server on the given transport.
// This is a blocking call that handles all MCP protocol communication.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	return s.mcpServer.Run(ctx, transport)
}
