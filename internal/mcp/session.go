package mcp

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerSessionTools registers the session lifecycle tools.
// Tools: set_dashboard_url, login_with_token, login_with_password, logout,
// set_organization, verify_connection, connection_status
func (s *Server) registerSessionTools() error {
	setURLSchema, err := jsonschema.For[SetDashboardURLInput](nil)
	if err != nil {
		return fmt.Errorf("schema for set_dashboard_url: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "set_dashboard_url",
		Description: "Point the session at a dashboard instance. Accepts an http or https base URL. Clears the verified flag; credentials are kept.",
		InputSchema: setURLSchema,
	}, s.SetDashboardURL)

	loginTokenSchema, err := jsonschema.For[LoginWithTokenInput](nil)
	if err != nil {
		return fmt.Errorf("schema for login_with_token: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "login_with_token",
		Description: "Authenticate with an API token. The token is probed against the dashboard before it replaces the current credential; on rejection the previous credential stays in place.",
		InputSchema: loginTokenSchema,
	}, s.LoginWithToken)

	loginPasswordSchema, err := jsonschema.For[LoginWithPasswordInput](nil)
	if err != nil {
		return fmt.Errorf("schema for login_with_password: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "login_with_password",
		Description: "Exchange an identity and secret for an API token via the dashboard login endpoint, then use that token for the session.",
		InputSchema: loginPasswordSchema,
	}, s.LoginWithPassword)

	logoutSchema, err := jsonschema.For[LogoutInput](nil)
	if err != nil {
		return fmt.Errorf("schema for logout: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "logout",
		Description: "Invalidate the session. The remote token is revoked on a best-effort basis; local credentials are cleared regardless.",
		InputSchema: logoutSchema,
	}, s.Logout)

	setOrgSchema, err := jsonschema.For[SetOrganizationInput](nil)
	if err != nil {
		return fmt.Errorf("schema for set_organization: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "set_organization",
		Description: "Select the organization scope. The id is injected into every subsequent dashboard request.",
		InputSchema: setOrgSchema,
	}, s.SetOrganization)

	verifySchema, err := jsonschema.For[VerifyConnectionInput](nil)
	if err != nil {
		return fmt.Errorf("schema for verify_connection: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "verify_connection",
		Description: "Probe the dashboard with the current credentials and report whether they are accepted. Never fails; an unreachable or rejecting dashboard yields verified=false.",
		InputSchema: verifySchema,
	}, s.VerifyConnection)

	statusSchema, err := jsonschema.For[ConnectionStatusInput](nil)
	if err != nil {
		return fmt.Errorf("schema for connection_status: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "connection_status",
		Description: "Report the session state: endpoint, authentication, verification, and organization scope. Purely local, no network call.",
		InputSchema: statusSchema,
	}, s.ConnectionStatus)

	return nil
}

// SetDashboardURLInput defines the input schema for set_dashboard_url.
type SetDashboardURLInput struct {
	URL string `json:"url" jsonschema:"The dashboard base URL (http or https)"`
}

// LoginWithTokenInput defines the input schema for login_with_token.
type LoginWithTokenInput struct {
	Token string `json:"token" jsonschema:"The API token to authenticate with"`
}

// LoginWithPasswordInput defines the input schema for login_with_password.
type LoginWithPasswordInput struct {
	Identity string `json:"identity" jsonschema:"The account identity (username or email)"`
	Secret   string `json:"secret" jsonschema:"The account secret (password)"`
}

// LogoutInput defines the input schema for logout. No parameters.
type LogoutInput struct{}

// SetOrganizationInput defines the input schema for set_organization.
type SetOrganizationInput struct {
	OrgID int64 `json:"org_id" jsonschema:"The organization id to scope all requests to"`
}

// VerifyConnectionInput defines the input schema for verify_connection. No parameters.
type VerifyConnectionInput struct{}

// ConnectionStatusInput defines the input schema for connection_status. No parameters.
type ConnectionStatusInput struct{}

// connectionStatus is the payload returned by the session tools.
type connectionStatus struct {
	Endpoint      string `json:"endpoint,omitempty"`
	Authenticated bool   `json:"authenticated"`
	Verified      bool   `json:"verified"`
	Ready         bool   `json:"ready"`
	OrgID         int64  `json:"org_id,omitempty"`
}

// statusPayload snapshots the session into a client-facing payload.
func (s *Server) statusPayload() connectionStatus {
	sess := s.client.Session()
	status := connectionStatus{
		Endpoint:      sess.Endpoint(),
		Authenticated: sess.IsAuthenticated(),
		Verified:      sess.Verified(),
		Ready:         sess.IsReady(),
	}
	if orgID, ok := sess.Scope(); ok {
		status.OrgID = orgID
	}
	return status
}

// statusResult builds the standard session-state result, propagating marshal
// failures as system errors.
func (s *Server) statusResult() (*mcp.CallToolResult, any, error) {
	result, err := jsonResult(s.statusPayload())
	if err != nil {
		return nil, nil, err
	}
	return result, nil, nil
}

// SetDashboardURL handles the set_dashboard_url MCP tool call.
func (s *Server) SetDashboardURL(ctx context.Context, req *mcp.CallToolRequest, in SetDashboardURLInput) (*mcp.CallToolResult, any, error) {
	if err := validation.ValidateStruct(&in,
		validation.Field(&in.URL, validation.Required),
	); err != nil {
		return errorResult("invalid input: %s", err.Error()), nil, nil
	}

	if err := s.client.Session().SetEndpoint(in.URL); err != nil {
		return s.errorToResult("set_dashboard_url", err), nil, nil
	}

	s.logger.Info("dashboard endpoint set", "endpoint", s.client.Session().Endpoint())
	return s.statusResult()
}

// LoginWithToken handles the login_with_token MCP tool call.
func (s *Server) LoginWithToken(ctx context.Context, req *mcp.CallToolRequest, in LoginWithTokenInput) (*mcp.CallToolResult, any, error) {
	if err := validation.ValidateStruct(&in,
		validation.Field(&in.Token, validation.Required),
	); err != nil {
		return errorResult("invalid input: %s", err.Error()), nil, nil
	}

	if err := s.client.Login(ctx, in.Token); err != nil {
		return s.errorToResult("login_with_token", err), nil, nil
	}

	return s.statusResult()
}

// LoginWithPassword handles the login_with_password MCP tool call.
func (s *Server) LoginWithPassword(ctx context.Context, req *mcp.CallToolRequest, in LoginWithPasswordInput) (*mcp.CallToolResult, any, error) {
	if err := validation.ValidateStruct(&in,
		validation.Field(&in.Identity, validation.Required),
		validation.Field(&in.Secret, validation.Required),
	); err != nil {
		return errorResult("invalid input: %s", err.Error()), nil, nil
	}

	if err := s.client.LoginWithPassword(ctx, in.Identity, in.Secret); err != nil {
		return s.errorToResult("login_with_password", err), nil, nil
	}

	return s.statusResult()
}

// logoutPayload reports the two independent outcomes of a logout.
type logoutPayload struct {
	LocalCleared bool   `json:"local_cleared"`
	RemoteOK     bool   `json:"remote_ok"`
	RemoteError  string `json:"remote_error,omitempty"`
}

// Logout handles the logout MCP tool call.
func (s *Server) Logout(ctx context.Context, req *mcp.CallToolRequest, in LogoutInput) (*mcp.CallToolResult, any, error) {
	outcome, err := s.client.Logout(ctx)
	if err != nil {
		return s.errorToResult("logout", err), nil, nil
	}

	payload := logoutPayload{
		LocalCleared: outcome.LocalCleared,
		RemoteOK:     outcome.RemoteOK,
	}
	if outcome.RemoteErr != nil {
		payload.RemoteError = outcome.RemoteErr.Error()
	}

	result, err := jsonResult(payload)
	if err != nil {
		return nil, nil, err
	}
	return result, nil, nil
}

// SetOrganization handles the set_organization MCP tool call.
func (s *Server) SetOrganization(ctx context.Context, req *mcp.CallToolRequest, in SetOrganizationInput) (*mcp.CallToolResult, any, error) {
	if err := validation.ValidateStruct(&in,
		validation.Field(&in.OrgID, validation.Required, validation.Min(int64(1))),
	); err != nil {
		return errorResult("invalid input: %s", err.Error()), nil, nil
	}

	s.client.Session().SetScope(in.OrgID)
	s.logger.Info("organization scope set", "org_id", in.OrgID)
	return s.statusResult()
}

// VerifyConnection handles the verify_connection MCP tool call.
func (s *Server) VerifyConnection(ctx context.Context, req *mcp.CallToolRequest, in VerifyConnectionInput) (*mcp.CallToolResult, any, error) {
	s.client.Verify(ctx)
	return s.statusResult()
}

// ConnectionStatus handles the connection_status MCP tool call.
func (s *Server) ConnectionStatus(ctx context.Context, req *mcp.CallToolRequest, in ConnectionStatusInput) (*mcp.CallToolResult, any, error) {
	return s.statusResult()
}
