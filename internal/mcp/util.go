package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/plotdeck/plotdeck-mcp/internal/dashboard"
)

// Tool-level failure text policy:
// - validation messages: safe (our own wording)
// - dashboard status line (code + status text): safe
// - transport errors: safe (host/port level, no payloads)
//
// NEVER expose:
// - remote response bodies (logged server-side only)
// - tokens or Authorization headers
// - stack traces

// errorResult builds a tool-level failure with the given text.
func errorResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

// textResult builds a successful result with plain text content.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// jsonResult marshals v into a successful text result. Used for status and
// summary payloads; a marshal failure here is a bug, reported as a system
// error by the caller.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return textResult(string(b)), nil
}

// errorToResult maps the dashboard error taxonomy onto a tool-level failure.
// Every variant is something the assistant can act on, so nothing here
// becomes a protocol error.
func (s *Server) errorToResult(op string, err error) *mcp.CallToolResult {
	s.logger.Debug("tool call failed", "tool", op, "error", err)

	switch {
	case errors.Is(err, dashboard.ErrNotConfigured):
		return errorResult("dashboard URL is not configured; call set_dashboard_url first")
	case errors.Is(err, dashboard.ErrNotAuthenticated):
		return errorResult("not authenticated; call login_with_token or login_with_password first")
	}

	var validationErr *dashboard.ValidationError
	if errors.As(err, &validationErr) {
		return errorResult("%s", validationErr.Msg)
	}

	return errorResult("%s: %s", op, err.Error())
}

// binaryPayload is the envelope for base64 content returned to clients.
type binaryPayload struct {
	ContentType string `json:"content_type"`
	Encoding    string `json:"encoding"`
	Data        string `json:"data"`
}

// responseToResult converts a decoded dashboard response into tool content.
// Structured payloads are re-serialized as JSON text, binary payloads are
// wrapped in a base64 envelope, and everything else passes through verbatim.
func responseToResult(resp *dashboard.Response) (*mcp.CallToolResult, error) {
	switch resp.Kind {
	case dashboard.KindStructured:
		b, err := json.MarshalIndent(resp.Value, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling response: %w", err)
		}
		return textResult(string(b)), nil

	case dashboard.KindBinary:
		return jsonResult(binaryPayload{
			ContentType: resp.ContentType,
			Encoding:    "base64",
			Data:        resp.Data,
		})

	default:
		return textResult(resp.Text), nil
	}
}
