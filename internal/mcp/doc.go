// Package mcp implements the Model Context Protocol (MCP) server surface.
//
// The server exposes a remote chart dashboard to MCP clients (Claude Code,
// Cursor, and other assistants) as a set of tools: session management,
// category and chart lookups, chart data queries, and exports. The assistant
// drives the dashboard API without ever holding the credentials itself.
//
// # Architecture
//
// The package is a thin dispatch layer over the dashboard client:
//
//	MCP Client (assistant)
//	     |
//	     | (MCP protocol over stdio)
//	     v
//	Server (MCP SDK)
//	     |
//	     +-- session tools   (set_dashboard_url, login_*, logout, ...)
//	     +-- category tools  (list_categories, get_category)
//	     +-- chart tools     (list_charts, get_chart, get_chart_data, export_chart)
//	     |
//	     v
//	dashboard.Client ── HTTP ──> remote dashboard API
//
// Handlers validate their inputs, delegate to the dashboard client, and
// translate the outcome into MCP content. They hold no state of their own;
// everything mutable lives in the dashboard session.
//
// # Tool Handler Pattern
//
// Each tool follows the same structure:
//
//  1. Define an input struct with JSON tags and jsonschema descriptions
//  2. Infer the JSON schema using jsonschema-go
//  3. Register with mcp.AddTool, pointing at a method on Server
//  4. Validate input with ozzo-validation before touching the network
//  5. Build the mcp.CallToolResult directly in the handler
//
// # Error Handling
//
// Two kinds of failure, deliberately kept apart:
//
//   - Tool-level failures: bad input, missing endpoint or credentials,
//     dashboard rejections, unreachable hosts. Returned as a successful
//     protocol response with IsError=true so the assistant can read the
//     message and correct course (set the URL, log in again, fix an id).
//
//   - System failures: marshaling bugs and other conditions the assistant
//     cannot act on. Returned as protocol errors.
//
// Remote response bodies never appear in tool-level failure text; they are
// logged server-side only.
//
// # Thread Safety
//
// The SDK may run handlers concurrently. Handlers are stateless and the
// dashboard session serializes its own state, so no additional locking
// happens at this layer.
package mcp
