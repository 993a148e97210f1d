// Package dashboard implements the session and request-dispatch layer for
// the Plotdeck dashboard API.
//
// This package provides:
//   - Session: the mutable connection state (base URL, access token,
//     organization scope, verified flag) with controlled mutators
//   - Client: the request dispatcher that turns the session state into
//     authenticated, content-negotiated HTTP calls
//   - ParseFilters: the compact filter-expression grammar used by chart
//     data queries
//
// Design Philosophy:
//   - Session is an explicit, owned object injected into the Client; there
//     is no package-level state, so tests can run isolated instances
//   - The dispatcher classifies every response exactly once at the HTTP
//     boundary into structured JSON, binary (base64), or plain text
//   - Errors carry classification, not policy: precondition failures are
//     sentinel errors, remote rejections are *APIError, network failures
//     are *TransportError; no retries happen at this layer
//
// Usage:
//
//	session := dashboard.NewSession()
//	client, err := dashboard.NewClient(session, dashboard.Config{Logger: logger})
//	if err != nil { ... }
//
//	if err := session.SetEndpoint("https://boards.example.com"); err != nil { ... }
//	if err := client.Login(ctx, token); err != nil { ... }
//	resp, err := client.Request(ctx, http.MethodGet, "/api/charts", nil, nil)
package dashboard
