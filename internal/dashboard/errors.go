package dashboard

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured indicates no dashboard URL has been set.
	ErrNotConfigured = errors.New("dashboard URL not configured")

	// ErrNotAuthenticated indicates no access token is present.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// ValidationError reports malformed caller input. It is returned before any
// network call is attempted; the caller can retry with corrected input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// APIError reports a non-success status from the dashboard. The response
// body is logged by the dispatcher, never carried here, so error messages
// stay stable across content types.
type APIError struct {
	Status     int
	StatusText string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("dashboard API error: %d %s", e.Status, e.StatusText)
}

// TransportError reports a network-level failure, before or while reading a
// response. The underlying error is available via errors.Unwrap.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "dashboard request failed: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
