package dashboard

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/plotdeck/plotdeck-mcp/internal/log"
)

// Fixed dashboard API paths used by the lifecycle operations.
const (
	keepalivePath = "/api/keepalive"
	loginPath     = "/api/login"
	logoutPath    = "/api/logout"
)

// orgQueryKey is the reserved query parameter carrying the organization
// scope. A caller-supplied value for this key is always overwritten.
const orgQueryKey = "orgId"

// maxLoggedBody caps how much of an error response body goes into the log.
const maxLoggedBody = 2048

// Config holds the optional Client dependencies.
type Config struct {
	// HTTPClient overrides the transport. Default: http.Client zero value
	// (no timeout beyond the transport's own).
	HTTPClient *http.Client

	// Limiter throttles outbound requests when set. Default: nil (off).
	Limiter *rate.Limiter

	// Logger receives request/error logs. Default: discard.
	Logger log.Logger
}

// Client dispatches authenticated requests against the session's endpoint
// and owns the session lifecycle operations that need the network (login,
// logout, keepalive probes). It never retries and, outside those lifecycle
// operations, never mutates the session.
type Client struct {
	session *Session
	http    *http.Client
	limiter *rate.Limiter
	logger  log.Logger
	tracer  trace.Tracer
}

// NewClient creates a dispatcher bound to the given session.
func NewClient(session *Session, cfg Config) (*Client, error) {
	if session == nil {
		return nil, errors.New("session is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	return &Client{
		session: session,
		http:    httpClient,
		limiter: cfg.Limiter,
		logger:  logger,
		tracer:  otel.Tracer("dashboard"),
	}, nil
}

// Session returns the session this client dispatches for.
func (c *Client) Session() *Session {
	return c.session
}

// Request performs one call against the dashboard: composes the URL from
// endpoint + path, injects the organization scope into the query, sends
// the bearer token, and classifies the response by content type.
//
// body is JSON-encoded only for POST and PUT; other methods ignore it.
// Preconditions fail fast with ErrNotConfigured / ErrNotAuthenticated
// before any network activity. Remote rejections surface as *APIError,
// network failures as *TransportError.
func (c *Client) Request(ctx context.Context, method, path string, body any, query url.Values) (*Response, error) {
	base, token, orgID, hasOrgID := c.session.snapshot()
	if base == nil {
		return nil, ErrNotConfigured
	}
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	u := base.JoinPath(path)
	q := url.Values{}
	for key, values := range query {
		q[key] = append([]string(nil), values...)
	}
	if hasOrgID {
		q.Set(orgQueryKey, orgID)
	}
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}

	return c.roundTrip(ctx, method, u, "bearer "+token, body)
}

// Verify probes the dashboard with a low-cost authenticated keepalive call
// and updates the session's verified flag. It is advisory: any failure,
// precondition or remote, yields false without surfacing the error.
func (c *Client) Verify(ctx context.Context) bool {
	if !c.session.IsEndpointSet() || !c.session.IsAuthenticated() {
		return false
	}

	if _, err := c.Request(ctx, http.MethodGet, keepalivePath, nil, nil); err != nil {
		c.logger.Debug("keepalive probe failed", "error", err)
		c.session.setVerified(false)
		return false
	}

	c.session.setVerified(true)
	return true
}

// Login replaces the session token transactionally: the new token is
// staged, probed via keepalive, and committed only when the probe passes.
// On probe failure the previous token (possibly none) is restored and the
// probe's error is returned.
func (c *Client) Login(ctx context.Context, token string) error {
	if !c.session.IsEndpointSet() {
		return ErrNotConfigured
	}
	if token == "" {
		return &ValidationError{Msg: "token must not be empty"}
	}

	prev := c.session.swapToken(token)
	if _, err := c.Request(ctx, http.MethodGet, keepalivePath, nil, nil); err != nil {
		c.session.restoreToken(prev)
		return fmt.Errorf("token rejected by dashboard: %w", err)
	}

	c.session.setVerified(true)
	c.logger.Info("logged in", "endpoint", c.session.Endpoint())
	return nil
}

// LoginWithPassword exchanges identity and secret for a token via the
// unauthenticated login endpoint, then commits it. The prior token is never
// disturbed: on any failure (transport, rejection, or a response missing
// the token field) the session keeps its previous state.
func (c *Client) LoginWithPassword(ctx context.Context, identity, secret string) error {
	if !c.session.IsEndpointSet() {
		return ErrNotConfigured
	}
	if identity == "" {
		return &ValidationError{Msg: "identity must not be empty"}
	}

	base, _, _, _ := c.session.snapshot()
	u := base.JoinPath(loginPath)
	basic := base64.StdEncoding.EncodeToString([]byte(identity + ":" + secret))

	resp, err := c.roundTrip(ctx, http.MethodPost, u, "basic "+basic, nil)
	if err != nil {
		return fmt.Errorf("password login failed: %w", err)
	}

	obj, ok := resp.Value.(map[string]any)
	if !ok {
		return errors.New("login response is not a JSON object")
	}
	token, ok := obj["token"].(string)
	if !ok || token == "" {
		return errors.New("login response missing token field")
	}

	c.session.commitToken(token)
	c.logger.Info("logged in", "endpoint", c.session.Endpoint(), "identity", identity)
	return nil
}

// LogoutResult separates the two outcomes of a logout: the local clear is
// unconditional, the remote invalidation is best-effort and reported on
// its own.
type LogoutResult struct {
	LocalCleared bool
	RemoteOK     bool
	RemoteErr    error
}

// Logout invalidates the session. The remote invalidate call is attempted
// first, but the local token and verified flag are cleared regardless of
// its outcome, favoring availability: the session always ends logged out.
func (c *Client) Logout(ctx context.Context) (*LogoutResult, error) {
	if !c.session.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}

	_, remoteErr := c.Request(ctx, http.MethodPost, logoutPath, nil, nil)
	c.session.clearCredential()

	if remoteErr != nil {
		c.logger.Warn("remote logout failed, local session cleared anyway", "error", remoteErr)
	}
	return &LogoutResult{
		LocalCleared: true,
		RemoteOK:     remoteErr == nil,
		RemoteErr:    remoteErr,
	}, nil
}

// roundTrip issues one HTTP call with the given Authorization value and
// decodes the response. The URL is already fully composed.
func (c *Client) roundTrip(ctx context.Context, method string, u *url.URL, auth string, body any) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{Err: err}
		}
	}

	ctx, span := c.tracer.Start(ctx, "dashboard.request", trace.WithAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.path", u.Path),
	))
	defer span.End()

	requestID := uuid.NewString()
	start := time.Now()

	var reqBody io.Reader
	if body != nil && (method == http.MethodPost || method == http.MethodPut) {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", auth)
	if reqBody != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		return nil, &TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failure")
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, StatusText: statusText(resp)}
		// The body is logged here, not returned: error messages stay
		// stable no matter what content type the dashboard sent.
		c.logger.Warn("dashboard API error",
			"request_id", requestID,
			"method", method,
			"path", u.Path,
			"status", resp.StatusCode,
			"body", truncate(string(respBody), maxLoggedBody))
		span.RecordError(apiErr)
		span.SetStatus(codes.Error, apiErr.Error())
		return nil, apiErr
	}

	decoded, err := decodeResponse(resp.Header.Get("Content-Type"), respBody)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("dashboard request completed",
		"request_id", requestID,
		"method", method,
		"path", u.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start))
	return decoded, nil
}

// statusText extracts the reason phrase for a status code, preferring the
// canonical text and falling back to whatever the server sent.
func statusText(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
