package dashboard

import (
	"fmt"
	"net/url"
	"strconv"
	"sync"
)

// Session holds the mutable connection state: base URL, access token,
// organization scope, and the verified flag. It lives for the process
// duration and is mutated only through its methods and the Client's
// lifecycle operations.
//
// The verified flag is advisory: true only immediately after a successful
// keepalive probe, cleared whenever the endpoint or token changes. It is
// not re-checked before every request, so it can go stale.
//
// All methods are safe for concurrent use. The MCP SDK makes no guarantee
// that tool handlers run serialized, so the session guards itself.
type Session struct {
	mu       sync.RWMutex
	baseURL  *url.URL
	token    string
	orgID    int64
	hasOrgID bool
	verified bool
}

// NewSession returns an empty session: no endpoint, no token, no scope.
func NewSession() *Session {
	return &Session{}
}

// SetEndpoint replaces the base URL after validating it. A malformed URL
// (unparseable, missing host, or a scheme other than http/https) returns a
// *ValidationError and leaves all state untouched. On success the verified
// flag is cleared; the token is kept, it may still be valid for the new
// endpoint.
func (s *Session) SetEndpoint(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return &ValidationError{Msg: fmt.Sprintf("invalid dashboard URL %q: %v", raw, err)}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ValidationError{Msg: fmt.Sprintf("invalid dashboard URL %q: scheme must be http or https", raw)}
	}
	if u.Host == "" {
		return &ValidationError{Msg: fmt.Sprintf("invalid dashboard URL %q: missing host", raw)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.baseURL = u
	s.verified = false
	return nil
}

// SeedCredential installs a token without probing it. Used for startup
// pre-population from configuration; verified stays false until the next
// probe confirms the token.
func (s *Session) SeedCredential(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.verified = false
}

// SetScope selects the organization injected into every outgoing request.
// Unconditional; does not touch the verified flag, scope is additive and
// assumed not to invalidate the token.
func (s *Session) SetScope(orgID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orgID = orgID
	s.hasOrgID = true
}

// IsEndpointSet reports whether a base URL has been configured.
func (s *Session) IsEndpointSet() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.baseURL != nil
}

// IsAuthenticated reports whether an access token is present.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// IsReady reports whether the session can serve requests: endpoint set,
// token present, and the token verified by the last probe.
func (s *Session) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.baseURL != nil && s.token != "" && s.verified
}

// Verified reports whether the token was accepted by the dashboard as of
// the last probe.
func (s *Session) Verified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.verified
}

// Endpoint returns the configured base URL, or the empty string.
func (s *Session) Endpoint() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.baseURL == nil {
		return ""
	}
	return s.baseURL.String()
}

// Scope returns the selected organization and whether one is set.
func (s *Session) Scope() (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.orgID, s.hasOrgID
}

// snapshot returns a consistent copy of the state the dispatcher needs.
// The returned URL is a copy; mutating it does not affect the session.
func (s *Session) snapshot() (base *url.URL, token string, orgID string, hasOrgID bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.baseURL != nil {
		u := *s.baseURL
		base = &u
	}
	return base, s.token, strconv.FormatInt(s.orgID, 10), s.hasOrgID
}

// swapToken stages a new token and returns the previous one. The verified
// flag is cleared; the caller decides whether to commit (setVerified) or
// roll back (restoreToken) after probing.
func (s *Session) swapToken(token string) (prev string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev = s.token
	s.token = token
	s.verified = false
	return prev
}

// restoreToken puts a previously swapped-out token back after a failed
// probe. prev may be empty, the session then ends unauthenticated.
func (s *Session) restoreToken(prev string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = prev
	s.verified = false
}

// commitToken installs a token that the dashboard itself just issued, so
// it counts as verified without a separate probe.
func (s *Session) commitToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.verified = true
}

func (s *Session) setVerified(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verified = v
}

// clearCredential drops the token and the verified flag. Local logout is
// unconditional regardless of the remote call's outcome.
func (s *Session) clearCredential() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.verified = false
}
