package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// StubDashboard is an in-memory dashboard API for tests: a real HTTP server
// with programmable fixtures and recorded requests. It implements the
// endpoints the session layer dispatches to (keepalive, login, logout,
// categories, charts) with bearer-token gating.
//
// Thread-safe for concurrent use.
//
// Example:
//
//	stub := testutil.NewStubDashboard(t)
//	stub.AllowToken("test-token")
//	stub.AddChart(map[string]any{"id": 1, "name": "revenue"})
//	// point the session at stub.URL() and exercise the client
type StubDashboard struct {
	mu  sync.Mutex
	srv *httptest.Server

	tokens      map[string]struct{}
	accounts    map[string]string
	issuedToken string

	categories []map[string]any
	charts     []map[string]any
	chartData  map[string][]map[string]any
	exports    map[string]Export

	failStatus int
	requests   []RecordedRequest
}

// Export is a canned payload for the chart export endpoint.
type Export struct {
	ContentType string
	Body        []byte
}

// RecordedRequest captures one request as the stub saw it.
type RecordedRequest struct {
	Method        string
	Path          string
	Query         url.Values
	Authorization string
	Body          []byte
}

// NewStubDashboard starts the stub server. It is closed automatically when
// the test finishes.
func NewStubDashboard(t *testing.T) *StubDashboard {
	t.Helper()

	s := &StubDashboard{
		tokens:    make(map[string]struct{}),
		accounts:  make(map[string]string),
		chartData: make(map[string][]map[string]any),
		exports:   make(map[string]Export),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/keepalive", s.withAuth(s.handleOK))
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.withAuth(s.handleOK))
	mux.HandleFunc("GET /api/categories", s.withAuth(s.handleCategories))
	mux.HandleFunc("GET /api/categories/{id}", s.withAuth(s.handleCategory))
	mux.HandleFunc("GET /api/charts", s.withAuth(s.handleCharts))
	mux.HandleFunc("GET /api/charts/{id}", s.withAuth(s.handleChart))
	mux.HandleFunc("GET /api/charts/{id}/data", s.withAuth(s.handleChartData))
	mux.HandleFunc("GET /api/charts/{id}/export", s.withAuth(s.handleChartExport))

	s.srv = httptest.NewServer(s.record(mux))
	t.Cleanup(s.srv.Close)
	return s
}

// URL returns the stub's base URL.
func (s *StubDashboard) URL() string {
	return s.srv.URL
}

// AllowToken registers a bearer token the stub accepts.
func (s *StubDashboard) AllowToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = struct{}{}
}

// SetAccount registers a basic-auth account. A successful login responds
// with issued, which is also added to the accepted tokens.
func (s *StubDashboard) SetAccount(identity, secret, issued string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[identity] = secret
	s.issuedToken = issued
}

// AddCategory appends a category fixture. The "id" field identifies it for
// the single-category endpoint.
func (s *StubDashboard) AddCategory(category map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = append(s.categories, category)
}

// AddChart appends a chart fixture.
func (s *StubDashboard) AddChart(chart map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.charts = append(s.charts, chart)
}

// SetChartData registers the data rows served for a chart id.
func (s *StubDashboard) SetChartData(chartID string, rows []map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chartData[chartID] = rows
}

// SetExport registers a canned export payload for a format.
func (s *StubDashboard) SetExport(format, contentType string, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exports[format] = Export{ContentType: contentType, Body: body}
}

// FailWith makes every authenticated endpoint respond with the given status
// until called again with 0.
func (s *StubDashboard) FailWith(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failStatus = status
}

// Requests returns a copy of all recorded requests.
func (s *StubDashboard) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]RecordedRequest, len(s.requests))
	copy(cp, s.requests)
	return cp
}

// LastRequest returns the most recent recorded request, or false if none.
func (s *StubDashboard) LastRequest() (RecordedRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return RecordedRequest{}, false
	}
	return s.requests[len(s.requests)-1], true
}

// Reset clears recorded requests (keeps fixtures and tokens).
func (s *StubDashboard) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// record captures every request before routing it.
func (s *StubDashboard) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.Query(),
			Authorization: r.Header.Get("Authorization"),
			Body:          body,
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

// withAuth gates a handler behind bearer-token auth and failure injection.
func (s *StubDashboard) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		failStatus := s.failStatus
		token, hasScheme := strings.CutPrefix(r.Header.Get("Authorization"), "bearer ")
		_, tokenOK := s.tokens[token]
		s.mu.Unlock()

		if !hasScheme || !tokenOK {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid token"})
			return
		}
		if failStatus != 0 {
			http.Error(w, http.StatusText(failStatus), failStatus)
			return
		}
		next(w, r)
	}
}

func (s *StubDashboard) handleOK(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *StubDashboard) handleLogin(w http.ResponseWriter, r *http.Request) {
	identity, secret, ok := r.BasicAuth()

	s.mu.Lock()
	want, known := s.accounts[identity]
	issued := s.issuedToken
	if ok && known && want == secret {
		s.tokens[issued] = struct{}{}
	}
	s.mu.Unlock()

	if !ok || !known || want != secret {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": issued})
}

func (s *StubDashboard) handleCategories(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]map[string]any{}, s.categories...))
}

func (s *StubDashboard) handleCategory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c := findByID(s.categories, r.PathValue("id")); c != nil {
		writeJSON(w, http.StatusOK, c)
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"error": "category not found"})
}

func (s *StubDashboard) handleCharts(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]map[string]any{}, s.charts...))
}

func (s *StubDashboard) handleChart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c := findByID(s.charts, r.PathValue("id")); c != nil {
		writeJSON(w, http.StatusOK, c)
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"error": "chart not found"})
}

func (s *StubDashboard) handleChartData(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	rows := append([]map[string]any{}, s.chartData[r.PathValue("id")]...)
	s.mu.Unlock()

	// Honor limit/skip the way the real API pages results.
	if skip, err := strconv.Atoi(r.URL.Query().Get("skip")); err == nil && skip > 0 {
		if skip > len(rows) {
			skip = len(rows)
		}
		rows = rows[skip:]
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit >= 0 && limit < len(rows) {
		rows = rows[:limit]
	}

	writeJSON(w, http.StatusOK, rows)
}

func (s *StubDashboard) handleChartExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	s.mu.Lock()
	export, ok := s.exports[format]
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "no export for format " + format})
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	_, _ = w.Write(export.Body)
}

// findByID matches a fixture whose "id" field prints as the given value, so
// numeric and string ids both work.
func findByID(items []map[string]any, id string) map[string]any {
	for _, item := range items {
		if fmt.Sprint(item["id"]) == id {
			return item
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
