package mcp

import (
	"context"
	"net/http"
	"strings"
	"testing"
)

func TestServer_SetDashboardURL(t *testing.T) {
	t.Run("sets the endpoint", func(t *testing.T) {
		h := newBareHelper(t)

		result, _, err := h.server.SetDashboardURL(context.Background(), nil, SetDashboardURLInput{URL: h.stub.URL()})
		if err != nil {
			t.Fatalf("SetDashboardURL() error = %v", err)
		}

		var status connectionStatus
		unmarshalResult(t, result, &status)
		if status.Endpoint != h.stub.URL() {
			t.Errorf("status.Endpoint = %q, want %q", status.Endpoint, h.stub.URL())
		}
		if status.Authenticated {
			t.Error("status.Authenticated = true, want false")
		}
		if status.Ready {
			t.Error("status.Ready = true, want false")
		}
	})

	t.Run("rejects a non-http scheme", func(t *testing.T) {
		h := newBareHelper(t)

		result, _, err := h.server.SetDashboardURL(context.Background(), nil, SetDashboardURLInput{URL: "ftp://dash.example.com"})
		if err != nil {
			t.Fatalf("SetDashboardURL() error = %v", err)
		}
		if !result.IsError {
			t.Fatal("SetDashboardURL() IsError = false, want true")
		}
		if got := resultText(t, result); !strings.Contains(got, "scheme must be http or https") {
			t.Errorf("text = %q, want scheme complaint", got)
		}
		if h.client.Session().IsEndpointSet() {
			t.Error("endpoint was set despite the rejected URL")
		}
	})

	t.Run("rejects blank input", func(t *testing.T) {
		h := newBareHelper(t)

		result, _, err := h.server.SetDashboardURL(context.Background(), nil, SetDashboardURLInput{})
		if err != nil {
			t.Fatalf("SetDashboardURL() error = %v", err)
		}
		if !result.IsError {
			t.Fatal("SetDashboardURL() IsError = false, want true")
		}
		if got := resultText(t, result); !strings.Contains(got, "url: cannot be blank") {
			t.Errorf("text = %q, want blank-url complaint", got)
		}
	})
}

func TestServer_LoginWithToken(t *testing.T) {
	t.Run("commits a token the dashboard accepts", func(t *testing.T) {
		h := newBareHelper(t)
		if err := h.client.Session().SetEndpoint(h.stub.URL()); err != nil {
			t.Fatalf("SetEndpoint() error = %v", err)
		}
		h.stub.AllowToken("fresh-token")

		result, _, err := h.server.LoginWithToken(context.Background(), nil, LoginWithTokenInput{Token: "fresh-token"})
		if err != nil {
			t.Fatalf("LoginWithToken() error = %v", err)
		}

		var status connectionStatus
		unmarshalResult(t, result, &status)
		if !status.Authenticated || !status.Verified || !status.Ready {
			t.Errorf("status = %+v, want authenticated, verified, and ready", status)
		}
	})

	t.Run("keeps the previous credential on rejection", func(t *testing.T) {
		h := newTestHelper(t)

		result, _, err := h.server.LoginWithToken(context.Background(), nil, LoginWithTokenInput{Token: "bad-token"})
		if err != nil {
			t.Fatalf("LoginWithToken() error = %v", err)
		}
		if !result.IsError {
			t.Fatal("LoginWithToken() IsError = false, want true")
		}
		got := resultText(t, result)
		if !strings.Contains(got, "token rejected by dashboard") {
			t.Errorf("text = %q, want rejection message", got)
		}
		if !strings.Contains(got, "401") {
			t.Errorf("text = %q, want the 401 status", got)
		}

		// The session still holds the old token and can keep working.
		if !h.client.Session().IsAuthenticated() {
			t.Error("session lost its credential after a failed login")
		}
		if _, err := h.client.Request(context.Background(), http.MethodGet, "/api/keepalive", nil, nil); err != nil {
			t.Errorf("Request() with the restored token error = %v", err)
		}
	})

	t.Run("requires an endpoint", func(t *testing.T) {
		h := newBareHelper(t)

		result, _, err := h.server.LoginWithToken(context.Background(), nil, LoginWithTokenInput{Token: "any"})
		if err != nil {
			t.Fatalf("LoginWithToken() error = %v", err)
		}
		if !result.IsError {
			t.Fatal("LoginWithToken() IsError = false, want true")
		}
		if got := resultText(t, result); got != "dashboard URL is not configured; call set_dashboard_url first" {
			t.Errorf("text = %q", got)
		}
	})

	t.Run("rejects blank input", func(t *testing.T) {
		h := newBareHelper(t)

		result, _, err := h.server.LoginWithToken(context.Background(), nil, LoginWithTokenInput{})
		if err != nil {
			t.Fatalf("LoginWithToken() error = %v", err)
		}
		if !result.IsError {
			t.Fatal("LoginWithToken() IsError = false, want true")
		}
		if got := resultText(t, result); !strings.Contains(got, "token: cannot be blank") {
			t.Errorf("text = %q, want blank-token complaint", got)
		}
	})
}

func TestServer_LoginWithPassword(t *testing.T) {
	t.Run("exchanges credentials for a token", func(t *testing.T) {
		h := newBareHelper(t)
		if err := h.client.Session().SetEndpoint(h.stub.URL()); err != nil {
			t.Fatalf("SetEndpoint() error = %v", err)
		}
		h.stub.SetAccount("ana@example.com", "hunter2", "issued-token")

		result, _, err := h.server.LoginWithPassword(context.Background(), nil, LoginWithPasswordInput{
			Identity: "ana@example.com",
			Secret:   "hunter2",
		})
		if err != nil {
			t.Fatalf("LoginWithPassword() error = %v", err)
		}

		var status connectionStatus
		unmarshalResult(t, result, &status)
		if !status.Authenticated || !status.Verified || !status.Ready {
			t.Errorf("status = %+v, want authenticated, verified, and ready", status)
		}

		// Subsequent calls carry the issued token.
		listResult, _, err := h.server.ListCharts(context.Background(), nil, ListChartsInput{})
		if err != nil {
			t.Fatalf("ListCharts() error = %v", err)
		}
		if listResult.IsError {
			t.Fatalf("ListCharts() IsError = true, text: %s", resultText(t, listResult))
		}
		last, ok := h.stub.LastRequest()
		if !ok {
			t.Fatal("stub recorded no requests")
		}
		if last.Authorization != "bearer issued-token" {
			t.Errorf("Authorization = %q, want %q", last.Authorization, "bearer issued-token")
		}
	})

	t.Run("keeps prior state on bad credentials", func(t *testing.T) {
		h := newBareHelper(t)
		if err := h.client.Session().SetEndpoint(h.stub.URL()); err != nil {
			t.Fatalf("SetEndpoint() error = %v", err)
		}
		h.stub.SetAccount("ana@example.com", "hunter2", "issued-token")

		result, _, err := h.server.LoginWithPassword(context.Background(), nil, LoginWithPasswordInput{
			Identity: "ana@example.com",
			Secret:   "wrong",
		})
		if err != nil {
			t.Fatalf("LoginWithPassword() error = %v", err)
		}
		if !result.IsError {
			t.Fatal("LoginWithPassword() IsError = false, want true")
		}
		if got := resultText(t, result); !strings.Contains(got, "password login failed") {
			t.Errorf("text = %q, want login failure message", got)
		}
		if h.client.Session().IsAuthenticated() {
			t.Error("session gained a credential from a failed login")
		}
	})

	t.Run("rejects blank fields", func(t *testing.T) {
		h := newBareHelper(t)

		result, _, err := h.server.LoginWithPassword(context.Background(), nil, LoginWithPasswordInput{})
		if err != nil {
			t.Fatalf("LoginWithPassword() error = %v", err)
		}
		if !result.IsError {
			t.Fatal("LoginWithPassword() IsError = false, want true")
		}
		got := resultText(t, result)
		if !strings.Contains(got, "identity: cannot be blank") {
			t.Errorf("text = %q, want blank-identity complaint", got)
		}
		if !strings.Contains(got, "secret: cannot be blank") {
			t.Errorf("text = %q, want blank-secret complaint", got)
		}
	})
}

func TestServer_Logout(t *testing.T) {
	t.Run("clears local and remote", func(t *testing.T) {
		h := newTestHelper(t)

		result, _, err := h.server.Logout(context.Background(), nil, LogoutInput{})
		if err != nil {
			t.Fatalf("Logout() error = %v", err)
		}

		var payload logoutPayload
		unmarshalResult(t, result, &payload)
		if !payload.LocalCleared {
			t.Error("payload.LocalCleared = false, want true")
		}
		if !payload.RemoteOK {
			t.Error("payload.RemoteOK = false, want true")
		}
		if payload.RemoteError != "" {
			t.Errorf("payload.RemoteError = %q, want empty", payload.RemoteError)
		}
		if h.client.Session().IsAuthenticated() {
			t.Error("session still authenticated after logout")
		}

		last, ok := h.stub.LastRequest()
		if !ok {
			t.Fatal("stub recorded no requests")
		}
		if last.Method != http.MethodPost || last.Path != "/api/logout" {
			t.Errorf("remote call = %s %s, want POST /api/logout", last.Method, last.Path)
		}
	})

	t.Run("clears local even when remote fails", func(t *testing.T) {
		h := newTestHelper(t)
		h.stub.FailWith(http.StatusInternalServerError)

		result, _, err := h.server.Logout(context.Background(), nil, LogoutInput{})
		if err != nil {
			t.Fatalf("Logout() error = %v", err)
		}

		var payload logoutPayload
		unmarshalResult(t, result, &payload)
		if !payload.LocalCleared {
			t.Error("payload.LocalCleared = false, want true")
		}
		if payload.RemoteOK {
			t.Error("payload.RemoteOK = true, want false")
		}
		if !strings.Contains(payload.RemoteError, "500") {
			t.Errorf("payload.RemoteError = %q, want the 500 status", payload.RemoteError)
		}
		if h.client.Session().IsAuthenticated() {
			t.Error("session still authenticated after logout")
		}
	})

	t.Run("requires a credential", func(t *testing.T) {
		h := newBareHelper(t)

		result, _, err := h.server.Logout(context.Background(), nil, LogoutInput{})
		if err != nil {
			t.Fatalf("Logout() error = %v", err)
		}
		if !result.IsError {
			t.Fatal("Logout() IsError = false, want true")
		}
		if got := resultText(t, result); got != "not authenticated; call login_with_token or login_with_password first" {
			t.Errorf("text = %q", got)
		}
	})
}

func TestServer_SetOrganization(t *testing.T) {
	t.Run("sets the scope", func(t *testing.T) {
		h := newTestHelper(t)

		result, _, err := h.server.SetOrganization(context.Background(), nil, SetOrganizationInput{OrgID: 7})
		if err != nil {
			t.Fatalf("SetOrganization() error = %v", err)
		}

		var status connectionStatus
		unmarshalResult(t, result, &status)
		if status.OrgID != 7 {
			t.Errorf("status.OrgID = %d, want 7", status.OrgID)
		}
		if orgID, ok := h.client.Session().Scope(); !ok || orgID != 7 {
			t.Errorf("Scope() = (%d, %v), want (7, true)", orgID, ok)
		}
	})

	t.Run("rejects zero", func(t *testing.T) {
		h := newTestHelper(t)

		result, _, err := h.server.SetOrganization(context.Background(), nil, SetOrganizationInput{})
		if err != nil {
			t.Fatalf("SetOrganization() error = %v", err)
		}
		if !result.IsError {
			t.Fatal("SetOrganization() IsError = false, want true")
		}
		if got := resultText(t, result); !strings.Contains(got, "org_id: cannot be blank") {
			t.Errorf("text = %q, want blank-org complaint", got)
		}
	})

	t.Run("rejects negative ids", func(t *testing.T) {
		h := newTestHelper(t)

		result, _, err := h.server.SetOrganization(context.Background(), nil, SetOrganizationInput{OrgID: -3})
		if err != nil {
			t.Fatalf("SetOrganization() error = %v", err)
		}
		if !result.IsError {
			t.Fatal("SetOrganization() IsError = false, want true")
		}
		if got := resultText(t, result); !strings.Contains(got, "must be no less than 1") {
			t.Errorf("text = %q, want minimum complaint", got)
		}
	})
}

func TestServer_VerifyConnection(t *testing.T) {
	t.Run("reports verified against a live dashboard", func(t *testing.T) {
		h := newTestHelper(t)

		result, _, err := h.server.VerifyConnection(context.Background(), nil, VerifyConnectionInput{})
		if err != nil {
			t.Fatalf("VerifyConnection() error = %v", err)
		}

		var status connectionStatus
		unmarshalResult(t, result, &status)
		if !status.Verified {
			t.Error("status.Verified = false, want true")
		}
	})

	t.Run("reports unverified when the dashboard rejects", func(t *testing.T) {
		h := newTestHelper(t)
		h.stub.FailWith(http.StatusServiceUnavailable)

		result, _, err := h.server.VerifyConnection(context.Background(), nil, VerifyConnectionInput{})
		if err != nil {
			t.Fatalf("VerifyConnection() error = %v", err)
		}
		if result.IsError {
			t.Fatalf("VerifyConnection() IsError = true, text: %s", resultText(t, result))
		}

		var status connectionStatus
		unmarshalResult(t, result, &status)
		if status.Verified {
			t.Error("status.Verified = true, want false")
		}
	})

	t.Run("reports unverified on an empty session", func(t *testing.T) {
		h := newBareHelper(t)

		result, _, err := h.server.VerifyConnection(context.Background(), nil, VerifyConnectionInput{})
		if err != nil {
			t.Fatalf("VerifyConnection() error = %v", err)
		}
		if result.IsError {
			t.Fatalf("VerifyConnection() IsError = true, text: %s", resultText(t, result))
		}

		var status connectionStatus
		unmarshalResult(t, result, &status)
		if status.Verified {
			t.Error("status.Verified = true, want false")
		}
	})
}

func TestServer_ConnectionStatus(t *testing.T) {
	t.Run("empty session", func(t *testing.T) {
		h := newBareHelper(t)

		result, _, err := h.server.ConnectionStatus(context.Background(), nil, ConnectionStatusInput{})
		if err != nil {
			t.Fatalf("ConnectionStatus() error = %v", err)
		}

		var status connectionStatus
		unmarshalResult(t, result, &status)
		if status.Endpoint != "" {
			t.Errorf("status.Endpoint = %q, want empty", status.Endpoint)
		}
		if status.Authenticated || status.Verified || status.Ready {
			t.Errorf("status = %+v, want all flags false", status)
		}
		if status.OrgID != 0 {
			t.Errorf("status.OrgID = %d, want 0", status.OrgID)
		}
	})

	t.Run("seeded session still unverified", func(t *testing.T) {
		h := newTestHelper(t)
		h.client.Session().SetScope(42)

		result, _, err := h.server.ConnectionStatus(context.Background(), nil, ConnectionStatusInput{})
		if err != nil {
			t.Fatalf("ConnectionStatus() error = %v", err)
		}

		var status connectionStatus
		unmarshalResult(t, result, &status)
		if status.Endpoint != h.stub.URL() {
			t.Errorf("status.Endpoint = %q, want %q", status.Endpoint, h.stub.URL())
		}
		if !status.Authenticated {
			t.Error("status.Authenticated = false, want true")
		}
		if status.Verified {
			t.Error("status.Verified = true, want false before any probe")
		}
		if status.Ready {
			t.Error("status.Ready = true, want false while unverified")
		}
		if status.OrgID != 42 {
			t.Errorf("status.OrgID = %d, want 42", status.OrgID)
		}
	})

	t.Run("ready session with scope", func(t *testing.T) {
		h := newTestHelper(t)
		h.client.Session().SetScope(42)
		if !h.client.Verify(context.Background()) {
			t.Fatal("Verify() = false, want the stub to accept the seeded token")
		}

		result, _, err := h.server.ConnectionStatus(context.Background(), nil, ConnectionStatusInput{})
		if err != nil {
			t.Fatalf("ConnectionStatus() error = %v", err)
		}

		var status connectionStatus
		unmarshalResult(t, result, &status)
		if !status.Verified {
			t.Error("status.Verified = false, want true after the probe")
		}
		if !status.Ready {
			t.Error("status.Ready = false, want true once verified")
		}
		if status.OrgID != 42 {
			t.Errorf("status.OrgID = %d, want 42", status.OrgID)
		}
	})

	t.Run("makes no network call", func(t *testing.T) {
		h := newTestHelper(t)

		if _, _, err := h.server.ConnectionStatus(context.Background(), nil, ConnectionStatusInput{}); err != nil {
			t.Fatalf("ConnectionStatus() error = %v", err)
		}
		if got := len(h.stub.Requests()); got != 0 {
			t.Errorf("stub recorded %d requests, want 0", got)
		}
	})
}
