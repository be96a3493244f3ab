package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"matdepot/authctl/internal/config"
)

func newTestClient(t *testing.T, handler http.Handler, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(config.APIConfig{
		BaseURL: srv.URL,
		Timeout: 15 * time.Second,
	}, func() string { return token }, zerolog.Nop())
}

func TestTokenHeaderAttachedWhenPresent(t *testing.T) {
	var gotToken, gotRequestID string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("x-auth-token")
		gotRequestID = r.Header.Get("X-Request-Id")
		_ = json.NewEncoder(w).Encode(map[string]any{})
	}), "tok-123")

	if _, err := client.Me(context.Background()); err != nil {
		t.Fatalf("me failed: %v", err)
	}
	if gotToken != "tok-123" {
		t.Fatalf("expected token header, got %q", gotToken)
	}
	if gotRequestID == "" {
		t.Fatalf("expected a request id header")
	}
}

func TestTokenHeaderOmittedWhenAnonymous(t *testing.T) {
	var sawHeader bool
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawHeader = r.Header["X-Auth-Token"]
		w.WriteHeader(http.StatusOK)
	}), "")

	if err := client.RequestOTP(context.Background(), "a@b.com"); err != nil {
		t.Fatalf("request otp failed: %v", err)
	}
	if sawHeader {
		t.Fatalf("anonymous request should not carry a token header")
	}
}

func TestBackendRejectionDecoded(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"msg":  "code expired",
			"code": "EXPIRED",
		})
	}), "")

	err := client.ResetPassword(context.Background(), "a@b.com", "123456", "newpassword")
	apiErr, ok := AsError(err)
	if !ok {
		t.Fatalf("expected a backend rejection, got %v", err)
	}
	if apiErr.Code != CodeExpired || apiErr.Msg != "code expired" || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("unexpected error fields: %+v", apiErr)
	}
}

func TestUnparseableErrorBodyStillTyped(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}), "")

	err := client.Logout(context.Background())
	apiErr, ok := AsError(err)
	if !ok {
		t.Fatalf("expected typed error, got %v", err)
	}
	if apiErr.Status != http.StatusBadGateway || apiErr.Msg == "" {
		t.Fatalf("unexpected error fields: %+v", apiErr)
	}
}

func TestTransportFailureIsNotABackendError(t *testing.T) {
	client := NewClient(config.APIConfig{
		BaseURL: "http://127.0.0.1:1", // nothing listens here
		Timeout: time.Second,
	}, nil, zerolog.Nop())

	_, err := client.Me(context.Background())
	if err == nil {
		t.Fatalf("expected a transport failure")
	}
	if _, ok := AsError(err); ok {
		t.Fatalf("transport failure must not decode as a backend rejection")
	}
	if IsUnauthorized(err) {
		t.Fatalf("transport failure must not look like a 401")
	}
}

func TestLoginEndpointShapes(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "admin@x.com" {
			t.Errorf("unexpected email %q", body["email"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"mfaRequired": true})
	}), "")

	res, err := client.Login(context.Background(), "admin@x.com", "pw")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if !res.MFARequired || res.Token != "" {
		t.Fatalf("expected an mfa challenge, got %+v", res)
	}
}

func TestSessionEndpoints(t *testing.T) {
	var paths []string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}), "tok")

	ctx := context.Background()
	if err := client.RevokeSession(ctx, "sess-2"); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	if err := client.RevokeOtherSessions(ctx); err != nil {
		t.Fatalf("revoke others failed: %v", err)
	}

	want := []string{"DELETE /users/sessions/sess-2", "DELETE /users/sessions"}
	for i, p := range want {
		if paths[i] != p {
			t.Fatalf("expected %q, got %q", p, paths[i])
		}
	}
}
