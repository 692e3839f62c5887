package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/halcyonlab/entra-token-util/internal/catalog"
	"github.com/halcyonlab/entra-token-util/internal/deviceflow"
	"github.com/halcyonlab/entra-token-util/internal/metrics"
	"github.com/halcyonlab/entra-token-util/internal/provider"
	"github.com/halcyonlab/entra-token-util/internal/session"
)

// fakeEntra simulates the identity provider: a fixed device code response
// and a token endpoint that stays pending for pendingPolls calls.
type fakeEntra struct {
	pendingPolls int32
	polls        int32
}

func (f *fakeEntra) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/v2.0/devicecode", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"device_code":      "d1",
			"user_code":        "U1",
			"verification_uri": "https://microsoft.com/devicelogin",
			"interval":         5,
			"expires_in":       900,
		})
	})
	mux.HandleFunc("/oauth2/v2.0/token", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&f.polls, 1) <= atomic.LoadInt32(&f.pendingPolls) {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "authorization_pending"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "tok",
			"refresh_token": "ref",
			"expires_in":    3599,
		})
	})
	return mux
}

func newTestServer(t *testing.T, entra *fakeEntra) *server {
	t.Helper()

	backend := httptest.NewServer(entra.handler())
	t.Cleanup(backend.Close)

	cfg := ServeConfig{DefaultScope: catalog.DefaultScope}
	client := provider.NewClient(provider.Config{Authority: backend.URL})
	flow := deviceflow.New(client, session.NewMemoryStore(),
		deviceflow.WithMetrics(metrics.New(prometheus.NewRegistry())),
	)

	cat, err := catalog.Load("")
	if err != nil {
		t.Fatal(err)
	}
	scopes, err := catalog.LoadScopeMap("")
	if err != nil {
		t.Fatal(err)
	}

	return newServer(cfg, flow, cat, scopes, prometheus.NewRegistry(), zap.NewNop())
}

func TestDeviceFlowEndToEnd(t *testing.T) {
	entra := &fakeEntra{pendingPolls: 1}
	srv := newTestServer(t, entra)

	// Start a flow.
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/device-code",
		strings.NewReader(`{"client_id":"abc"}`)))
	if w.Code != http.StatusOK {
		t.Fatalf("start status = %d; body: %s", w.Code, w.Body.String())
	}

	var start struct {
		SessionID string `json:"session_id"`
		UserCode  string `json:"user_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &start); err != nil {
		t.Fatalf("decoding start response: %v", err)
	}
	if start.UserCode != "U1" {
		t.Errorf("user code = %q, want U1", start.UserCode)
	}
	if start.SessionID == "" {
		t.Fatal("expected a session id")
	}

	// First poll: pending.
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/poll-token/"+start.SessionID, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("poll status = %d; body: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "pending") {
		t.Fatalf("expected pending, got %s", w.Body.String())
	}

	// Second poll: token issued.
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/poll-token/"+start.SessionID, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("poll status = %d; body: %s", w.Code, w.Body.String())
	}
	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &token); err != nil {
		t.Fatalf("decoding token response: %v", err)
	}
	if token.AccessToken != "tok" {
		t.Errorf("access token = %q, want tok", token.AccessToken)
	}

	// Third poll: the session was consumed.
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/poll-token/"+start.SessionID, nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("poll after completion status = %d, want 404", w.Code)
	}
}

func TestPollUnknownSession(t *testing.T) {
	srv := newTestServer(t, &fakeEntra{})

	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/poll-token/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	srv := newTestServer(t, &fakeEntra{})

	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", w.Code)
	}
}

func TestPinnedAppsEndpoint(t *testing.T) {
	srv := newTestServer(t, &fakeEntra{})

	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/apps", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var apps []catalog.App
	if err := json.Unmarshal(w.Body.Bytes(), &apps); err != nil {
		t.Fatalf("decoding apps: %v", err)
	}
	if len(apps) != 4 {
		t.Errorf("got %d pinned apps, want 4", len(apps))
	}
}
