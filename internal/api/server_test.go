package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/joakar/starlink-tracker/internal/auth"
	"github.com/joakar/starlink-tracker/internal/catalog"
	"github.com/joakar/starlink-tracker/internal/engine"
	"github.com/joakar/starlink-tracker/internal/propagation"
	"github.com/joakar/starlink-tracker/internal/stats"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

type stubSource struct{}

func (stubSource) Propagate(h propagation.Handle, at time.Time) (propagation.Geo, bool) {
	return propagation.Geo{AltKm: 550}, true
}

func newTestServer(t *testing.T, authCfg auth.Config) (*Server, *engine.App) {
	t.Helper()
	cat := catalog.Ingest([]catalog.Record{
		{Handle: "a", Name: "SAT-A", InclinationDeg: 53},
	}, nil)
	pub := stats.NewPublisher()
	app, err := engine.NewApp(context.Background(), testLogger(), cat, stubSource{}, nil, pub)
	if err != nil {
		t.Fatalf("engine init failed: %v", err)
	}
	return NewServer(":0", app, pub, testLogger(), authCfg, false), app
}

func do(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	srv.HTTPServer().Handler.ServeHTTP(w, req)
	return w
}

func TestStatsBeforeFirstFrame(t *testing.T) {
	srv, _ := newTestServer(t, auth.Config{})
	if w := do(srv, "GET", "/api/v1/stats", ""); w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 before the first snapshot", w.Code)
	}
}

func TestStatsAfterPublish(t *testing.T) {
	srv, _ := newTestServer(t, auth.Config{})
	srv.pub.Offer(func() stats.Snapshot {
		return stats.Snapshot{Speed: 100, ObjectsTotal: 7}
	})

	w := do(srv, "GET", "/api/v1/stats", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var snap stats.Snapshot
	if err := json.NewDecoder(w.Body).Decode(&snap); err != nil {
		t.Fatalf("decoding snapshot: %v", err)
	}
	if snap.Speed != 100 || snap.ObjectsTotal != 7 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestGroupToggleValidation(t *testing.T) {
	srv, _ := newTestServer(t, auth.Config{})

	tests := []struct {
		bucket string
		want   int
	}{
		{"50", http.StatusAccepted},
		{"0", http.StatusAccepted},
		{"170", http.StatusAccepted},
		{"55", http.StatusBadRequest},
		{"180", http.StatusBadRequest},
		{"-10", http.StatusBadRequest},
		{"abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.bucket, func(t *testing.T) {
			w := do(srv, "POST", "/api/v1/groups/"+tt.bucket+"/toggle", "")
			if w.Code != tt.want {
				t.Errorf("bucket %s: status = %d, want %d", tt.bucket, w.Code, tt.want)
			}
		})
	}
}

func TestSpeedValidation(t *testing.T) {
	srv, _ := newTestServer(t, auth.Config{})

	tests := []struct {
		body string
		want int
	}{
		{`{"multiplier": 0}`, http.StatusAccepted},
		{`{"multiplier": 1}`, http.StatusAccepted},
		{`{"multiplier": 1000}`, http.StatusAccepted},
		{`{"multiplier": 7}`, http.StatusBadRequest},
		{`{"multiplier": -1}`, http.StatusBadRequest},
		{`not json`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		w := do(srv, "POST", "/api/v1/control/speed", tt.body)
		if w.Code != tt.want {
			t.Errorf("body %s: status = %d, want %d", tt.body, w.Code, tt.want)
		}
	}
}

func TestTrajectoriesValidation(t *testing.T) {
	srv, _ := newTestServer(t, auth.Config{})

	for _, mode := range []string{"off", "selected", "all"} {
		w := do(srv, "POST", "/api/v1/control/trajectories", `{"mode":"`+mode+`"}`)
		if w.Code != http.StatusAccepted {
			t.Errorf("mode %s: status = %d, want 202", mode, w.Code)
		}
	}
	if w := do(srv, "POST", "/api/v1/control/trajectories", `{"mode":"sideways"}`); w.Code != http.StatusBadRequest {
		t.Errorf("invalid mode accepted with status %d", w.Code)
	}
}

func TestTrajectoriesHours(t *testing.T) {
	srv, _ := newTestServer(t, auth.Config{})

	tests := []struct {
		body string
		want int
	}{
		{`{"mode":"all","hours":3}`, http.StatusAccepted},
		{`{"mode":"all","hours":0.5}`, http.StatusAccepted},
		{`{"mode":"all","hours":24}`, http.StatusAccepted},
		{`{"mode":"all"}`, http.StatusAccepted}, // hours omitted keeps the window
		{`{"mode":"all","hours":0.1}`, http.StatusBadRequest},
		{`{"mode":"all","hours":48}`, http.StatusBadRequest},
		{`{"mode":"all","hours":-1}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		w := do(srv, "POST", "/api/v1/control/trajectories", tt.body)
		if w.Code != tt.want {
			t.Errorf("body %s: status = %d, want %d", tt.body, w.Code, tt.want)
		}
	}
}

func TestAuthProtectsMutators(t *testing.T) {
	srv, _ := newTestServer(t, auth.Config{Enabled: true, Token: "secret"})

	// Mutators need the token.
	if w := do(srv, "POST", "/api/v1/control/autorotate", `{"enabled":false}`); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated mutator: status = %d, want 401", w.Code)
	}

	req := httptest.NewRequest("POST", "/api/v1/control/autorotate", strings.NewReader(`{"enabled":false}`))
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()
	srv.HTTPServer().Handler.ServeHTTP(w, req)
	if w.Code != http.StatusAccepted {
		t.Errorf("authenticated mutator: status = %d, want 202", w.Code)
	}

	// Read-only paths stay public.
	if w := do(srv, "GET", "/healthz", ""); w.Code != http.StatusOK {
		t.Errorf("healthz with auth on: status = %d, want 200", w.Code)
	}
	if w := do(srv, "GET", "/api/v1/stats", ""); w.Code == http.StatusUnauthorized {
		t.Error("stats should be exempt from auth")
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, auth.Config{})
	w := do(srv, "GET", "/healthz", "")
	if w.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", w.Code)
	}
	if got := w.Body.String(); got != "ok\n" {
		t.Errorf("healthz body = %q", got)
	}
}
