package health

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthz(t *testing.T) {
	w := httptest.NewRecorder()
	Healthz(w, httptest.NewRequest("GET", "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "ok\n" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestReadyzGate(t *testing.T) {
	// Readiness is process-global, so the not-ready case must run first.
	w := httptest.NewRecorder()
	Readyz(w, httptest.NewRequest("GET", "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("before SetReady: status = %d, want 503", w.Code)
	}

	SetReady()
	w = httptest.NewRecorder()
	Readyz(w, httptest.NewRequest("GET", "/readyz", nil))
	if w.Code != http.StatusOK {
		t.Errorf("after SetReady: status = %d, want 200", w.Code)
	}
	if w.Body.String() != "ready\n" {
		t.Errorf("body = %q", w.Body.String())
	}
}
