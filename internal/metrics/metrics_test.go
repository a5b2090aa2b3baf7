package metrics

import (
	"strconv"
	"testing"
)

func TestNormalizeRoute(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		// Known exact routes.
		{"/healthz", "/healthz"},
		{"/readyz", "/readyz"},
		{"/metrics", "/metrics"},
		{"/api/v1/stats", "/api/v1/stats"},
		{"/api/v1/control/speed", "/api/v1/control/speed"},
		{"/api/v1/control/autorotate", "/api/v1/control/autorotate"},
		{"/api/v1/control/trajectories", "/api/v1/control/trajectories"},

		// Parameterized toggle routes collapse to one label.
		{"/api/v1/groups/50/toggle", "/api/v1/groups/{bucket}/toggle"},
		{"/api/v1/groups/170/toggle", "/api/v1/groups/{bucket}/toggle"},

		// Unknown/bot paths collapse to "other".
		{"/", "other"},
		{"/wp-admin", "other"},
		{"/robots.txt", "other"},
		{"/.env", "other"},
		{"/api/v2/something", "other"},
		{"/favicon.ico", "other"},
		{"/api/v1/groups/50", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := normalizeRoute(tt.path)
			if got != tt.want {
				t.Errorf("normalizeRoute(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

// TestRouteCardinality verifies that many distinct buckets produce exactly
// one toggle label, not one label per bucket.
func TestRouteCardinality(t *testing.T) {
	seen := make(map[string]bool)
	for b := 0; b <= 170; b += 10 {
		seen[normalizeRoute("/api/v1/groups/"+strconv.Itoa(b)+"/toggle")] = true
	}
	if len(seen) != 1 {
		t.Errorf("toggle routes produced %d labels, want 1", len(seen))
	}
}
