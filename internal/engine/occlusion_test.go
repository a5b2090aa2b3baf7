package engine

import (
	"testing"

	"github.com/joakar/starlink-tracker/internal/geo"
)

func TestOccluded(t *testing.T) {
	const r = geo.EarthRadiusUnits

	tests := []struct {
		name string
		v    geo.Vec3
		want bool
	}{
		{"directly in front", geo.Vec3{Z: r + 50}, false},
		{"directly behind", geo.Vec3{Z: -(r + 50)}, true},
		{"center of sphere", geo.Vec3{}, true},
		{"on the near surface", geo.Vec3{Z: r}, false},
		{"just inside near surface", geo.Vec3{Z: r - 1e-9}, true},
		{"outside the silhouette, behind", geo.Vec3{X: r + 10, Z: -500}, false},
		{"outside the silhouette, in front", geo.Vec3{X: r + 10, Z: 500}, false},
		{"on the silhouette edge, behind", geo.Vec3{X: r, Z: -100}, false},
		{"inside silhouette, behind the surface", geo.Vec3{X: r / 2, Z: 0}, true},
		{"inside silhouette, above the surface", geo.Vec3{X: r / 2, Z: r}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Occluded(tt.v, r); got != tt.want {
				t.Errorf("Occluded(%+v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}
