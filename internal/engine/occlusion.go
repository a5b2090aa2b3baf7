package engine

import (
	"math"

	"github.com/joakar/starlink-tracker/internal/geo"
)

// Occluded reports whether the globe blocks a view-space point from the
// camera. d is the perpendicular distance from the view axis; inside the
// silhouette the sphere surface toward the camera sits at depth
// sqrt(r² − d²), and anything behind that surface is hidden.
func Occluded(v geo.Vec3, sphereRadius float64) bool {
	d := math.Hypot(v.X, v.Y)
	if d >= sphereRadius {
		return false
	}
	surface := math.Sqrt(sphereRadius*sphereRadius - d*d)
	return v.Z < surface
}
