// Package engine implements the real-time globe rendering core: the view
// transform, hemisphere clipping for border rings, sphere occlusion, the
// simulation clock, the throttled position cache, and the frame orchestrator.
package engine

import (
	"math"

	"github.com/joakar/starlink-tracker/internal/geo"
)

// Projected is a point after view rotation and screen projection. X/Y are in
// pixels relative to the view center, with screen Y growing downward. Depth
// is the view-space Z before zoom; positive means toward the camera.
type Projected struct {
	X, Y  float64
	Depth float64
}

// RotateView applies the view rotation to p: yaw about the vertical axis
// first, then pitch about the horizontal axis. The returned Z is the depth
// used for occlusion and draw ordering.
func RotateView(p geo.Vec3, yaw, pitch float64) geo.Vec3 {
	sinY, cosY := math.Sincos(yaw)
	sinP, cosP := math.Sincos(pitch)

	x1 := p.X*cosY + p.Z*sinY
	z1 := -p.X*sinY + p.Z*cosY

	y2 := p.Y*cosP - z1*sinP
	z2 := p.Y*sinP + z1*cosP

	return geo.Vec3{X: x1, Y: y2, Z: z2}
}

// InverseRotateView undoes RotateView for the same angle pair.
func InverseRotateView(p geo.Vec3, yaw, pitch float64) geo.Vec3 {
	sinY, cosY := math.Sincos(yaw)
	sinP, cosP := math.Sincos(pitch)

	y1 := p.Y*cosP + p.Z*sinP
	z1 := -p.Y*sinP + p.Z*cosP

	x2 := p.X*cosY - z1*sinY
	z2 := p.X*sinY + z1*cosY

	return geo.Vec3{X: x2, Y: y1, Z: z2}
}

// Project rotates p by the view angles and projects to screen space. Screen Y
// is flipped because image coordinates grow downward. NaN inputs propagate;
// callers filter before drawing.
func Project(p geo.Vec3, yaw, pitch, zoom float64) Projected {
	v := RotateView(p, yaw, pitch)
	return Projected{X: v.X * zoom, Y: -v.Y * zoom, Depth: v.Z}
}
