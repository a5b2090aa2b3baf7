package engine

import (
	"math"

	"github.com/joakar/starlink-tracker/internal/borders"
	"github.com/joakar/starlink-tracker/internal/geo"
)

// maxEdgeAngleRad is the densification threshold: after load, no border edge
// spans more than this angle (~2.9°) at the sphere's center.
const maxEdgeAngleRad = 0.05

// Stroke suppression thresholds (see strokeSegments). Screen distance scales
// with zoom; world distance is absolute in render units.
const (
	strokeMaxScreenPerZoom = 15.0
	strokeMaxWorldDist     = 12.0
)

// Ring is a closed country-border ring pre-digested into render-space
// points, densified along great circles at load time. Immutable after
// construction except for internal per-frame scratch buffers; owned by the
// border processor, read by the frame orchestrator.
type Ring struct {
	pts []geo.Vec3

	rot  []geo.Vec3  // per-frame rotated points
	path []PathPoint // per-frame clipped path
}

// PathPoint is one vertex of a clipped fill path, in screen pixels relative
// to the view center. Limb marks a synthesized hemisphere-boundary point.
type PathPoint struct {
	X, Y float64
	Limb bool
}

// BuildRings converts raw lon/lat rings into render-space rings, inserting
// great-circle interpolated points so no edge exceeds maxEdgeAngleRad. The
// closing edge (last back to first) is densified too.
func BuildRings(src []borders.Ring) []Ring {
	radius := geo.EarthRadiusUnits * geo.BorderRadiusFactor
	out := make([]Ring, 0, len(src))

	for _, raw := range src {
		if len(raw) < 3 {
			continue
		}
		pts3 := make([]geo.Vec3, len(raw))
		for i, ll := range raw {
			pts3[i] = geo.ToXYZ(ll[0], ll[1], radius)
		}

		var dense []geo.Vec3
		for i := range pts3 {
			a := pts3[i]
			b := pts3[(i+1)%len(pts3)]
			dense = append(dense, a)

			angle := geo.AngularDistance(a, b)
			if angle > maxEdgeAngleRad {
				steps := int(math.Ceil(angle / maxEdgeAngleRad))
				for s := 1; s < steps; s++ {
					dense = append(dense, geo.Slerp(a, b, float64(s)/float64(steps)))
				}
			}
		}
		out = append(out, Ring{pts: dense})
	}
	return out
}

// PointCount returns the number of stored points (after densification).
func (r *Ring) PointCount() int { return len(r.pts) }

// Clip projects the ring through the current view and clips it against the
// visible hemisphere. Front-facing points are kept; at each visibility flip the
// exact depth-zero crossing is found by interpolating the original 3D edge,
// so the inserted point lies on the silhouette. The returned slice is valid
// until the next Clip call on this ring.
func (r *Ring) Clip(yaw, pitch, zoom float64) []PathPoint {
	n := len(r.pts)
	if cap(r.rot) < n {
		r.rot = make([]geo.Vec3, n)
	}
	rot := r.rot[:n]
	for i, p := range r.pts {
		rot[i] = RotateView(p, yaw, pitch)
	}

	out := r.path[:0]
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		di, dj := rot[i].Z, rot[j].Z

		if di > 0 {
			out = append(out, PathPoint{X: rot[i].X * zoom, Y: -rot[i].Y * zoom})
		}
		if (di > 0) != (dj > 0) {
			dd := di - dj
			if math.Abs(dd) < 1e-12 {
				// Both effectively on the boundary; no crossing to insert.
				continue
			}
			t := di / dd
			cv := RotateView(r.pts[i].Lerp(r.pts[j], t), yaw, pitch)
			out = append(out, PathPoint{X: cv.X * zoom, Y: -cv.Y * zoom, Limb: true})
		}
	}
	r.path = out
	return out
}

// strokeSegment is a drawable border edge in screen pixels relative to the
// view center.
type strokeSegment struct {
	X1, Y1, X2, Y2 float64
}

// StrokeSegments appends the ring edges eligible for a border stroke: both
// endpoints front-facing, screen length under 15×zoom pixels, and world
// length under an absolute bound. The distance checks suppress spurious long
// strokes across the silhouette discontinuity. The rotated-point scratch
// from the most recent Clip call is reused, so call Clip first each frame.
func (r *Ring) StrokeSegments(zoom float64, out []strokeSegment) []strokeSegment {
	n := len(r.pts)
	rot := r.rot[:n]
	maxScreen := strokeMaxScreenPerZoom * zoom

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		a, b := rot[i], rot[j]
		if a.Z <= 0 || b.Z <= 0 {
			continue
		}

		x1, y1 := a.X*zoom, -a.Y*zoom
		x2, y2 := b.X*zoom, -b.Y*zoom
		if math.Hypot(x2-x1, y2-y1) > maxScreen {
			continue
		}
		if r.pts[i].Sub(r.pts[j]).Norm() > strokeMaxWorldDist {
			continue
		}
		out = append(out, strokeSegment{X1: x1, Y1: y1, X2: x2, Y2: y2})
	}
	return out
}

// arcClockwise resolves which way around the silhouette circle to stitch two
// consecutive limb points: the counter-clockwise span from the first angle
// to the second is measured, and when it exceeds π the short way around is
// clockwise. Always takes the shorter arc, which can pick the wrong side for
// rings wrapping a pole.
func arcClockwise(fromAngle, toAngle float64) bool {
	span := math.Mod(toAngle-fromAngle, 2*math.Pi)
	if span < 0 {
		span += 2 * math.Pi
	}
	return span > math.Pi
}
