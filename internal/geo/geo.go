// Package geo maps geographic coordinates into the render-space sphere and
// provides the spherical math shared by the border processor and the
// trajectory filter.
//
// Render space is a unit system of our own: the globe surface sits at
// EarthRadiusUnits from the origin, and one kilometre of real altitude maps
// to UnitsPerKm render units (additionally damped for display, see AltitudeToRadius).
package geo

import "math"

// EarthRadiusKm is the mean Earth radius in kilometres.
const EarthRadiusKm = 6371.0

// EarthRadiusUnits is the render-space radius of the globe surface.
const EarthRadiusUnits = 200.0

// UnitsPerKm converts kilometres to render units. Used consistently for
// border geometry and object altitudes.
const UnitsPerKm = EarthRadiusUnits / EarthRadiusKm

// BorderRadiusFactor places border geometry fractionally below the rendered
// globe surface so the filled sphere does not z-fight the map.
const BorderRadiusFactor = 0.998

// AltitudeDamping compresses display altitudes toward the surface so that
// high orbits stay visually close to the globe.
const AltitudeDamping = 0.8

// Altitude bands in kilometres. These three bands intentionally differ and
// must not be unified: the live band gates what is drawn each frame, the
// ingest band gates what enters the catalog at load time, and the trajectory
// band tolerates the wider altitude swing of predicted eccentric samples.
const (
	LiveAltMinKm = 200.0
	LiveAltMaxKm = 800.0

	IngestAltMinKm = 200.0
	IngestAltMaxKm = 1000.0

	TrajAltMinKm = 100.0
	TrajAltMaxKm = 2000.0
)

// Vec3 is a point or direction in render space.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Norm() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

// Lerp returns v + t*(o-v), interpolating componentwise.
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	return Vec3{
		X: v.X + (o.X-v.X)*t,
		Y: v.Y + (o.Y-v.Y)*t,
		Z: v.Z + (o.Z-v.Z)*t,
	}
}

// IsFinite reports whether all components are finite.
func (v Vec3) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}

// ToXYZ converts longitude/latitude in degrees and a render-space radius to a
// Cartesian point. Longitude is negated so that the globe spins the way the
// source map data expects (east-positive data, west-positive view convention).
func ToXYZ(lonDeg, latDeg, radius float64) Vec3 {
	lon := -lonDeg * math.Pi / 180.0
	lat := latDeg * math.Pi / 180.0

	cosLat := math.Cos(lat)
	return Vec3{
		X: radius * cosLat * math.Cos(lon),
		Y: radius * math.Sin(lat),
		Z: radius * cosLat * math.Sin(lon),
	}
}

// AltitudeToRadius converts an altitude in kilometres above the surface to a
// render-space radius, applying the display damping factor.
func AltitudeToRadius(altKm float64) float64 {
	return EarthRadiusUnits + altKm*UnitsPerKm*AltitudeDamping
}

// AngularDistance returns the angle in radians subtended at the origin by
// two points (need not be normalized). Degenerate inputs return 0.
func AngularDistance(a, b Vec3) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	c := a.Dot(b) / (na * nb)
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	return math.Acos(c)
}

// Slerp interpolates along the great circle between a and b at parameter
// t in [0,1]. Falls back to linear interpolation when the points are nearly
// coincident or antipodal (sin of the angle underflows).
func Slerp(a, b Vec3, t float64) Vec3 {
	omega := AngularDistance(a, b)
	sinOmega := math.Sin(omega)
	if sinOmega < 1e-9 {
		return a.Lerp(b, t)
	}
	fa := math.Sin((1-t)*omega) / sinOmega
	fb := math.Sin(t*omega) / sinOmega
	return a.Scale(fa).Add(b.Scale(fb))
}

// GroundDistanceKm returns the great-circle distance between two geographic
// points using the spherical law of cosines, with the arc radius raised by
// the mean of the two altitudes.
func GroundDistanceKm(lat1, lon1, alt1, lat2, lon2, alt2 float64) float64 {
	p1 := lat1 * math.Pi / 180.0
	p2 := lat2 * math.Pi / 180.0
	dl := (lon2 - lon1) * math.Pi / 180.0

	c := math.Sin(p1)*math.Sin(p2) + math.Cos(p1)*math.Cos(p2)*math.Cos(dl)
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	r := EarthRadiusKm + (alt1+alt2)/2
	return r * math.Acos(c)
}
