package propagation

import (
	"fmt"
	"math"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
)

// SGP4 library choice: github.com/joshuaferrara/go-satellite
//
// Pure Go (no CGO), explicit TEME output with ECIToLLA for geodetic
// conversion, battle-tested since 2016.
//
// Note: Propagate() takes Satellite by value so SGP4 error codes are not
// visible to the caller. Failures are detected by checking the output for
// NaN/Inf and unreasonable position magnitudes.

// elements wraps an initialized SGP4 model for one object. It is the
// concrete type behind the opaque Handle issued by SGP4Source.
type elements struct {
	sat  satellite.Satellite
	name string
}

// SGP4Source issues element handles and propagates them to geographic
// positions. Stateless; safe for concurrent use.
type SGP4Source struct{}

// NewElements parses a TLE line pair into an opaque handle. Returns an error
// if the lines are malformed or the SGP4 model fails to initialize.
//
// Pre-validates the line format before passing to the library, because
// go-satellite calls log.Fatal on malformed input.
func (SGP4Source) NewElements(name, line1, line2 string) (Handle, error) {
	if err := validateTLELines(line1, line2); err != nil {
		return nil, fmt.Errorf("invalid TLE for %q: %w", name, err)
	}

	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS84)
	if sat.Error != 0 {
		return nil, fmt.Errorf("sgp4 init failed for %q: code=%d %s", name, sat.Error, sat.ErrorStr)
	}
	return &elements{sat: sat, name: name}, nil
}

// validateTLELines performs basic format validation on TLE lines.
func validateTLELines(line1, line2 string) error {
	line1 = strings.TrimSpace(line1)
	line2 = strings.TrimSpace(line2)

	if len(line1) != 69 {
		return fmt.Errorf("line1 length %d, expected 69", len(line1))
	}
	if len(line2) != 69 {
		return fmt.Errorf("line2 length %d, expected 69", len(line2))
	}
	if line1[0] != '1' {
		return fmt.Errorf("line1 must start with '1', got '%c'", line1[0])
	}
	if line2[0] != '2' {
		return fmt.Errorf("line2 must start with '2', got '%c'", line2[0])
	}
	return nil
}

// Propagate implements Source. The SGP4 TEME output is converted to
// geodetic latitude/longitude/altitude via GMST at the target instant.
func (SGP4Source) Propagate(h Handle, at time.Time) (Geo, bool) {
	el, ok := h.(*elements)
	if !ok {
		return Geo{}, false
	}

	t := at.UTC()
	pos, _ := satellite.Propagate(el.sat, t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())

	if !finite(pos.X) || !finite(pos.Y) || !finite(pos.Z) {
		return Geo{}, false
	}
	mag := math.Sqrt(pos.X*pos.X + pos.Y*pos.Y + pos.Z*pos.Z)
	if mag < 6200.0 || mag > 50000.0 {
		return Geo{}, false
	}

	gmst := satellite.GSTimeFromDate(t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
	altKm, _, ll := satellite.ECIToLLA(pos, gmst)

	latDeg := ll.Latitude * 180.0 / math.Pi
	lonDeg := normalizeLon(ll.Longitude * 180.0 / math.Pi)

	if !finite(latDeg) || !finite(lonDeg) || !finite(altKm) {
		return Geo{}, false
	}

	return Geo{LatDeg: latDeg, LonDeg: lonDeg, AltKm: altKm}, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func normalizeLon(lon float64) float64 {
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return lon
}
