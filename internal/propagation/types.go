package propagation

import "time"

// Handle is an opaque reference to a parsed orbital-element set. The engine
// never inspects it; it is only handed back to the Source that produced it.
type Handle any

// Geo is a geographic position relative to Earth's surface at an instant.
type Geo struct {
	LatDeg float64
	LonDeg float64
	AltKm  float64
}

// Source propagates an element handle to an absolute instant. ok is false
// when the element set is not resolvable at that instant; callers drop the
// sample silently rather than surfacing an error.
type Source interface {
	Propagate(h Handle, at time.Time) (Geo, bool)
}
