package engine

import (
	"math"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/joakar/starlink-tracker/internal/geo"
	"github.com/joakar/starlink-tracker/internal/metrics"
	"github.com/joakar/starlink-tracker/internal/propagation"
)

// Trajectory validity sampling parameters. A trajectory is drawn only when
// the orbit looks physically plausible over the whole window: every sample
// resolvable, altitudes inside the wide band, and inter-sample ground
// distances consistent with a near-circular orbit.
const (
	trajSamples          = 10
	trajSampleSpacing    = 5 * time.Minute
	trajValidityTTL      = 30 * time.Second
	trajMaxAltSpreadKm   = 500.0
	trajMaxDistDeviation = 0.5
)

// TrajectoryFilter memoizes per-object trajectory validity verdicts.
// Verdicts expire after trajValidityTTL so a satellite whose elements go
// stale is re-examined rather than trusted forever.
type TrajectoryFilter struct {
	src   propagation.Source
	cache *expirable.LRU[propagation.Handle, bool]
}

// NewTrajectoryFilter creates a filter sized for a full constellation.
func NewTrajectoryFilter(src propagation.Source) *TrajectoryFilter {
	return newTrajectoryFilterWithTTL(src, trajValidityTTL)
}

// newTrajectoryFilterWithTTL injects the verdict lifetime for tests.
func newTrajectoryFilterWithTTL(src propagation.Source, ttl time.Duration) *TrajectoryFilter {
	return &TrajectoryFilter{
		src:   src,
		cache: expirable.NewLRU[propagation.Handle, bool](16384, nil, ttl),
	}
}

// Valid reports whether the object's trajectory over the sampling window
// should be drawn. Results are cached; at is the window start.
func (tf *TrajectoryFilter) Valid(h propagation.Handle, at time.Time) bool {
	if v, ok := tf.cache.Get(h); ok {
		metrics.TrajectoryCacheHit()
		return v
	}
	metrics.TrajectoryCacheMiss()
	v := tf.evaluate(h, at)
	tf.cache.Add(h, v)
	return v
}

func (tf *TrajectoryFilter) evaluate(h propagation.Handle, at time.Time) bool {
	samples := make([]propagation.Geo, 0, trajSamples)
	for i := 0; i < trajSamples; i++ {
		g, ok := tf.src.Propagate(h, at.Add(time.Duration(i)*trajSampleSpacing))
		if !ok || !finiteGeo(g) {
			return false
		}
		if g.AltKm < geo.TrajAltMinKm || g.AltKm > geo.TrajAltMaxKm {
			return false
		}
		samples = append(samples, g)
	}

	minAlt, maxAlt := samples[0].AltKm, samples[0].AltKm
	for _, g := range samples[1:] {
		if g.AltKm < minAlt {
			minAlt = g.AltKm
		}
		if g.AltKm > maxAlt {
			maxAlt = g.AltKm
		}
	}
	if maxAlt-minAlt > trajMaxAltSpreadKm {
		return false
	}

	// Consecutive ground distances must be roughly uniform; a decayed or
	// mis-propagated object produces erratic jumps between samples.
	dists := make([]float64, 0, len(samples)-1)
	var sum float64
	for i := 1; i < len(samples); i++ {
		d := geo.GroundDistanceKm(
			samples[i-1].LatDeg, samples[i-1].LonDeg, samples[i-1].AltKm,
			samples[i].LatDeg, samples[i].LonDeg, samples[i].AltKm,
		)
		dists = append(dists, d)
		sum += d
	}
	mean := sum / float64(len(dists))
	if mean <= 0 {
		return false
	}
	for _, d := range dists {
		if d < mean*(1-trajMaxDistDeviation) || d > mean*(1+trajMaxDistDeviation) {
			return false
		}
	}
	return true
}

// finiteGeo reports whether all three geographic components are finite.
// NaN compares false against every band and spread bound, so a non-finite
// sample has to be rejected before those checks run.
func finiteGeo(g propagation.Geo) bool {
	return !math.IsNaN(g.LatDeg) && !math.IsInf(g.LatDeg, 0) &&
		!math.IsNaN(g.LonDeg) && !math.IsInf(g.LonDeg, 0) &&
		!math.IsNaN(g.AltKm) && !math.IsInf(g.AltKm, 0)
}

// Purge drops all memoized verdicts. Used when a new element set is
// swapped in.
func (tf *TrajectoryFilter) Purge() {
	tf.cache.Purge()
}
