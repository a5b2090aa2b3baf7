package engine

import (
	"log/slog"
	"time"

	"github.com/joakar/starlink-tracker/internal/catalog"
	"github.com/joakar/starlink-tracker/internal/geo"
	"github.com/joakar/starlink-tracker/internal/metrics"
	"github.com/joakar/starlink-tracker/internal/propagation"
)

// Refresh intervals: propagation is throttled harder while the user drags
// the view so interaction stays smooth over thousands of objects.
const (
	restRefreshInterval = 200 * time.Millisecond
	dragRefreshInterval = 1 * time.Second
)

// CachedPosition is one enabled object's render-space position for the
// current cache generation.
type CachedPosition struct {
	Object catalog.Object
	World  geo.Vec3
	Geo    propagation.Geo
}

// PositionCache decouples the expensive per-object propagation from the
// render cadence. The buffer is rebuilt wholesale and swapped atomically;
// consumers always see either the old or the fully new buffer.
type PositionCache struct {
	src    propagation.Source
	logger *slog.Logger
	now    func() time.Time

	buf        []CachedPosition
	lastUpdate time.Time
	dirty      bool
}

// NewPositionCache creates an empty cache around the given source.
func NewPositionCache(src propagation.Source, logger *slog.Logger) *PositionCache {
	return &PositionCache{src: src, logger: logger, now: time.Now, dirty: true}
}

// Invalidate forces a rebuild on the next Refresh call, regardless of the
// throttle interval. Called synchronously when a group is toggled so the
// very next frame reflects the filter.
func (pc *PositionCache) Invalidate() {
	pc.dirty = true
}

// Positions returns the current buffer. The slice is replaced, never
// mutated in place, so holding it across a Refresh is safe.
func (pc *PositionCache) Positions() []CachedPosition {
	return pc.buf
}

// Refresh rebuilds the buffer if it is dirty or the throttle interval has
// elapsed. simTime is the displayed simulated instant to propagate to;
// dragging widens the interval. Returns true when a rebuild happened.
func (pc *PositionCache) Refresh(simTime time.Time, objects []catalog.Object, dragging bool) bool {
	interval := restRefreshInterval
	if dragging {
		interval = dragRefreshInterval
	}
	if !pc.dirty && pc.now().Sub(pc.lastUpdate) <= interval {
		return false
	}

	start := pc.now()
	next := make([]CachedPosition, 0, len(objects))
	dropped := 0
	for _, obj := range objects {
		g, ok := pc.src.Propagate(obj.Handle, simTime)
		if !ok {
			dropped++
			continue
		}
		if g.AltKm < geo.LiveAltMinKm || g.AltKm > geo.LiveAltMaxKm {
			dropped++
			continue
		}
		world := geo.ToXYZ(g.LonDeg, g.LatDeg, geo.AltitudeToRadius(g.AltKm))
		if !world.IsFinite() {
			dropped++
			continue
		}
		next = append(next, CachedPosition{Object: obj, World: world, Geo: g})
	}

	// Atomic wholesale swap; never a partial mix of generations.
	pc.buf = next
	pc.lastUpdate = pc.now()
	pc.dirty = false

	metrics.ObservePositionRefresh(pc.now().Sub(start), len(next))
	if dropped > 0 {
		pc.logger.Debug("position refresh dropped objects", "dropped", dropped, "kept", len(next))
	}
	return true
}
