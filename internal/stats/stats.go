// Package stats exposes a point-in-time snapshot of the running engine to
// the HTTP surface without letting readers touch frame-loop state.
package stats

import (
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// GroupStat is one inclination bucket's share of the catalog.
type GroupStat struct {
	Bucket  int    `json:"bucket"`
	Label   string `json:"label"`
	Count   int    `json:"count"`
	Enabled bool   `json:"enabled"`
}

// Snapshot is the engine state as of its Taken instant.
type Snapshot struct {
	Taken          time.Time   `json:"taken"`
	SimTime        time.Time   `json:"sim_time"`
	Speed          int         `json:"speed"`
	AutoRotate     bool        `json:"auto_rotate"`
	TrajectoryMode string      `json:"trajectory_mode"`
	ObjectsTotal   int         `json:"objects_total"`
	ObjectsValid   int         `json:"objects_valid"`
	ObjectsCached  int         `json:"objects_cached"`
	ObjectsVisible int         `json:"objects_visible"`
	Selected       string      `json:"selected,omitempty"`
	Groups         []GroupStat `json:"groups"`
}

// Publisher hands frame-loop snapshots to HTTP readers. Writes are rate
// limited so the frame loop never builds more than a few snapshots per
// second; reads are a single atomic pointer load.
type Publisher struct {
	limiter *rate.Limiter
	current atomic.Pointer[Snapshot]
}

// NewPublisher allows at most two snapshot builds per second.
func NewPublisher() *Publisher {
	return &Publisher{limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 1)}
}

// Offer builds and stores a snapshot if the rate limit allows it. build is
// only invoked when a write will actually happen.
func (p *Publisher) Offer(build func() Snapshot) {
	if !p.limiter.Allow() {
		return
	}
	s := build()
	p.current.Store(&s)
}

// Latest returns the most recent snapshot, or nil before the first frame.
func (p *Publisher) Latest() *Snapshot {
	return p.current.Load()
}
