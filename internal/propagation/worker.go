package propagation

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/joakar/starlink-tracker/internal/geo"
)

// Load-time stability gate parameters. Each candidate is sampled a few
// minutes apart; an object whose altitude cannot be resolved, leaves the
// ingest band, or swings more than the spread limit is rejected before it
// ever enters the catalog.
const (
	stabilitySamples     = 3
	stabilitySpacing     = 90 * time.Second
	stabilityMaxSpreadKm = 50.0
)

// stabilityJob is a unit of work for the gate worker pool.
type stabilityJob struct {
	idx    int
	handle Handle
}

// CheckStability probes every handle at stabilitySamples closely spaced
// instants starting at base and reports, per handle, whether the object
// resolved to a steady altitude inside the ingest band. Runs on a bounded
// worker pool; the result slice is index-aligned with handles.
func CheckStability(ctx context.Context, src Source, handles []Handle, base time.Time, workers int, logger *slog.Logger) []bool {
	result := make([]bool, len(handles))
	if len(handles) == 0 {
		return result
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan stabilityJob, workers*2)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				result[job.idx] = stableAltitude(src, job.handle, base)
			}
		}()
	}

	var fed int
feed:
	for i, h := range handles {
		select {
		case jobs <- stabilityJob{idx: i, handle: h}:
			fed++
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	passed := 0
	for _, ok := range result {
		if ok {
			passed++
		}
	}
	logger.Info("stability gate complete",
		"candidates", len(handles),
		"checked", fed,
		"passed", passed,
	)
	return result
}

// stableAltitude samples one object and applies the band and spread checks.
func stableAltitude(src Source, h Handle, base time.Time) bool {
	minAlt := math.Inf(1)
	maxAlt := math.Inf(-1)

	for i := 0; i < stabilitySamples; i++ {
		g, ok := src.Propagate(h, base.Add(time.Duration(i)*stabilitySpacing))
		if !ok {
			return false
		}
		if g.AltKm < geo.IngestAltMinKm || g.AltKm > geo.IngestAltMaxKm {
			return false
		}
		minAlt = math.Min(minAlt, g.AltKm)
		maxAlt = math.Max(maxAlt, g.AltKm)
	}

	return maxAlt-minAlt <= stabilityMaxSpreadKm
}
