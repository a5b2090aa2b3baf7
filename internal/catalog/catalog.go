// Package catalog owns the working set of orbiting objects: the load-time
// data-quality gate, inclination bucketing, deterministic group colors, and
// the group enable/disable state that drives visibility filtering.
package catalog

import (
	"fmt"
	"image/color"
	"sort"
	"sync"

	"github.com/joakar/starlink-tracker/internal/propagation"
)

// bucketWidth is the fixed inclination window, in degrees. Buckets partition
// [0°, 180°).
const bucketWidth = 10

// maxEccentricity is the ingestion cutoff: anything more eccentric is not a
// near-circular constellation orbit and is excluded up front.
const maxEccentricity = 0.01

// palette maps bucket index (inclination/10) to the group display color.
// Color is a function of the bucket, never of the individual object.
var palette = [18]color.RGBA{
	{R: 248, G: 113, B: 113, A: 255}, // 0-10°
	{R: 251, G: 191, B: 36, A: 255},  // 10-20°
	{R: 163, G: 230, B: 53, A: 255},  // 20-30°
	{R: 45, G: 212, B: 191, A: 255},  // 30-40°
	{R: 96, G: 165, B: 250, A: 255},  // 40-50°
	{R: 99, G: 102, B: 241, A: 255},  // 50-60°
	{R: 192, G: 132, B: 252, A: 255}, // 60-70°
	{R: 52, G: 211, B: 153, A: 255},  // 70-80°
	{R: 244, G: 114, B: 182, A: 255}, // 80-90°
	{R: 251, G: 146, B: 60, A: 255},  // 90-100°
	{R: 34, G: 211, B: 238, A: 255},  // 100-110°
	{R: 232, G: 121, B: 249, A: 255}, // 110-120°
	{R: 74, G: 222, B: 128, A: 255},  // 120-130°
	{R: 250, G: 204, B: 21, A: 255},  // 130-140°
	{R: 129, G: 140, B: 248, A: 255}, // 140-150°
	{R: 94, G: 234, B: 212, A: 255},  // 150-160°
	{R: 253, G: 164, B: 175, A: 255}, // 160-170°
	{R: 148, G: 163, B: 184, A: 255}, // 170-180°
}

// Bucket returns the inclination bucket lower bound for v: floor(v/10)*10.
// Values at the open upper boundary fold into the last bucket.
func Bucket(v float64) int {
	b := int(v/bucketWidth) * bucketWidth
	if b < 0 {
		b = 0
	}
	if b >= 180 {
		b = 170
	}
	return b
}

// BucketColor returns the deterministic display color for a bucket.
func BucketColor(bucket int) color.RGBA {
	return palette[bucket/bucketWidth]
}

// BucketLabel returns the display range string for a bucket, e.g. "50-60°".
func BucketLabel(bucket int) string {
	return fmt.Sprintf("%d-%d°", bucket, bucket+bucketWidth)
}

// Record is one orbital-element record handed over by the data-access layer.
type Record struct {
	Handle         propagation.Handle
	Name           string
	InclinationDeg float64
	Eccentricity   float64
	Decayed        bool
	DecayDate      string
}

// Object is a member of the working set. Immutable after ingestion; group
// membership is the only thing that affects its visibility.
type Object struct {
	Name           string
	Handle         propagation.Handle
	InclinationDeg float64
	Bucket         int
	Color          color.RGBA
}

// Group is one inclination bucket with its member count and enabled flag.
type Group struct {
	Bucket  int
	Label   string
	Count   int
	Color   color.RGBA
	Enabled bool
}

// Catalog holds the ingested object set and group state.
type Catalog struct {
	mu       sync.RWMutex
	objects  []Object
	groups   []Group // sorted by bucket
	total    int     // records offered before gating
	onToggle func()  // invoked synchronously on every group toggle
}

// StabilityProbe reports, index-aligned with its input, which handles
// resolved to a steady initial altitude (see propagation.CheckStability).
type StabilityProbe func(handles []propagation.Handle) []bool

// Ingest applies the load-time gate to records and builds the catalog.
// Excluded permanently: records without a handle, flagged decayed, carrying
// a decay date, with eccentricity above the cutoff, or failing the probe.
func Ingest(records []Record, probe StabilityProbe) *Catalog {
	candidates := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Handle == nil || r.Decayed || r.DecayDate != "" || r.Eccentricity > maxEccentricity {
			continue
		}
		candidates = append(candidates, r)
	}

	var stable []bool
	if probe != nil {
		handles := make([]propagation.Handle, len(candidates))
		for i, r := range candidates {
			handles[i] = r.Handle
		}
		stable = probe(handles)
	}

	c := &Catalog{total: len(records)}
	counts := make(map[int]int)
	for i, r := range candidates {
		if stable != nil && !stable[i] {
			continue
		}
		b := Bucket(r.InclinationDeg)
		c.objects = append(c.objects, Object{
			Name:           r.Name,
			Handle:         r.Handle,
			InclinationDeg: r.InclinationDeg,
			Bucket:         b,
			Color:          BucketColor(b),
		})
		counts[b]++
	}

	for b, n := range counts {
		c.groups = append(c.groups, Group{
			Bucket:  b,
			Label:   BucketLabel(b),
			Count:   n,
			Color:   BucketColor(b),
			Enabled: true,
		})
	}
	sort.Slice(c.groups, func(i, j int) bool { return c.groups[i].Bucket < c.groups[j].Bucket })

	return c
}

// OnToggle registers a hook invoked synchronously whenever a group's enabled
// state changes, so the position cache can be invalidated before the next
// frame reads it.
func (c *Catalog) OnToggle(fn func()) {
	c.mu.Lock()
	c.onToggle = fn
	c.mu.Unlock()
}

// Toggle flips one group's enabled flag. Unknown buckets are ignored.
func (c *Catalog) Toggle(bucket int) {
	c.mu.Lock()
	var hook func()
	for i := range c.groups {
		if c.groups[i].Bucket == bucket {
			c.groups[i].Enabled = !c.groups[i].Enabled
			hook = c.onToggle
			break
		}
	}
	c.mu.Unlock()

	if hook != nil {
		hook()
	}
}

// Groups returns a copy of the group list, sorted by bucket.
func (c *Catalog) Groups() []Group {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Group, len(c.groups))
	copy(out, c.groups)
	return out
}

// EnabledObjects returns the objects whose group is currently enabled.
func (c *Catalog) EnabledObjects() []Object {
	c.mu.RLock()
	defer c.mu.RUnlock()

	enabled := make(map[int]bool, len(c.groups))
	for _, g := range c.groups {
		enabled[g.Bucket] = g.Enabled
	}

	out := make([]Object, 0, len(c.objects))
	for _, o := range c.objects {
		if enabled[o.Bucket] {
			out = append(out, o)
		}
	}
	return out
}

// TotalRecords returns how many records were offered at ingestion.
func (c *Catalog) TotalRecords() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.total
}

// ValidObjects returns how many objects survived the gate.
func (c *Catalog) ValidObjects() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.objects)
}
