package engine

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/joakar/starlink-tracker/internal/borders"
	"github.com/joakar/starlink-tracker/internal/catalog"
	"github.com/joakar/starlink-tracker/internal/geo"
	"github.com/joakar/starlink-tracker/internal/propagation"
	"github.com/joakar/starlink-tracker/internal/stats"
)

const pickRadiusPx = 10.0

// renderPoint is one cached object projected into the current frame.
type renderPoint struct {
	X, Y     float64
	Depth    float64
	Occluded bool
	Idx      int // index into the position cache buffer
}

// App owns the frame loop. All mutable state lives on the loop goroutine;
// other goroutines interact through Enqueue.
type App struct {
	logger *slog.Logger
	ctx    context.Context

	Clock   *Clock
	Catalog *catalog.Catalog
	cache   *PositionCache
	filter  *TrajectoryFilter
	src     propagation.Source
	rings   []Ring
	pub     *stats.Publisher

	commands chan Command

	view      ViewState
	speedIdx  int
	resumeIdx int

	dragLastX, dragLastY float64
	dragTravel           float64

	width, height int
	font          *text.GoTextFaceSource

	points   []renderPoint
	segs     []strokeSegment
	vertices []ebiten.Vertex
	indices  []uint16
	visible  int

	background *ebiten.Image
	bgDirty    bool
}

// NewApp wires the engine together. Commands enqueued before RunGame
// starts are applied on the first frame.
func NewApp(ctx context.Context, logger *slog.Logger, cat *catalog.Catalog, src propagation.Source, rings []borders.Ring, pub *stats.Publisher) (*App, error) {
	font, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("loading font: %w", err)
	}

	a := &App{
		logger:    logger,
		ctx:       ctx,
		Clock:     NewClock(),
		Catalog:   cat,
		src:       src,
		rings:     BuildRings(rings),
		pub:       pub,
		commands:  make(chan Command, 64),
		view:      NewViewState(),
		speedIdx:  1, // real time
		resumeIdx: 1,
		font:      font,
		bgDirty:   true,
	}
	a.cache = NewPositionCache(src, logger)
	a.filter = NewTrajectoryFilter(src)
	cat.OnToggle(a.cache.Invalidate)
	return a, nil
}

// Enqueue schedules a mutation for the next frame. Drops the command when
// the queue is saturated; the control surface can retry.
func (a *App) Enqueue(cmd Command) bool {
	select {
	case a.commands <- cmd:
		return true
	default:
		a.logger.Warn("command queue full, dropping command")
		return false
	}
}

// SwapCatalog is enqueued by the background TLE refresher after a new
// element set is ingested. Memoized trajectory verdicts are stale for the
// new elements and must go.
func (a *App) SwapCatalog(cat *catalog.Catalog) Command {
	return func(app *App) {
		app.Catalog = cat
		app.Catalog.OnToggle(app.cache.Invalidate)
		app.cache.Invalidate()
		app.filter.Purge()
		app.logger.Info("catalog swapped", "objects", cat.ValidObjects())
	}
}

// View returns a copy of the current view state. Test hook.
func (a *App) View() ViewState { return a.view }

func (a *App) Update() error {
	if a.ctx.Err() != nil {
		return ebiten.Termination
	}

	for {
		select {
		case cmd := <-a.commands:
			cmd(a)
		default:
			goto drained
		}
	}
drained:

	a.handleInput()
	a.Clock.Advance()

	if a.view.AutoRotate && !a.view.Dragging {
		a.view.Yaw += autoRotateRadPerFrame
	}

	objs := a.Catalog.EnabledObjects()
	a.cache.Refresh(a.Clock.Now(), objs, a.view.Dragging)
	a.project()
	a.publishStats()
	return nil
}

// viewScale converts globe units to screen pixels at the current zoom.
func (a *App) viewScale() float64 {
	m := math.Min(float64(a.width), float64(a.height))
	return m * 0.42 / geo.EarthRadiusUnits * a.view.Zoom
}

func (a *App) center() (float64, float64) {
	return float64(a.width)/2 + a.view.PanX, float64(a.height)/2 + a.view.PanY
}

// project rebuilds the per-frame point list, sorted far to near, and
// resolves the hovered object.
func (a *App) project() {
	scale := a.viewScale()
	cx, cy := a.center()
	positions := a.cache.Positions()

	a.points = a.points[:0]
	a.visible = 0
	for i, cp := range positions {
		rv := RotateView(cp.World, a.view.Yaw, a.view.Pitch)
		occ := Occluded(rv, geo.EarthRadiusUnits)
		a.points = append(a.points, renderPoint{
			X:        cx + rv.X*scale,
			Y:        cy - rv.Y*scale,
			Depth:    rv.Z,
			Occluded: occ,
			Idx:      i,
		})
		if !occ {
			a.visible++
		}
	}
	sort.Slice(a.points, func(i, j int) bool { return a.points[i].Depth < a.points[j].Depth })

	mx, my := ebiten.CursorPosition()
	a.view.HoverIdx = a.pick(float64(mx), float64(my))
}

// pick returns the cache index of the nearest front-hemisphere point
// within the pick radius, or -1.
func (a *App) pick(mx, my float64) int {
	best := -1
	bestD := pickRadiusPx * pickRadiusPx
	for _, rp := range a.points {
		if rp.Occluded {
			continue
		}
		dx, dy := rp.X-mx, rp.Y-my
		d := dx*dx + dy*dy
		if d < bestD {
			bestD = d
			best = rp.Idx
		}
	}
	return best
}

func (a *App) publishStats() {
	a.pub.Offer(func() stats.Snapshot {
		groups := a.Catalog.Groups()
		gs := make([]stats.GroupStat, 0, len(groups))
		for _, g := range groups {
			gs = append(gs, stats.GroupStat{Bucket: g.Bucket, Label: g.Label, Count: g.Count, Enabled: g.Enabled})
		}
		return stats.Snapshot{
			Taken:          time.Now(),
			SimTime:        a.Clock.Now(),
			Speed:          a.Clock.Speed(),
			AutoRotate:     a.view.AutoRotate,
			TrajectoryMode: a.view.TrajMode.String(),
			ObjectsTotal:   a.Catalog.TotalRecords(),
			ObjectsValid:   a.Catalog.ValidObjects(),
			ObjectsCached:  len(a.cache.Positions()),
			ObjectsVisible: a.visible,
			Selected:       a.view.SelectedName,
			Groups:         gs,
		}
	})
}

// Layout renders at the physical pixel resolution of the window.
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := ebiten.Monitor().DeviceScaleFactor()
	w := int(float64(outsideWidth) * s)
	h := int(float64(outsideHeight) * s)
	if w != a.width || h != a.height {
		a.width, a.height = w, h
		a.bgDirty = true
	}
	return w, h
}

// SetSpeedIndex clamps and applies an index into Speeds. Used by the
// control surface; keyboard input steps the same index.
func (a *App) SetSpeedIndex(idx int) {
	if idx < 0 {
		idx = 0
	}
	if idx >= len(Speeds) {
		idx = len(Speeds) - 1
	}
	a.speedIdx = idx
	a.Clock.SetSpeed(Speeds[idx])
}

// SetAutoRotate flips the idle spin.
func (a *App) SetAutoRotate(on bool) { a.view.AutoRotate = on }

// SetTrajectoryMode selects which orbit polylines are drawn.
func (a *App) SetTrajectoryMode(m TrajectoryMode) { a.view.TrajMode = m }

// SetTrajectoryHours sets the prediction window length, clamped to the
// supported range.
func (a *App) SetTrajectoryHours(h float64) {
	if h < MinTrajectoryHours {
		h = MinTrajectoryHours
	}
	if h > MaxTrajectoryHours {
		h = MaxTrajectoryHours
	}
	a.view.TrajHours = h
}
