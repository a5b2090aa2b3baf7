package engine

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/joakar/starlink-tracker/internal/geo"
	"github.com/joakar/starlink-tracker/internal/metrics"
)

var (
	whiteImage    = ebiten.NewImage(3, 3)
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
)

func init() {
	whiteImage.Fill(color.White)
}

var (
	colorOcean      = color.RGBA{10, 22, 44, 255}
	colorLand       = color.RGBA{46, 94, 66, 255}
	colorBorder     = color.RGBA{96, 160, 122, 255}
	colorAtmosphere = color.RGBA{80, 140, 220, 255}
	colorHUD        = color.RGBA{210, 218, 228, 255}
	colorHUDDim     = color.RGBA{120, 126, 136, 255}
	colorTooltipBG  = color.RGBA{0, 0, 0, 200}
	colorSelected   = color.RGBA{250, 220, 80, 255}
	colorHover      = color.RGBA{240, 240, 240, 255}
)

const maxTrajectoriesPerFrame = 150

func (a *App) Draw(screen *ebiten.Image) {
	start := time.Now()

	a.ensureBackground()
	screen.DrawImage(a.background, nil)

	scale := a.viewScale()
	cx, cy := a.center()
	sphereR := geo.EarthRadiusUnits * scale

	a.drawGlobe(screen, cx, cy, sphereR)
	a.drawBorders(screen, cx, cy, scale)
	a.drawPoints(screen)
	a.drawTrajectories(screen, cx, cy, scale)
	a.drawHUD(screen)
	a.drawTooltip(screen)

	metrics.ObserveFrame(time.Since(start), a.visible)
}

func (a *App) drawGlobe(screen *ebiten.Image, cx, cy, sphereR float64) {
	// Soft atmosphere halo, widest ring faintest.
	for i := 3; i >= 1; i-- {
		c := colorAtmosphere
		c.A = uint8(18 * i)
		vector.StrokeCircle(screen, float32(cx), float32(cy), float32(sphereR)+float32(4-i)*3, 3, c, true)
	}
	vector.DrawFilledCircle(screen, float32(cx), float32(cy), float32(sphereR), colorOcean, true)
}

// drawBorders fills the visible parts of every land ring and strokes the
// coastline edges. Rings straddling the silhouette are closed along the
// limb circle so the fill never cuts a chord across the globe.
func (a *App) drawBorders(screen *ebiten.Image, cx, cy, scale float64) {
	ringR := geo.EarthRadiusUnits * geo.BorderRadiusFactor * scale

	var path vector.Path
	a.segs = a.segs[:0]
	for i := range a.rings {
		r := &a.rings[i]
		pts := r.Clip(a.view.Yaw, a.view.Pitch, scale)
		if len(pts) >= 3 {
			appendRingPath(&path, pts, cx, cy, ringR)
		}
		a.segs = r.StrokeSegments(scale, a.segs)
	}

	a.vertices, a.indices = path.AppendVerticesAndIndicesForFilling(a.vertices[:0], a.indices[:0])
	for i := range a.vertices {
		a.vertices[i].SrcX = 1
		a.vertices[i].SrcY = 1
		a.vertices[i].ColorR = float32(colorLand.R) / 255
		a.vertices[i].ColorG = float32(colorLand.G) / 255
		a.vertices[i].ColorB = float32(colorLand.B) / 255
		a.vertices[i].ColorA = 0.85
	}
	screen.DrawTriangles(a.vertices, a.indices, whiteSubImage, &ebiten.DrawTrianglesOptions{
		AntiAlias: true,
		FillRule:  ebiten.FillRuleNonZero,
	})

	for _, s := range a.segs {
		vector.StrokeLine(screen,
			float32(cx+s.X1), float32(cy+s.Y1),
			float32(cx+s.X2), float32(cy+s.Y2),
			1, colorBorder, true)
	}
}

func appendRingPath(p *vector.Path, pts []PathPoint, cx, cy, ringR float64) {
	p.MoveTo(float32(cx+pts[0].X), float32(cy+pts[0].Y))
	for i := 1; i < len(pts); i++ {
		prev, cur := pts[i-1], pts[i]
		if prev.Limb && cur.Limb {
			addLimbArc(p, prev, cur, cx, cy, ringR)
		} else {
			p.LineTo(float32(cx+cur.X), float32(cy+cur.Y))
		}
	}
	if last, first := pts[len(pts)-1], pts[0]; last.Limb && first.Limb {
		addLimbArc(p, last, first, cx, cy, ringR)
	}
	p.Close()
}

// addLimbArc stitches two silhouette crossings together along the limb
// circle instead of a straight chord.
func addLimbArc(p *vector.Path, from, to PathPoint, cx, cy, ringR float64) {
	a0 := math.Atan2(from.Y, from.X)
	a1 := math.Atan2(to.Y, to.X)
	dir := vector.CounterClockwise
	if arcClockwise(a0, a1) {
		dir = vector.Clockwise
	}
	p.Arc(float32(cx), float32(cy), float32(ringR), float32(a0), float32(a1), dir)
}

func (a *App) drawPoints(screen *ebiten.Image) {
	positions := a.cache.Positions()
	r := float32(math.Max(1.5, 1.1*a.view.Zoom))

	// Glow pass first so every halo sits under every dot.
	for _, rp := range a.points {
		if rp.Occluded {
			continue
		}
		glow := positions[rp.Idx].Object.Color
		glow.A = 50
		vector.DrawFilledCircle(screen, float32(rp.X), float32(rp.Y), r*2.4, glow, true)
	}

	for _, rp := range a.points {
		if rp.Occluded {
			continue
		}
		cp := &positions[rp.Idx]
		vector.DrawFilledCircle(screen, float32(rp.X), float32(rp.Y), r, cp.Object.Color, true)

		if cp.Object.Name == a.view.SelectedName && a.view.SelectedName != "" {
			vector.StrokeCircle(screen, float32(rp.X), float32(rp.Y), r+5, 2, colorSelected, true)
		} else if rp.Idx == a.view.HoverIdx {
			vector.StrokeCircle(screen, float32(rp.X), float32(rp.Y), r+4, 1, colorHover, true)
		}
	}
}

func (a *App) drawTrajectories(screen *ebiten.Image, cx, cy, scale float64) {
	if a.view.TrajMode == TrajectoryOff {
		return
	}
	positions := a.cache.Positions()
	now := a.Clock.Now()

	drawn := 0
	for i := range positions {
		cp := &positions[i]
		if a.view.TrajMode == TrajectorySelected && cp.Object.Name != a.view.SelectedName {
			continue
		}
		if drawn >= maxTrajectoriesPerFrame {
			break
		}
		if !a.filter.Valid(cp.Object.Handle, now) {
			continue
		}
		a.drawTrajectory(screen, cp, now, cx, cy, scale)
		drawn++
	}
}

// drawTrajectory samples the orbit forward from now and draws the
// front-facing polyline segments. Segments crossing behind the globe or
// off the hemisphere are simply skipped.
func (a *App) drawTrajectory(screen *ebiten.Image, cp *CachedPosition, now time.Time, cx, cy, scale float64) {
	const steps = 48
	step := time.Duration(a.view.TrajHours * float64(time.Hour) / steps)

	c := cp.Object.Color
	c.A = 140

	var prevX, prevY float64
	havePrev := false
	for i := 0; i <= steps; i++ {
		g, ok := a.src.Propagate(cp.Object.Handle, now.Add(time.Duration(i)*step))
		if !ok {
			havePrev = false
			continue
		}
		world := geo.ToXYZ(g.LonDeg, g.LatDeg, geo.AltitudeToRadius(g.AltKm))
		rv := RotateView(world, a.view.Yaw, a.view.Pitch)
		if Occluded(rv, geo.EarthRadiusUnits) {
			havePrev = false
			continue
		}
		x, y := cx+rv.X*scale, cy-rv.Y*scale
		if havePrev {
			vector.StrokeLine(screen, float32(prevX), float32(prevY), float32(x), float32(y), 1, c, true)
		}
		prevX, prevY = x, y
		havePrev = true
	}
}

const (
	legendX    = 16.0
	legendY    = 96.0
	legendRowH = 18.0
)

// legendBucketAt maps a cursor position to the legend row it covers.
func (a *App) legendBucketAt(mx, my float64) (int, bool) {
	groups := a.Catalog.Groups()
	if mx < legendX || mx > legendX+160 {
		return 0, false
	}
	row := int((my - legendY) / legendRowH)
	if row < 0 || row >= len(groups) || my < legendY {
		return 0, false
	}
	return groups[row].Bucket, true
}

func (a *App) drawHUD(screen *ebiten.Image) {
	face := &text.GoTextFace{Source: a.font, Size: 14}
	small := &text.GoTextFace{Source: a.font, Size: 12}

	speed := "paused"
	if s := a.Clock.Speed(); s > 0 {
		speed = fmt.Sprintf("x%d", s)
	}
	header := fmt.Sprintf("%s   %s   %d/%d shown",
		a.Clock.Now().UTC().Format("2006-01-02 15:04:05 UTC"),
		speed, a.visible, a.Catalog.ValidObjects())

	op := &text.DrawOptions{}
	op.GeoM.Translate(16, 16)
	op.ColorScale.ScaleWithColor(colorHUD)
	text.Draw(screen, header, face, op)

	if a.view.TrajMode != TrajectoryOff {
		op := &text.DrawOptions{}
		op.GeoM.Translate(16, 38)
		op.ColorScale.ScaleWithColor(colorHUDDim)
		text.Draw(screen, fmt.Sprintf("trajectories: %s (%.1fh)", a.view.TrajMode, a.view.TrajHours), small, op)
	}

	for i, g := range a.Catalog.Groups() {
		y := legendY + float64(i)*legendRowH
		c := g.Color
		labelColor := colorHUD
		if !g.Enabled {
			c = color.RGBA{60, 60, 64, 255}
			labelColor = colorHUDDim
		}
		vector.DrawFilledRect(screen, float32(legendX), float32(y), 10, 10, c, true)

		op := &text.DrawOptions{}
		op.GeoM.Translate(legendX+16, y-2)
		op.ColorScale.ScaleWithColor(labelColor)
		text.Draw(screen, fmt.Sprintf("%s  %d", g.Label, g.Count), small, op)
	}

	help := "drag rotate | shift-drag pan | wheel zoom | space pause | up/down speed | t trajectories | [ ] window | r spin"
	op = &text.DrawOptions{}
	op.GeoM.Translate(16, float64(a.height)-24)
	op.ColorScale.ScaleWithColor(colorHUDDim)
	text.Draw(screen, help, small, op)
}

func (a *App) drawTooltip(screen *ebiten.Image) {
	if a.view.HoverIdx < 0 {
		return
	}
	positions := a.cache.Positions()
	if a.view.HoverIdx >= len(positions) {
		return
	}
	cp := &positions[a.view.HoverIdx]

	lines := []string{
		cp.Object.Name,
		fmt.Sprintf("alt %.0f km  incl %.1f", cp.Geo.AltKm, cp.Object.InclinationDeg),
		fmt.Sprintf("lat %.2f  lon %.2f", cp.Geo.LatDeg, cp.Geo.LonDeg),
	}

	mx, my := ebiten.CursorPosition()
	x, y := float64(mx)+14, float64(my)+14
	w, h := 190.0, 14.0+float64(len(lines))*16

	if x+w > float64(a.width) {
		x = float64(mx) - w - 14
	}
	if y+h > float64(a.height) {
		y = float64(my) - h - 14
	}

	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(h), colorTooltipBG, true)
	face := &text.GoTextFace{Source: a.font, Size: 12}
	for i, line := range lines {
		op := &text.DrawOptions{}
		op.GeoM.Translate(x+8, y+6+float64(i)*16)
		op.ColorScale.ScaleWithColor(colorHUD)
		text.Draw(screen, line, face, op)
	}
}
