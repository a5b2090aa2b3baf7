package engine

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	dragSensitivity = 0.005
	zoomStepFactor  = 1.1

	// A press-release pair with less total cursor travel than this is a
	// click, not a drag.
	clickSlopPx = 4.0
)

// handleInput applies mouse and keyboard state for this frame. Drag
// rotates, wheel zooms, shift-drag pans, click selects.
func (a *App) handleInput() {
	mx, my := ebiten.CursorPosition()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		a.view.Dragging = true
		a.dragLastX, a.dragLastY = float64(mx), float64(my)
		a.dragTravel = 0
	}

	if a.view.Dragging && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		dx := float64(mx) - a.dragLastX
		dy := float64(my) - a.dragLastY
		a.dragTravel += math.Abs(dx) + math.Abs(dy)
		if ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight) {
			a.view.PanX += dx
			a.view.PanY += dy
		} else {
			a.view.Yaw += dx * dragSensitivity
			a.view.Pitch += dy * dragSensitivity
			a.view.ClampPitch()
		}
		a.dragLastX, a.dragLastY = float64(mx), float64(my)
	}

	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		if a.view.Dragging && a.dragTravel < clickSlopPx {
			a.selectAtCursor(float64(mx), float64(my))
		}
		a.view.Dragging = false
	}

	if _, wy := ebiten.Wheel(); wy != 0 {
		a.view.Zoom *= math.Pow(zoomStepFactor, wy)
		a.view.ClampZoom()
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		if a.Clock.Speed() == 0 {
			a.SetSpeedIndex(a.resumeIdx)
		} else {
			a.resumeIdx = a.speedIdx
			a.SetSpeedIndex(0)
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		a.SetSpeedIndex(a.speedIdx + 1)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
		a.SetSpeedIndex(a.speedIdx - 1)
	case inpututil.IsKeyJustPressed(ebiten.KeyT):
		a.view.TrajMode = (a.view.TrajMode + 1) % 3
	case inpututil.IsKeyJustPressed(ebiten.KeyBracketRight):
		a.SetTrajectoryHours(a.view.TrajHours + 0.5)
	case inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft):
		a.SetTrajectoryHours(a.view.TrajHours - 0.5)
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		a.view.AutoRotate = !a.view.AutoRotate
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		a.view.SelectedName = ""
	case inpututil.IsKeyJustPressed(ebiten.KeyHome):
		a.view.PanX, a.view.PanY = 0, 0
		a.view.Zoom = 1.0
	}
}

// selectAtCursor selects the front-hemisphere object under the cursor, or
// clears the selection when none is close enough.
func (a *App) selectAtCursor(mx, my float64) {
	if bucket, ok := a.legendBucketAt(mx, my); ok {
		a.Catalog.Toggle(bucket)
		return
	}
	idx := a.pick(mx, my)
	if idx < 0 {
		a.view.SelectedName = ""
		return
	}
	positions := a.cache.Positions()
	if idx < len(positions) {
		a.view.SelectedName = positions[idx].Object.Name
	}
}
