package engine

import "math"

// TrajectoryMode selects which orbits are drawn as polylines.
type TrajectoryMode int

const (
	TrajectoryOff TrajectoryMode = iota
	TrajectorySelected
	TrajectoryAll
)

func (m TrajectoryMode) String() string {
	switch m {
	case TrajectorySelected:
		return "selected"
	case TrajectoryAll:
		return "all"
	default:
		return "off"
	}
}

// Zoom and rotation limits.
const (
	minZoom = 0.3
	maxZoom = 8.0

	// Pitch is clamped short of the poles so the view never flips.
	maxPitch = math.Pi/2 - 0.05

	autoRotateRadPerFrame = 0.0015
)

// Trajectory prediction window bounds, in hours. Shared with the HTTP
// control surface so its validation matches the clamp.
const (
	MinTrajectoryHours = 0.5
	MaxTrajectoryHours = 24.0
)

// ViewState holds everything the camera and UI remember between frames.
// It is owned by the frame loop; external mutation goes through Commands.
type ViewState struct {
	Yaw   float64
	Pitch float64
	Zoom  float64

	PanX float64
	PanY float64

	AutoRotate bool
	Dragging   bool

	HoverIdx     int
	SelectedName string

	TrajMode  TrajectoryMode
	TrajHours float64
}

// NewViewState returns the initial camera: globe centered, auto-rotating.
func NewViewState() ViewState {
	return ViewState{
		Zoom:       1.0,
		AutoRotate: true,
		HoverIdx:   -1,
		TrajHours:  1.5,
	}
}

// ClampZoom keeps the zoom factor inside the usable range.
func (v *ViewState) ClampZoom() {
	if v.Zoom < minZoom {
		v.Zoom = minZoom
	}
	if v.Zoom > maxZoom {
		v.Zoom = maxZoom
	}
}

// ClampPitch keeps the pitch short of the poles.
func (v *ViewState) ClampPitch() {
	if v.Pitch > maxPitch {
		v.Pitch = maxPitch
	}
	if v.Pitch < -maxPitch {
		v.Pitch = -maxPitch
	}
}

// Command is a deferred mutation applied at the top of the next Update,
// before any input or simulation work. The HTTP control surface and the
// background TLE refresher enqueue these so all state changes happen on
// the frame goroutine.
type Command func(*App)
