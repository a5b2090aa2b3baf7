package engine

import "testing"

func TestViewStateClamps(t *testing.T) {
	v := NewViewState()

	v.Zoom = 100
	v.ClampZoom()
	if v.Zoom != maxZoom {
		t.Errorf("Zoom clamped to %v, want %v", v.Zoom, maxZoom)
	}
	v.Zoom = 0.01
	v.ClampZoom()
	if v.Zoom != minZoom {
		t.Errorf("Zoom clamped to %v, want %v", v.Zoom, minZoom)
	}

	v.Pitch = 3
	v.ClampPitch()
	if v.Pitch != maxPitch {
		t.Errorf("Pitch clamped to %v, want %v", v.Pitch, maxPitch)
	}
	v.Pitch = -3
	v.ClampPitch()
	if v.Pitch != -maxPitch {
		t.Errorf("Pitch clamped to %v, want %v", v.Pitch, -maxPitch)
	}
}

func TestTrajectoryModeString(t *testing.T) {
	tests := []struct {
		mode TrajectoryMode
		want string
	}{
		{TrajectoryOff, "off"},
		{TrajectorySelected, "selected"},
		{TrajectoryAll, "all"},
		{TrajectoryMode(99), "off"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestNewViewStateDefaults(t *testing.T) {
	v := NewViewState()
	if v.Zoom != 1.0 || !v.AutoRotate || v.HoverIdx != -1 {
		t.Errorf("unexpected defaults: %+v", v)
	}
	if v.TrajMode != TrajectoryOff {
		t.Errorf("TrajMode = %v, want off", v.TrajMode)
	}
}
