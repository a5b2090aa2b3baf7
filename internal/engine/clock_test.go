package engine

import (
	"testing"
	"time"
)

// fakeWall is a manually stepped wall clock.
type fakeWall struct {
	t time.Time
}

func (f *fakeWall) now() time.Time { return f.t }

func (f *fakeWall) step(d time.Duration) { f.t = f.t.Add(d) }

func newFakeWall() *fakeWall {
	return &fakeWall{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func TestClockRealTime(t *testing.T) {
	w := newFakeWall()
	c := newClockWith(w.now)

	for i := 0; i < 10; i++ {
		w.step(16 * time.Millisecond)
		c.Advance()
	}
	if got := c.Now(); !got.Equal(w.t) {
		t.Errorf("at speed 1 Now() = %v, want wall %v", got, w.t)
	}
}

func TestClockDilation(t *testing.T) {
	w := newFakeWall()
	c := newClockWith(w.now)
	c.SetSpeed(100)

	start := c.Now()
	w.step(1 * time.Second)
	c.Advance()

	got := c.Now().Sub(start)
	if got != 100*time.Second {
		t.Errorf("1s wall at x100 advanced sim by %v, want 100s", got)
	}
}

// TestClockPauseHoldsExactly drives ten frames while paused and requires
// the displayed instant to be bit-for-bit identical on each.
func TestClockPauseHoldsExactly(t *testing.T) {
	w := newFakeWall()
	c := newClockWith(w.now)

	w.step(5 * time.Second)
	c.Advance()
	c.SetSpeed(0)
	frozen := c.Now()

	for i := 0; i < 10; i++ {
		w.step(16 * time.Millisecond)
		c.Advance()
		if got := c.Now(); !got.Equal(frozen) {
			t.Fatalf("frame %d: paused Now() = %v, want %v", i, got, frozen)
		}
	}
}

func TestClockResumeWithoutJump(t *testing.T) {
	w := newFakeWall()
	c := newClockWith(w.now)

	c.SetSpeed(0)
	frozen := c.Now()
	w.step(30 * time.Second)
	c.Advance()

	c.SetSpeed(1)
	if got := c.Now(); !got.Equal(frozen) {
		t.Errorf("immediately after resume Now() = %v, want frozen %v", got, frozen)
	}

	w.step(2 * time.Second)
	c.Advance()
	if got := c.Now().Sub(frozen); got != 2*time.Second {
		t.Errorf("2s after resume sim advanced by %v, want 2s", got)
	}
}

// TestClockSpeedRoundTripMonotonic ramps 1 -> 100 -> 1 and checks the sim
// time never moves backwards across the transitions.
func TestClockSpeedRoundTripMonotonic(t *testing.T) {
	w := newFakeWall()
	c := newClockWith(w.now)

	prev := c.Now()
	check := func() {
		now := c.Now()
		if now.Before(prev) {
			t.Fatalf("sim time went backwards: %v -> %v", prev, now)
		}
		prev = now
	}

	for _, speed := range []int{1, 100, 1, 1000, 0, 20} {
		c.SetSpeed(speed)
		check()
		for i := 0; i < 5; i++ {
			w.step(16 * time.Millisecond)
			c.Advance()
			check()
		}
	}
}

func TestClockRejectsNegativeSpeed(t *testing.T) {
	w := newFakeWall()
	c := newClockWith(w.now)
	c.SetSpeed(-5)
	if c.Speed() != 1 {
		t.Errorf("negative speed accepted: %d", c.Speed())
	}
}
