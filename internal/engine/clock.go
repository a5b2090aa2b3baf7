package engine

import "time"

// Speeds are the supported time-dilation multipliers. 0 pauses the clock.
var Speeds = []int{0, 1, 20, 100, 1000}

// Clock owns the offset between wall-clock time and displayed simulated
// time. While paused the displayed time is held bit-for-bit constant; on
// resume it continues from the frozen value with no jump.
type Clock struct {
	now    func() time.Time
	speed  int
	offset time.Duration
	anchor time.Time // simulated time captured when speed hit 0
	last   time.Time // wall time of the previous Advance
}

// NewClock returns a real-time clock running at speed 1.
func NewClock() *Clock {
	return newClockWith(time.Now)
}

// newClockWith injects the wall-clock source for tests.
func newClockWith(now func() time.Time) *Clock {
	return &Clock{now: now, speed: 1, last: now()}
}

// Now returns the displayed simulated time.
func (c *Clock) Now() time.Time {
	if c.speed == 0 {
		return c.anchor
	}
	return c.now().Add(c.offset)
}

// Speed returns the current multiplier.
func (c *Clock) Speed() int { return c.speed }

// Advance accumulates the frame's time dilation. Called once per frame.
// At speed 1 the offset is unchanged; at speed N it grows by
// elapsed×(N−1) so simulated time runs N× faster than wall time.
func (c *Clock) Advance() {
	wall := c.now()
	elapsed := wall.Sub(c.last)
	c.last = wall

	if c.speed == 0 {
		// Re-pin the offset so wall+offset stays exactly at the anchor.
		c.offset = c.anchor.Sub(wall)
		return
	}
	c.offset += elapsed * time.Duration(c.speed-1)
}

// SetSpeed switches the multiplier. Entering 0 captures the paused anchor
// once; leaving 0 rebases the offset on the frozen value so the displayed
// time resumes without a discontinuity.
func (c *Clock) SetSpeed(mult int) {
	if mult < 0 || mult == c.speed {
		return
	}
	if mult == 0 {
		c.anchor = c.Now()
	} else if c.speed == 0 {
		wall := c.now()
		c.offset = c.anchor.Sub(wall)
		c.last = wall
	}
	c.speed = mult
}
