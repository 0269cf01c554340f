package session

import (
	"math"
	"time"
)

// fpsCounter measures processed-frame throughput over 1000ms windows.
// It never reports a value during the first sub-second window; at each
// window boundary it publishes round(frames * 1000 / elapsedMs) and resets.
type fpsCounter struct {
	frames      int
	windowStart time.Time
	value       int
	now         func() time.Time
}

func newFPSCounter() *fpsCounter {
	return &fpsCounter{now: time.Now}
}

// Tick records one processed frame and publishes a new value when the
// current window has lasted at least one second.
func (c *fpsCounter) Tick() {
	now := c.now()
	if c.windowStart.IsZero() {
		c.windowStart = now
	}
	c.frames++

	elapsed := now.Sub(c.windowStart)
	if elapsed >= time.Second {
		c.value = int(math.Round(float64(c.frames) * 1000.0 / float64(elapsed.Milliseconds())))
		c.frames = 0
		c.windowStart = now
	}
}

// Value returns the last published frames-per-second figure, zero before
// the first full window.
func (c *fpsCounter) Value() int {
	return c.value
}

// Reset clears the counter and the published value.
func (c *fpsCounter) Reset() {
	c.frames = 0
	c.windowStart = time.Time{}
	c.value = 0
}
