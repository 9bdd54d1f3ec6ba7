// Package timeline turns per-image durations into whole frame counts and
// keeps an exact presentation-time cursor for the reel.
package timeline

import (
	"math"
	"time"
)

// Bounds of the user-facing seconds-per-image control.
const (
	MinSecondsPerImage = 0.1
	MaxSecondsPerImage = 10.0
)

// FramesPerImage returns how many frames an image is held for. It never
// returns less than one, so an image cannot vanish through rounding.
func FramesPerImage(secondsPerImage float64, fps int) int {
	if fps <= 0 || math.IsNaN(secondsPerImage) {
		return 1
	}
	n := int(math.Round(float64(fps) * secondsPerImage))
	if n < 1 {
		return 1
	}
	return n
}

// SnapToFrameDuration coerces seconds onto a whole number of frame
// intervals. The editor shows this value so it matches what is rendered.
func SnapToFrameDuration(seconds float64, fps int) float64 {
	if fps <= 0 {
		return seconds
	}
	return float64(FramesPerImage(seconds, fps)) / float64(fps)
}

// ClampSecondsPerImage clamps to [MinSecondsPerImage, MaxSecondsPerImage]
// and snaps the result to the frame grid.
func ClampSecondsPerImage(seconds float64, fps int) float64 {
	switch {
	case math.IsNaN(seconds), seconds < MinSecondsPerImage:
		seconds = MinSecondsPerImage
	case seconds > MaxSecondsPerImage:
		seconds = MaxSecondsPerImage
	}
	return SnapToFrameDuration(seconds, fps)
}

// Time is a presentation timestamp expressed as a frame index at a fixed
// rate. Keeping the index integral avoids float drift over long reels.
type Time struct {
	Frame int64
	FPS   int
}

// Seconds returns the timestamp in seconds.
func (t Time) Seconds() float64 {
	if t.FPS <= 0 {
		return 0
	}
	return float64(t.Frame) / float64(t.FPS)
}

// Duration returns the timestamp as a time.Duration, rounded down to the
// nanosecond.
func (t Time) Duration() time.Duration {
	if t.FPS <= 0 {
		return 0
	}
	return time.Duration(t.Frame * int64(time.Second) / int64(t.FPS))
}

// Cursor advances through the reel one frame at a time.
type Cursor struct {
	fps   int
	frame int64
}

// NewCursor starts a cursor at zero.
func NewCursor(fps int) *Cursor {
	return &Cursor{fps: fps}
}

// Now is the timestamp of the next frame to emit.
func (c *Cursor) Now() Time {
	return Time{Frame: c.frame, FPS: c.fps}
}

// Advance moves the cursor forward by n frames.
func (c *Cursor) Advance(n int) {
	if n > 0 {
		c.frame += int64(n)
	}
}

// Frames is the number of frames emitted so far.
func (c *Cursor) Frames() int64 {
	return c.frame
}

// Elapsed is the total duration covered by the emitted frames.
func (c *Cursor) Elapsed() time.Duration {
	return c.Now().Duration()
}
