// This file is part of Panelpipe.
//
// Panelpipe is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Panelpipe is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Panelpipe.  If not, see <https://www.gnu.org/licenses/>.

// Package fps measures the rate at which frames are presented and limits the
// rate at which frames are produced.
//
// The Counter is updated by the present task once for every completed
// transfer. The measured value is updated once per window, which defaults
// to one second, and can be read from any goroutine.
//
// The Limiter paces a producer to a fixed number of frames per second. It is
// used by the emulation engine and is entirely separate from the Counter.
package fps

import (
	"math"
	"sync/atomic"
	"time"
)

// DefaultWindow is the measurement period of a Counter.
const DefaultWindow = time.Second

// Counter is a fixed window frame rate estimator.
type Counter struct {
	window time.Duration

	// start of the current window and the number of frames since then. only
	// accessed by the goroutine calling Tick()
	start time.Time
	count int

	measured atomic.Uint32 // float32 bits
	total    atomic.Uint64
}

// NewCounter is the preferred method of initialisation for the Counter type.
// A window of zero or less will use DefaultWindow.
func NewCounter(window time.Duration) *Counter {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Counter{window: window}
}

// Tick records a completed frame at the time given. The first call begins the
// measurement window. Returns true if the measured frame rate was updated.
//
// Tick must only be called from one goroutine.
func (c *Counter) Tick(now time.Time) bool {
	c.total.Add(1)

	if c.start.IsZero() {
		c.start = now
		return false
	}

	c.count++

	elapsed := now.Sub(c.start)
	if elapsed < c.window {
		return false
	}

	c.measured.Store(math.Float32bits(float32(float64(c.count) / elapsed.Seconds())))
	c.start = now
	c.count = 0

	return true
}

// Reset the measurement window. The total is not changed.
func (c *Counter) Reset() {
	c.start = time.Time{}
	c.count = 0
	c.measured.Store(0)
}

// Measured returns the frame rate measured over the most recent complete
// window.
func (c *Counter) Measured() float32 {
	return math.Float32frombits(c.measured.Load())
}

// Total returns the number of frames recorded since the Counter was created.
func (c *Counter) Total() uint64 {
	return c.total.Load()
}

// Window returns the measurement period.
func (c *Counter) Window() time.Duration {
	return c.window
}
