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

package fps

import (
	"context"
	"sync/atomic"
	"time"
)

// Limiter paces a producer to a requested number of frames per second.
type Limiter struct {
	// whether to wait for the pulse each frame. an inactive limiter runs as
	// fast as possible
	Active atomic.Bool

	// the rate requested with SetLimit()
	IdealFPS atomic.Value // float32

	// a new rate has been requested and not yet applied by CheckFrame()
	pending atomic.Bool

	// pulse that performs the limiting
	pulse *time.Ticker

	// waiting for the pulse on every frame is inaccurate for high frame rates
	// so the limiter waits once every pulseCtLimit frames
	pulseCt      int
	pulseCtLimit int

	// pulse that performs the measurement of the actual rate
	measuringPulse *time.Ticker
	measureTime    time.Time
	measureCt      int

	// the measured number of frames per second
	Measured atomic.Value // float32

	// the limiter will not wait for the next Nudge frames
	Nudge atomic.Int32
}

// NewLimiter is the preferred method of initialisation for the Limiter type.
func NewLimiter(fps float32) *Limiter {
	lmtr := &Limiter{
		pulse:          time.NewTicker(time.Second),
		measuringPulse: time.NewTicker(DefaultWindow),
	}
	lmtr.Active.Store(true)
	lmtr.Measured.Store(float32(0))
	lmtr.IdealFPS.Store(fps)
	lmtr.Active.Store(fps > 0)
	lmtr.apply(fps)
	return lmtr
}

// SetLimit changes the requested frame rate. A value of zero or less makes the
// limiter inactive. It is safe to call from any goroutine. The new rate takes
// effect on the next call to CheckFrame().
func (lmtr *Limiter) SetLimit(fps float32) {
	lmtr.IdealFPS.Store(fps)
	lmtr.Active.Store(fps > 0)
	lmtr.pending.Store(true)
}

// apply the rate to the pulse. must only be called by the producer goroutine
func (lmtr *Limiter) apply(fps float32) {
	if fps <= 0 {
		return
	}

	lmtr.pulseCt = 0
	lmtr.pulseCtLimit = 1 + int(fps/20)
	lmtr.pulse.Reset(time.Duration(float32(time.Second) / fps * float32(lmtr.pulseCtLimit)))

	lmtr.measureCt = 0
	lmtr.measureTime = time.Now()
}

// CheckFrame should be called once per frame by the producer. It blocks until
// it is time for the next frame or until the context is cancelled.
func (lmtr *Limiter) CheckFrame(ctx context.Context) error {
	if lmtr.pending.Swap(false) {
		lmtr.apply(lmtr.IdealFPS.Load().(float32))
	}

	lmtr.measureCt++
	lmtr.measureActual()

	if n := lmtr.Nudge.Load(); n > 0 {
		lmtr.Nudge.Store(n - 1)
		return nil
	}

	if !lmtr.Active.Load() {
		return ctx.Err()
	}

	lmtr.pulseCt++
	if lmtr.pulseCt < lmtr.pulseCtLimit {
		return nil
	}
	lmtr.pulseCt = 0

	select {
	case <-lmtr.pulse.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// measures the frame rate on every tick of the measuring pulse
func (lmtr *Limiter) measureActual() {
	select {
	case <-lmtr.measuringPulse.C:
		t := time.Now()
		lmtr.Measured.Store(float32(float64(lmtr.measureCt) / t.Sub(lmtr.measureTime).Seconds()))
		lmtr.measureTime = t
		lmtr.measureCt = 0
	default:
	}
}

// Stop the limiter's tickers. The Limiter must not be used after Stop().
func (lmtr *Limiter) Stop() {
	lmtr.pulse.Stop()
	lmtr.measuringPulse.Stop()
}
