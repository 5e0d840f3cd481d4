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

// Package present moves scaled frames to a display.Sink.
//
// In DoubleBufferedAsync mode the Task runs in its own goroutine and drains
// the handoff slot of a framebuffer.Pool. In DirectBlocking mode the Direct
// type is called by the producer and scales and transfers the frame one band
// at a time.
//
// In both modes a failed transfer drops the frame, is logged and is passed to
// the Observer. The next frame is presented as normal.
package present

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/panelpipe/panelpipe/assert"
	"github.com/panelpipe/panelpipe/display"
	"github.com/panelpipe/panelpipe/display/fps"
	"github.com/panelpipe/panelpipe/display/framebuffer"
	"github.com/panelpipe/panelpipe/logger"
)

// Task presents the frames published to a framebuffer.Pool.
type Task struct {
	pool     *framebuffer.Pool
	sink     display.Sink
	counter  *fps.Counter
	observer Observer

	// position of the destination image on the panel
	x int
	y int

	// the clock used for frame rate measurement
	Now func() time.Time

	transferErrors atomic.Uint64

	consumer assert.Owner
}

// NewTask is the preferred method of initialisation for the Task type. A nil
// observer is replaced with NopObserver.
func NewTask(pool *framebuffer.Pool, sink display.Sink, counter *fps.Counter, observer Observer, x, y int) *Task {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Task{
		pool:     pool,
		sink:     sink,
		counter:  counter,
		observer: observer,
		x:        x,
		y:        y,
		Now:      time.Now,
		consumer: assert.Owner{Role: "present task"},
	}
}

// Run presents frames until the context is cancelled. It blocks while there is
// nothing to present and while the sink is transferring.
//
// Cancellation is only checked while waiting for a frame. A transfer in
// progress is always completed.
func (t *Task) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.pool.Ready():
			t.Service()
		}
	}
}

// Service presents the frame waiting in the handoff slot, if there is one.
// Returns true if a frame was presented. Useful for sinks that must present
// from a goroutine that is also servicing other events, such as the main
// thread of an SDL application.
func (t *Task) Service() bool {
	t.consumer.Claim()

	fb := t.pool.Take()
	if fb == nil {
		return false
	}

	frame := fb.Frame
	err := t.sink.Transfer(fb.Pix, fb.Width, fb.Height, t.x, t.y)
	t.pool.Done(fb)

	if err != nil {
		t.transferErrors.Add(1)
		logger.Logf(logger.Allow, "present", "transfer failed: %v", err)
		t.observer.TransferError(display.TransferError{Frame: frame, Err: err})
		return false
	}

	if t.counter.Tick(t.Now()) {
		t.observer.Measurement(t.counter.Measured())
	}

	return true
}

// TransferErrors returns the number of frames dropped because of a transfer
// error.
func (t *Task) TransferErrors() uint64 {
	return t.transferErrors.Load()
}
