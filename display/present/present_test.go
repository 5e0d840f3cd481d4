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

package present_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/panelpipe/panelpipe/display"
	"github.com/panelpipe/panelpipe/display/fps"
	"github.com/panelpipe/panelpipe/display/framebuffer"
	"github.com/panelpipe/panelpipe/display/palette"
	"github.com/panelpipe/panelpipe/display/present"
	"github.com/panelpipe/panelpipe/display/scaler"
	"github.com/panelpipe/panelpipe/display/specification"
	"github.com/panelpipe/panelpipe/sinks/headless"
	"github.com/panelpipe/panelpipe/test"
)

// observer records every event
type observer struct {
	crit         sync.Mutex
	measurements []float32
	errors       []display.TransferError
}

func (o *observer) Measurement(fps float32) {
	o.crit.Lock()
	defer o.crit.Unlock()
	o.measurements = append(o.measurements, fps)
}

func (o *observer) TransferError(err display.TransferError) {
	o.crit.Lock()
	defer o.crit.Unlock()
	o.errors = append(o.errors, err)
}

func (o *observer) errorCount() int {
	o.crit.Lock()
	defer o.crit.Unlock()
	return len(o.errors)
}

// a clock that advances by a fixed step every time it is read
type clock struct {
	t    time.Time
	step time.Duration
}

func (c *clock) now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

func publish(t *testing.T, pool *framebuffer.Pool, v uint16) {
	t.Helper()
	fb, err := pool.Acquire()
	test.DemandSuccess(t, err)
	for i := range fb.Pix {
		fb.Pix[i] = v
	}
	test.DemandSuccess(t, pool.Publish(fb))
}

func TestService(t *testing.T) {
	pool, err := framebuffer.NewPool(2, 4, 2)
	test.DemandSuccess(t, err)
	sink := headless.NewSink(8, 4, false)
	test.DemandSuccess(t, sink.Init())
	obs := &observer{}

	task := present.NewTask(pool, sink, fps.NewCounter(time.Second), obs, 2, 1)
	clk := &clock{t: time.Now(), step: time.Second / 50}
	task.Now = clk.now

	// nothing to present
	test.ExpectFailure(t, task.Service())

	for i := range 51 {
		publish(t, pool, uint16(i+1))
		test.ExpectSuccess(t, task.Service(), i)
	}

	test.ExpectEquality(t, sink.Transfers(), 51)
	test.ExpectEquality(t, sink.Pixel(2, 1), 51)
	test.ExpectEquality(t, sink.Pixel(5, 2), 51)
	test.ExpectEquality(t, sink.Pixel(1, 1), 0)
	test.ExpectEquality(t, sink.Pixel(2, 3), 0)

	test.DemandEquality(t, len(obs.measurements), 1)
	test.ExpectApproximate(t, obs.measurements[0], 50.0, 0.001)

	for _, s := range pool.Snapshot() {
		test.ExpectEquality(t, s, framebuffer.Idle)
	}
}

func TestTransferError(t *testing.T) {
	pool, err := framebuffer.NewPool(2, 4, 2)
	test.DemandSuccess(t, err)
	sink := headless.NewSink(4, 2, false)
	test.DemandSuccess(t, sink.Init())
	obs := &observer{}
	task := present.NewTask(pool, sink, fps.NewCounter(time.Second), obs, 0, 0)

	publish(t, pool, 1)
	test.ExpectSuccess(t, task.Service())

	sink.FailNext(1)
	publish(t, pool, 2)
	test.ExpectFailure(t, task.Service())

	// the frame was dropped and the buffer returned to the pool
	test.ExpectEquality(t, sink.Pixel(0, 0), 1)
	test.ExpectEquality(t, task.TransferErrors(), 1)
	test.DemandEquality(t, obs.errorCount(), 1)
	test.ExpectEquality(t, obs.errors[0].Frame, 1)
	test.ExpectSuccess(t, errors.Is(obs.errors[0], headless.ErrInjected))
	for _, s := range pool.Snapshot() {
		test.ExpectEquality(t, s, framebuffer.Idle)
	}

	// the pipeline continues
	publish(t, pool, 3)
	test.ExpectSuccess(t, task.Service())
	test.ExpectEquality(t, sink.Pixel(0, 0), 3)
}

func TestRun(t *testing.T) {
	pool, err := framebuffer.NewPool(2, 16, 16)
	test.DemandSuccess(t, err)
	sink := headless.NewSink(16, 16, false)
	test.DemandSuccess(t, sink.Init())
	sink.SetLatency(time.Millisecond)

	task := present.NewTask(pool, sink, fps.NewCounter(time.Second), nil, 0, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- task.Run(ctx)
	}()

	// the producer runs much faster than the sink
	for i := range 500 {
		publish(t, pool, uint16(i))
	}

	// the last frame published is always presented eventually
	deadline := time.Now().Add(5 * time.Second)
	for sink.Pixel(0, 0) != 499 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	test.ExpectEquality(t, sink.Pixel(0, 0), 499)

	cancel()
	test.ExpectSuccess(t, <-done)

	s := pool.Stats()
	test.ExpectEquality(t, s.Published, 500)
	test.ExpectEquality(t, s.Taken, sink.Transfers())
	test.ExpectSuccess(t, s.Dropped() > 0)
}

func newDirect(t *testing.T, sink *headless.Sink, band int, x, y int, obs present.Observer) (*present.Direct, *scaler.LUT, *palette.Cache) {
	t.Helper()
	lut, err := scaler.NewLUT(256, 240, 320, 240)
	test.DemandSuccess(t, err)
	cache, err := palette.NewCache(specification.PaletteNES, false)
	test.DemandSuccess(t, err)
	d, err := present.NewDirect(sink, lut, cache, fps.NewCounter(time.Second), obs, band, x, y)
	test.DemandSuccess(t, err)
	return d, lut, cache
}

func testFrame() display.SourceFrame {
	f := display.NewSourceFrame(256, 240)
	for y := range f {
		for x := range f[y] {
			f[y][x] = uint8((x + y) % 64)
		}
	}
	return f
}

// the panel contents are the same regardless of band height
func TestDirect(t *testing.T) {
	f := testFrame()

	for _, band := range []int{1, 8, 13, 240} {
		sink := headless.NewSink(480, 320, false)
		test.DemandSuccess(t, sink.Init())
		d, lut, cache := newDirect(t, sink, band, 80, 40, nil)

		test.DemandSuccess(t, d.Present(f))
		test.ExpectEquality(t, sink.Transfers(), uint64((240+band-1)/band), band)

		whole := make([]uint16, 320*240)
		test.DemandSuccess(t, scaler.Scale(f, lut, cache, whole))
		for y := range 240 {
			for x := range 320 {
				if sink.Pixel(80+x, 40+y) != whole[y*320+x] {
					t.Fatalf("band %d: pixel %d,%d differs", band, x, y)
				}
			}
		}
		test.ExpectEquality(t, sink.Pixel(79, 40), 0)
	}
}

func TestDirectConfiguration(t *testing.T) {
	sink := headless.NewSink(480, 320, false)
	lut, _ := scaler.NewLUT(256, 240, 320, 240)
	cache, _ := palette.NewCache(specification.PaletteNES, false)

	_, err := present.NewDirect(sink, lut, cache, fps.NewCounter(0), nil, 0, 0, 0)
	test.ExpectSuccess(t, errors.Is(err, display.ErrConfiguration))
	_, err = present.NewDirect(sink, lut, cache, fps.NewCounter(0), nil, 241, 0, 0)
	test.ExpectSuccess(t, errors.Is(err, display.ErrConfiguration))
}

func TestDirectTransferError(t *testing.T) {
	sink := headless.NewSink(320, 240, false)
	test.DemandSuccess(t, sink.Init())
	obs := &observer{}
	d, _, _ := newDirect(t, sink, 8, 0, 0, obs)

	sink.FailNext(1)
	test.ExpectSuccess(t, d.Present(testFrame()))
	test.ExpectEquality(t, sink.Transfers(), 0)
	test.ExpectEquality(t, d.TransferErrors(), 1)
	test.ExpectEquality(t, obs.errorCount(), 1)

	test.ExpectSuccess(t, d.Present(testFrame()))
	test.ExpectEquality(t, sink.Transfers(), 30)
	test.ExpectEquality(t, obs.errors[0].Frame, 0)
}

func TestDirectFrameGeometry(t *testing.T) {
	sink := headless.NewSink(320, 240, false)
	test.DemandSuccess(t, sink.Init())
	d, _, _ := newDirect(t, sink, 8, 0, 0, nil)

	err := d.Present(display.NewSourceFrame(255, 240))
	test.ExpectSuccess(t, errors.Is(err, display.ErrFrameGeometry))
	test.ExpectEquality(t, sink.Transfers(), 0)
}

// a decorator that sets the first pixel of every row
type marker struct{}

func (marker) Decorate(pix []uint16, width int, y0 int, y1 int) {
	for y := y0; y < y1; y++ {
		pix[(y-y0)*width] = 0xffff
	}
}

func TestDirectDecorator(t *testing.T) {
	sink := headless.NewSink(320, 240, false)
	test.DemandSuccess(t, sink.Init())
	d, _, _ := newDirect(t, sink, 7, 0, 0, nil)
	d.SetDecorator(marker{})

	test.DemandSuccess(t, d.Present(testFrame()))
	for y := range 240 {
		test.ExpectEquality(t, sink.Pixel(0, y), 0xffff, y)
	}
}

func TestNoAllocation(t *testing.T) {
	sink := headless.NewSink(320, 240, false)
	test.DemandSuccess(t, sink.Init())
	d, _, _ := newDirect(t, sink, 8, 0, 0, nil)
	f := testFrame()

	allocs := testing.AllocsPerRun(10, func() {
		_ = d.Present(f)
	})
	test.ExpectEquality(t, allocs, 0.0)

	pool, err := framebuffer.NewPool(2, 320, 240)
	test.DemandSuccess(t, err)
	task := present.NewTask(pool, sink, fps.NewCounter(time.Second), nil, 0, 0)
	allocs = testing.AllocsPerRun(10, func() {
		fb, _ := pool.Acquire()
		_ = pool.Publish(fb)
		<-pool.Ready()
		task.Service()
	})
	test.ExpectEquality(t, allocs, 0.0)
}

func TestObservers(t *testing.T) {
	a := &observer{}
	b := &observer{}
	obs := present.Observers{a, b}
	obs.Measurement(30)
	obs.TransferError(display.TransferError{Frame: 3})
	test.ExpectEquality(t, len(a.measurements), 1)
	test.ExpectEquality(t, len(b.measurements), 1)
	test.ExpectEquality(t, a.errorCount(), 1)
	test.ExpectEquality(t, b.errors[0].Frame, 3)
}
