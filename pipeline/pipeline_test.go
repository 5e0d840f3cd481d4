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

package pipeline_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/panelpipe/panelpipe/assert"
	"github.com/panelpipe/panelpipe/display"
	"github.com/panelpipe/panelpipe/display/palette"
	"github.com/panelpipe/panelpipe/display/present"
	"github.com/panelpipe/panelpipe/display/specification"
	"github.com/panelpipe/panelpipe/pipeline"
	"github.com/panelpipe/panelpipe/sinks/headless"
	"github.com/panelpipe/panelpipe/test"
)

type observer struct {
	crit   sync.Mutex
	errors []display.TransferError
}

func (o *observer) Measurement(float32) {}

func (o *observer) TransferError(err display.TransferError) {
	o.crit.Lock()
	defer o.crit.Unlock()
	o.errors = append(o.errors, err)
}

func (o *observer) count() int {
	o.crit.Lock()
	defer o.crit.Unlock()
	return len(o.errors)
}

// a frame where every row is filled with the index of the row modulo 64
func rowFrame() display.SourceFrame {
	f := display.NewSourceFrame(display.SourceWidth, display.SourceHeight)
	for y := range f {
		for x := range f[y] {
			f[y][x] = uint8(y % 64)
		}
	}
	return f
}

func newPipeline(t *testing.T, cfg pipeline.Config, obs present.Observer) (*pipeline.Pipeline, *headless.Sink) {
	t.Helper()
	sink := headless.NewSink(cfg.Panel.Width, cfg.Panel.Height, cfg.Swap)
	p, err := pipeline.NewPipeline(cfg, sink, specification.PaletteNES, obs)
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, p.Start())
	return p, sink
}

func TestConfiguration(t *testing.T) {
	cfg := pipeline.DefaultConfig(specification.PanelILI9488)
	sink := headless.NewSink(480, 320, true)

	var err error
	_, err = pipeline.NewPipeline(cfg, nil, specification.PaletteNES, nil)
	test.ExpectSuccess(t, errors.Is(err, display.ErrConfiguration))

	_, err = pipeline.NewPipeline(cfg, sink, nil, nil)
	test.ExpectSuccess(t, errors.Is(err, display.ErrConfiguration), "missing palette")

	c := cfg
	c.Panel.Width = 0
	_, err = pipeline.NewPipeline(c, sink, specification.PaletteNES, nil)
	test.ExpectSuccess(t, errors.Is(err, display.ErrConfiguration), "zero width")

	c = cfg
	c.DestWidth = 481
	c.DestHeight = 320
	_, err = pipeline.NewPipeline(c, sink, specification.PaletteNES, nil)
	test.ExpectSuccess(t, errors.Is(err, display.ErrConfiguration), "destination larger than panel")

	c = cfg
	c.Buffers = 1
	_, err = pipeline.NewPipeline(c, sink, specification.PaletteNES, nil)
	test.ExpectSuccess(t, errors.Is(err, display.ErrConfiguration), "one buffer")

	c = cfg
	c.Mode = display.PresentMode(99)
	_, err = pipeline.NewPipeline(c, sink, specification.PaletteNES, nil)
	test.ExpectSuccess(t, errors.Is(err, display.ErrConfiguration), "unknown mode")

	_, err = pipeline.NewPipeline(cfg, headless.NewSink(320, 240, true), specification.PaletteNES, nil)
	test.ExpectSuccess(t, errors.Is(err, display.ErrConfiguration), "sink smaller than panel")

	p, err := pipeline.NewPipeline(cfg, sink, specification.PaletteNES, nil)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, p.Config().DestWidth, 480)
	test.ExpectEquality(t, p.Config().DestHeight, 320)
	x, y := p.Origin()
	test.ExpectEquality(t, x, 0)
	test.ExpectEquality(t, y, 0)
}

func TestScaleMode(t *testing.T) {
	m, err := pipeline.ParseScaleMode("ASPECT")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, m, pipeline.Aspect)
	_, err = pipeline.ParseScaleMode("zoom")
	test.ExpectSuccess(t, errors.Is(err, display.ErrConfiguration))

	cfg := pipeline.DefaultConfig(specification.PanelILI9488)
	cfg.Scale = pipeline.Aspect
	p, err := pipeline.NewPipeline(cfg, headless.NewSink(480, 320, true), specification.PaletteNES, nil)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, p.Config().DestWidth, 341)
	test.ExpectEquality(t, p.Config().DestHeight, 320)
	x, y := p.Origin()
	test.ExpectEquality(t, x, 69)
	test.ExpectEquality(t, y, 0)

	cfg = pipeline.DefaultConfig(specification.PanelST7789)
	cfg.Scale = pipeline.Aspect
	p, err = pipeline.NewPipeline(cfg, headless.NewSink(240, 240, true), specification.PaletteNES, nil)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, p.Config().DestWidth, 240)
	test.ExpectEquality(t, p.Config().DestHeight, 225)
	x, y = p.Origin()
	test.ExpectEquality(t, x, 0)
	test.ExpectEquality(t, y, 7)
}

func TestStart(t *testing.T) {
	cfg := pipeline.DefaultConfig(specification.PanelILI9341)
	p, sink := newPipeline(t, cfg, nil)
	_ = p

	test.ExpectEquality(t, sink.Backlight(), specification.PanelILI9341.Backlight)
	test.ExpectEquality(t, sink.Transfers(), 240)

	bg := palette.Swap16(palette.RGB565(24, 28, 24))
	test.ExpectEquality(t, sink.Pixel(0, 0), bg)
	test.ExpectEquality(t, sink.Pixel(319, 239), bg)
}

func TestDirectBlocking(t *testing.T) {
	cfg := pipeline.DefaultConfig(specification.PanelILI9488)
	cfg.Mode = display.DirectBlocking
	cfg.Scale = pipeline.Aspect
	p, sink := newPipeline(t, cfg, nil)

	cache, err := palette.NewCache(specification.PaletteNES, true)
	test.DemandSuccess(t, err)

	start := sink.Transfers()
	test.DemandSuccess(t, p.OnFrameReady(rowFrame()))

	// ILI9488 transfers one row at a time
	test.ExpectEquality(t, sink.Transfers()-start, 320)
	test.ExpectEquality(t, p.Produced(), 1)
	test.ExpectEquality(t, p.Presented(), 1)

	for y := range 320 {
		exp := cache.Lookup(uint8((y * 240 / 320) % 64))
		test.DemandEquality(t, sink.Pixel(69, y), exp, y)
		test.DemandEquality(t, sink.Pixel(69+340, y), exp, y)
	}

	// the border is untouched
	bg := cache.Native(specification.Background)
	test.ExpectEquality(t, sink.Pixel(68, 100), bg)
	test.ExpectEquality(t, sink.Pixel(69+341, 100), bg)

	// Run does nothing other than wait
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	test.ExpectSuccess(t, p.Run(ctx))
	test.ExpectEquality(t, p.Stats().Published, 0)
}

func TestFrameGeometry(t *testing.T) {
	for _, mode := range []display.PresentMode{display.DirectBlocking, display.DoubleBufferedAsync} {
		cfg := pipeline.DefaultConfig(specification.PanelHost)
		cfg.Mode = mode
		p, sink := newPipeline(t, cfg, nil)
		start := sink.Transfers()

		err := p.OnFrameReady(display.NewSourceFrame(256, 200))
		test.ExpectSuccess(t, errors.Is(err, display.ErrFrameGeometry), mode)
		test.ExpectEquality(t, sink.Transfers(), start, mode)
		test.ExpectEquality(t, p.Produced(), 0, mode)

		// the pipeline is still usable
		test.ExpectSuccess(t, p.OnFrameReady(rowFrame()), mode)
	}
}

// a frame with the wrong geometry does not drop the frame waiting to be
// presented
func TestFrameGeometryKeepsPending(t *testing.T) {
	cfg := pipeline.DefaultConfig(specification.PanelHost)
	cfg.Mode = display.DoubleBufferedAsync
	p, sink := newPipeline(t, cfg, nil)
	sink.SetLatency(100 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- p.Run(ctx)
	}()

	// the first frame is being transferred and the second is pending
	test.DemandSuccess(t, p.OnFrameReady(rowFrame()))
	deadline := time.Now().Add(5 * time.Second)
	for p.Stats().Taken == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	test.DemandEquality(t, p.Stats().Taken, 1)
	test.DemandSuccess(t, p.OnFrameReady(rowFrame()))

	err := p.OnFrameReady(display.NewSourceFrame(256, 200))
	test.ExpectSuccess(t, errors.Is(err, display.ErrFrameGeometry))

	for p.Presented() < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	test.ExpectEquality(t, p.Presented(), 2)

	s := p.Stats()
	test.ExpectEquality(t, s.Published, 2)
	test.ExpectEquality(t, s.Dropped(), 0)

	cancel()
	test.ExpectSuccess(t, <-done)
}

func TestDoubleBufferedAsync(t *testing.T) {
	cfg := pipeline.DefaultConfig(specification.PanelHost)
	p, sink := newPipeline(t, cfg, nil)
	sink.SetLatency(2 * time.Millisecond)

	var consumer atomic.Uint64
	sink.SetTransferHook(func(_ []uint16, _, _, _, _ int) {
		consumer.Store(assert.GetGoRoutineID())
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- p.Run(ctx)
	}()

	producer := assert.GetGoRoutineID()

	f := rowFrame()
	for i := range 60 {
		f.Fill(uint8(i))
		test.DemandSuccess(t, p.OnFrameReady(f))
	}

	// the final frame is presented eventually
	cache, _ := palette.NewCache(specification.PaletteNES, false)
	exp := cache.Lookup(59)
	deadline := time.Now().Add(5 * time.Second)
	for sink.Pixel(100, 100) != exp && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	test.ExpectEquality(t, sink.Pixel(100, 100), exp)

	cancel()
	test.ExpectSuccess(t, <-done)

	test.ExpectInequality(t, consumer.Load(), 0)
	test.ExpectInequality(t, consumer.Load(), producer)

	s := p.Stats()
	test.ExpectEquality(t, s.Published, 60)
	test.ExpectEquality(t, p.Produced(), 60)
	test.ExpectEquality(t, s.Taken, p.Presented())
	test.ExpectEquality(t, s.Taken+s.Dropped(), s.Published)
}

func TestTransferError(t *testing.T) {
	obs := &observer{}
	cfg := pipeline.DefaultConfig(specification.PanelHost)
	p, sink := newPipeline(t, cfg, obs)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	sink.FailNext(1)
	test.DemandSuccess(t, p.OnFrameReady(rowFrame()))

	deadline := time.Now().Add(5 * time.Second)
	for obs.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	test.ExpectEquality(t, obs.count(), 1)
	test.ExpectEquality(t, p.TransferErrors(), 1)

	// the pipeline continues with the next frame
	f := rowFrame()
	f.Fill(7)
	test.DemandSuccess(t, p.OnFrameReady(f))
	cache, _ := palette.NewCache(specification.PaletteNES, false)
	for sink.Pixel(0, 0) != cache.Lookup(7) && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	test.ExpectEquality(t, sink.Pixel(0, 0), cache.Lookup(7))
}

func TestOverlay(t *testing.T) {
	cfg := pipeline.DefaultConfig(specification.PanelHost)
	cfg.Mode = display.DirectBlocking
	cfg.Overlay = true
	p, sink := newPipeline(t, cfg, nil)
	test.DemandSuccess(t, p.Overlay() != nil)

	f := display.NewSourceFrame(256, 240)
	f.Fill(0x0f)
	test.DemandSuccess(t, p.OnFrameReady(f))

	white := palette.RGB565(255, 255, 255)
	var n int
	for y := range 20 {
		for x := range 80 {
			if sink.Pixel(x, y) == white {
				n++
			}
		}
	}
	test.ExpectSuccess(t, n > 0)
	test.ExpectEquality(t, p.Overlay().Text(), "0.0 fps")
}
