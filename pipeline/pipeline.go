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

package pipeline

import (
	"context"
	"fmt"
	"image/color"
	"sync/atomic"

	"github.com/panelpipe/panelpipe/assert"
	"github.com/panelpipe/panelpipe/display"
	"github.com/panelpipe/panelpipe/display/fps"
	"github.com/panelpipe/panelpipe/display/framebuffer"
	"github.com/panelpipe/panelpipe/display/overlay"
	"github.com/panelpipe/panelpipe/display/palette"
	"github.com/panelpipe/panelpipe/display/present"
	"github.com/panelpipe/panelpipe/display/scaler"
	"github.com/panelpipe/panelpipe/display/specification"
	"github.com/panelpipe/panelpipe/logger"
)

// Pipeline is the context for scaling source frames and presenting them on a
// panel.
type Pipeline struct {
	cfg  Config
	sink display.Sink

	lut     *scaler.LUT
	cache   *palette.Cache
	counter *fps.Counter

	observer present.Observer
	overlay  *overlay.Overlay

	// DoubleBufferedAsync mode
	pool *framebuffer.Pool
	task *present.Task

	// DirectBlocking mode
	direct *present.Direct

	// origin of the destination image on the panel
	x int
	y int

	started  atomic.Bool
	produced atomic.Uint64

	producer assert.Owner
}

// NewPipeline is the preferred method of initialisation for the Pipeline
// type. All memory used by the pipeline is allocated here. Any error returned
// wraps display.ErrConfiguration and should be treated as fatal.
//
// The observer argument can be nil.
func NewPipeline(cfg Config, sink display.Sink, pal palette.Palette, observer present.Observer) (*Pipeline, error) {
	if sink == nil {
		return nil, fmt.Errorf("pipeline: no display sink: %w", display.ErrConfiguration)
	}

	var err error
	cfg, err = cfg.resolve()
	if err != nil {
		return nil, err
	}

	if w, h := sink.Size(); w < cfg.Panel.Width || h < cfg.Panel.Height {
		return nil, fmt.Errorf("pipeline: sink is %dx%d and panel is %v: %w", w, h, cfg.Panel, display.ErrConfiguration)
	}

	p := &Pipeline{
		cfg:      cfg,
		sink:     sink,
		counter:  fps.NewCounter(fps.DefaultWindow),
		x:        (cfg.Panel.Width - cfg.DestWidth) / 2,
		y:        (cfg.Panel.Height - cfg.DestHeight) / 2,
		producer: assert.Owner{Role: "pipeline producer"},
	}

	p.lut, err = scaler.NewLUT(cfg.SourceWidth, cfg.SourceHeight, cfg.DestWidth, cfg.DestHeight)
	if err != nil {
		return nil, err
	}

	p.cache, err = palette.NewCache(pal, cfg.Swap)
	if err != nil {
		return nil, err
	}

	var observers present.Observers
	if cfg.Overlay {
		p.overlay = overlay.NewOverlay(p.cache.Native(color.RGBA{R: 255, G: 255, B: 255, A: 255}), 2, 2)
		observers = append(observers, p.overlay)
	}
	if observer != nil {
		observers = append(observers, observer)
	}
	switch len(observers) {
	case 0:
		p.observer = present.NopObserver{}
	case 1:
		p.observer = observers[0]
	default:
		p.observer = observers
	}

	switch cfg.Mode {
	case display.DirectBlocking:
		p.direct, err = present.NewDirect(sink, p.lut, p.cache, p.counter, p.observer, cfg.BandHeight, p.x, p.y)
		if err != nil {
			return nil, err
		}
		if p.overlay != nil {
			p.direct.SetDecorator(p.overlay)
		}
	case display.DoubleBufferedAsync:
		p.pool, err = framebuffer.NewPool(cfg.Buffers, cfg.DestWidth, cfg.DestHeight)
		if err != nil {
			return nil, err
		}
		p.task = present.NewTask(p.pool, sink, p.counter, p.observer, p.x, p.y)
	}

	logger.Logf(logger.Allow, "pipeline", "%v: %v in %s mode", cfg.Panel, p.lut, cfg.Mode)

	return p, nil
}

// Start brings up the sink, sets the backlight and clears the panel to the
// background colour. It must be called once before any frames are produced.
func (p *Pipeline) Start() error {
	if p.started.Swap(true) {
		return nil
	}

	if err := p.sink.Init(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	if err := p.sink.SetBacklight(p.cfg.Backlight); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	bg := p.cache.Native(specification.Background)
	row := make([]uint16, p.cfg.Panel.Width)
	for i := range row {
		row[i] = bg
	}
	for y := range p.cfg.Panel.Height {
		if err := p.sink.Transfer(row, len(row), 1, 0, y); err != nil {
			return fmt.Errorf("pipeline: clearing panel: %w", err)
		}
	}

	if p.pool != nil {
		for _, fb := range p.pool.Buffers() {
			for i := range fb.Pix {
				fb.Pix[i] = bg
			}
		}
	}

	logger.Logf(logger.Allow, "pipeline", "started with image at %d,%d", p.x, p.y)

	return nil
}

// OnFrameReady accepts a completed source frame from the producer. It must
// only ever be called from one goroutine. The frame can be modified by the
// producer as soon as the function returns.
//
// In DoubleBufferedAsync mode the function never waits for the sink. In
// DirectBlocking mode the function returns when the frame has been
// transferred.
//
// Transfer errors are not returned. They are reported to the observer.
func (p *Pipeline) OnFrameReady(frame display.SourceFrame) error {
	p.producer.Claim()

	if p.direct != nil {
		if err := p.direct.Present(frame); err != nil {
			return err
		}
		p.produced.Add(1)
		return nil
	}

	// a frame with the wrong geometry must not cost the pending frame its
	// buffer
	if err := scaler.CheckFrame(frame, p.lut); err != nil {
		return err
	}

	fb, err := p.pool.Acquire()
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	if err := scaler.Scale(frame, p.lut, p.cache, fb.Pix); err != nil {
		_ = p.pool.Release(fb)
		return err
	}

	if p.overlay != nil {
		p.overlay.Decorate(fb.Pix, fb.Width, 0, fb.Height)
	}

	if err := p.pool.Publish(fb); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	p.produced.Add(1)

	return nil
}

// Run the present task until the context is cancelled. In DirectBlocking mode
// there is nothing for the task to do and the function simply waits.
func (p *Pipeline) Run(ctx context.Context) error {
	if p.task == nil {
		<-ctx.Done()
		return nil
	}
	return p.task.Run(ctx)
}

// Config returns the resolved configuration of the pipeline.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Origin returns the position of the destination image on the panel.
func (p *Pipeline) Origin() (int, int) {
	return p.x, p.y
}

// FPS returns the measured rate at which frames are being presented.
func (p *Pipeline) FPS() float32 {
	return p.counter.Measured()
}

// Presented returns the number of frames that have been presented.
func (p *Pipeline) Presented() uint64 {
	return p.counter.Total()
}

// Produced returns the number of frames accepted by OnFrameReady().
func (p *Pipeline) Produced() uint64 {
	return p.produced.Load()
}

// Stats returns the statistics of the buffer pool. In DirectBlocking mode
// there is no pool and the zero value is returned.
func (p *Pipeline) Stats() framebuffer.Stats {
	if p.pool == nil {
		return framebuffer.Stats{}
	}
	return p.pool.Stats()
}

// TransferErrors returns the number of failed transfers.
func (p *Pipeline) TransferErrors() uint64 {
	if p.task != nil {
		return p.task.TransferErrors()
	}
	return p.direct.TransferErrors()
}

// Overlay returns the frame rate overlay. Returns nil if the overlay is not
// enabled.
func (p *Pipeline) Overlay() *overlay.Overlay {
	return p.overlay
}

func (p *Pipeline) String() string {
	return fmt.Sprintf("%v: %v (%s)", p.cfg.Panel, p.lut, p.cfg.Mode)
}
