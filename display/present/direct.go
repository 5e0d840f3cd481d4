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

package present

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/panelpipe/panelpipe/display"
	"github.com/panelpipe/panelpipe/display/fps"
	"github.com/panelpipe/panelpipe/display/palette"
	"github.com/panelpipe/panelpipe/display/scaler"
	"github.com/panelpipe/panelpipe/logger"
)

// Direct scales and transfers a frame on the calling goroutine. The frame is
// processed in bands of rows so that only one band of destination pixels is
// ever held in memory.
//
// A band height of one row is equivalent to pushing each row of the image
// separately. A band height equal to the destination height streams the entire
// image in one transfer.
type Direct struct {
	sink     display.Sink
	lut      *scaler.LUT
	cache    *palette.Cache
	counter  *fps.Counter
	observer Observer

	band       []uint16
	bandHeight int

	decorator Decorator

	x int
	y int

	// the clock used for frame rate measurement
	Now func() time.Time

	// the number given to the next frame
	frame uint64

	transferErrors atomic.Uint64
}

// NewDirect is the preferred method of initialisation for the Direct type. The
// band buffer is allocated here. A nil observer is replaced with NopObserver.
func NewDirect(sink display.Sink, lut *scaler.LUT, cache *palette.Cache, counter *fps.Counter, observer Observer, bandHeight int, x, y int) (*Direct, error) {
	if bandHeight <= 0 || bandHeight > lut.DestHeight {
		return nil, fmt.Errorf("present: band height %d outside of range 1 to %d: %w", bandHeight, lut.DestHeight, display.ErrConfiguration)
	}
	if observer == nil {
		observer = NopObserver{}
	}
	return &Direct{
		sink:       sink,
		lut:        lut,
		cache:      cache,
		counter:    counter,
		observer:   observer,
		band:       make([]uint16, lut.DestWidth*bandHeight),
		bandHeight: bandHeight,
		x:          x,
		y:          y,
		Now:        time.Now,
	}, nil
}

// SetDecorator sets the Decorator applied to each band before it is
// transferred. A nil value removes the decorator.
func (d *Direct) SetDecorator(dec Decorator) {
	d.decorator = dec
}

// Present scales and transfers the frame. An error is only returned if the
// frame has the wrong geometry, in which case nothing is transferred. A
// transfer error drops the remainder of the frame and is passed to the
// Observer.
func (d *Direct) Present(frame display.SourceFrame) error {
	if frame.Height() < d.lut.SrcHeight || frame.Width() < d.lut.SrcWidth {
		return fmt.Errorf("present: frame is %dx%d: %w", frame.Width(), frame.Height(), display.ErrFrameGeometry)
	}

	n := d.frame
	d.frame++

	w := d.lut.DestWidth
	for y0 := 0; y0 < d.lut.DestHeight; y0 += d.bandHeight {
		y1 := min(y0+d.bandHeight, d.lut.DestHeight)
		if err := scaler.ScaleRows(frame, d.lut, d.cache, d.band, y0, y1); err != nil {
			return err
		}

		if d.decorator != nil {
			d.decorator.Decorate(d.band, w, y0, y1)
		}

		if err := d.sink.Transfer(d.band[:(y1-y0)*w], w, y1-y0, d.x, d.y+y0); err != nil {
			d.transferErrors.Add(1)
			logger.Logf(logger.Allow, "present", "transfer failed: %v", err)
			d.observer.TransferError(display.TransferError{Frame: n, Err: err})
			return nil
		}
	}

	if d.counter.Tick(d.Now()) {
		d.observer.Measurement(d.counter.Measured())
	}

	return nil
}

// TransferErrors returns the number of frames dropped because of a transfer
// error.
func (d *Direct) TransferErrors() uint64 {
	return d.transferErrors.Load()
}
