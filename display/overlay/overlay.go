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

// Package overlay draws the measured frame rate over the destination image.
// The text is rendered into an alpha mask with the 7x13 basic font whenever
// the value changes. The mask is then applied to every band or buffer as it
// passes through the pipeline.
package overlay

import (
	"image"
	"math"
	"strconv"
	"sync/atomic"

	"github.com/panelpipe/panelpipe/display"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// the longest text the overlay will draw. "9999.9 fps"
const maxChars = 10

// Overlay implements both the present.Observer and present.Decorator
// interfaces. Measurements can arrive on any goroutine. Decorate must only be
// called by the goroutine that produces the destination image.
type Overlay struct {
	face *basicfont.Face

	mask   *image.Alpha
	drawer font.Drawer
	text   []byte

	colour uint16
	x      int
	y      int

	// most recent measurement in tenths of a frame per second
	value atomic.Int32

	// the value currently rendered in the mask. -1 forces a redraw
	drawn int32

	enabled atomic.Bool
}

// NewOverlay is the preferred method of initialisation for the Overlay type.
// Colour is in the native format of the panel. The position is relative to
// the top left of the destination image.
func NewOverlay(colour uint16, x, y int) *Overlay {
	face := basicfont.Face7x13
	o := &Overlay{
		face:   face,
		mask:   image.NewAlpha(image.Rect(0, 0, face.Advance*maxChars, face.Height)),
		text:   make([]byte, 0, maxChars+8),
		colour: colour,
		x:      x,
		y:      y,
		drawn:  -1,
	}
	o.drawer = font.Drawer{
		Dst:  o.mask,
		Src:  image.Opaque,
		Face: face,
	}
	o.enabled.Store(true)
	return o
}

// SetEnabled turns the overlay on or off.
func (o *Overlay) SetEnabled(on bool) {
	o.enabled.Store(on)
}

// Measurement implements the present.Observer interface.
func (o *Overlay) Measurement(fps float32) {
	v := int32(math.Round(float64(fps) * 10))
	v = min(max(v, 0), 99999)
	o.value.Store(v)
}

// TransferError implements the present.Observer interface.
func (o *Overlay) TransferError(_ display.TransferError) {
}

// Text returns the text currently rendered in the mask.
func (o *Overlay) Text() string {
	return string(o.text)
}

func (o *Overlay) redraw(v int32) {
	o.text = strconv.AppendFloat(o.text[:0], float64(v)/10, 'f', 1, 32)
	o.text = append(o.text, " fps"...)

	draw.Draw(o.mask, o.mask.Bounds(), image.Transparent, image.Point{}, draw.Src)
	o.drawer.Dot = fixed.P(0, o.face.Ascent)
	o.drawer.DrawBytes(o.text)

	o.drawn = v
}

// Decorate implements the present.Decorator interface. Pix holds rows y0 to
// y1 of a destination image of the given width.
func (o *Overlay) Decorate(pix []uint16, width int, y0 int, y1 int) {
	if !o.enabled.Load() {
		return
	}

	if v := o.value.Load(); v != o.drawn {
		o.redraw(v)
	}

	b := o.mask.Bounds()
	top := max(y0, o.y)
	bottom := min(y1, o.y+b.Dy())
	right := min(width, o.x+b.Dx())

	for y := top; y < bottom; y++ {
		m := o.mask.Pix[(y-o.y)*o.mask.Stride:]
		row := pix[(y-y0)*width:]
		for x := max(o.x, 0); x < right; x++ {
			if m[x-o.x] >= 0x80 {
				row[x] = o.colour
			}
		}
	}
}
