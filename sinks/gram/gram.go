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

// Package gram is the pixel memory of an emulated panel. Sinks that draw to a
// window on the host write to a GRAM from whichever goroutine calls Transfer()
// and refresh the window from it on the goroutine that owns the window. This
// is how the controller of a real panel behaves: the bus writes to the
// controller's memory and the controller refreshes the glass independently.
package gram

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/panelpipe/panelpipe/display/palette"
)

// ErrRegion is returned when a write does not fit inside the panel.
var ErrRegion = errors.New("gram: region outside of panel")

// GRAM is safe to use from any number of goroutines.
type GRAM struct {
	crit sync.Mutex

	width   int
	height  int
	swapped bool

	// pixels in the host's native RGB565 byte order
	pix []uint16

	// rows written since the last Flush(). the range is empty when top is
	// not less than bottom
	top    int
	bottom int
}

// NewGRAM is the preferred method of initialisation for the GRAM type. If
// swapped is true the pixels written to the GRAM are byte swapped and are
// converted to native order as they are written.
func NewGRAM(width, height int, swapped bool) *GRAM {
	return &GRAM{
		width:   width,
		height:  height,
		swapped: swapped,
		pix:     make([]uint16, width*height),
	}
}

// Size returns the dimensions of the panel.
func (g *GRAM) Size() (int, int) {
	return g.width, g.height
}

// Write a rectangle of pixels. The pix slice holds h rows of w pixels.
func (g *GRAM) Write(pix []uint16, w, h, x, y int) error {
	if x < 0 || y < 0 || w < 0 || h < 0 || x+w > g.width || y+h > g.height {
		return fmt.Errorf("%w: %dx%d at %d,%d", ErrRegion, w, h, x, y)
	}
	if len(pix) < w*h {
		return fmt.Errorf("gram: %d pixels for a %dx%d region", len(pix), w, h)
	}

	g.crit.Lock()
	defer g.crit.Unlock()

	for r := range h {
		dst := g.pix[(y+r)*g.width+x : (y+r)*g.width+x+w]
		src := pix[r*w : (r+1)*w]
		if g.swapped {
			for i, v := range src {
				dst[i] = palette.Swap16(v)
			}
		} else {
			copy(dst, src)
		}
	}

	g.mark(y, y+h)

	return nil
}

// Fill the entire panel with a colour in native byte order.
func (g *GRAM) Fill(v uint16) {
	g.crit.Lock()
	defer g.crit.Unlock()
	for i := range g.pix {
		g.pix[i] = v
	}
	g.mark(0, g.height)
}

func (g *GRAM) mark(y0, y1 int) {
	if y0 >= y1 {
		return
	}
	if g.top >= g.bottom {
		g.top, g.bottom = y0, y1
		return
	}
	g.top = min(g.top, y0)
	g.bottom = max(g.bottom, y1)
}

// Dirty returns true if any rows have been written since the last Flush().
func (g *GRAM) Dirty() bool {
	g.crit.Lock()
	defer g.crit.Unlock()
	return g.top < g.bottom
}

// Flush calls the function with the rows written since the previous call. The
// pix slice starts at row y0 and each row is the width of the panel. Nothing
// can be written to the GRAM while the function runs. If the function returns
// an error the rows stay marked as written.
func (g *GRAM) Flush(f func(pix []uint16, stride int, y0 int, y1 int) error) error {
	g.crit.Lock()
	defer g.crit.Unlock()

	if g.top >= g.bottom {
		return nil
	}

	if err := f(g.pix[g.top*g.width:g.bottom*g.width], g.width, g.top, g.bottom); err != nil {
		return err
	}

	g.top, g.bottom = 0, 0
	return nil
}

// Pixel returns the value at the coordinates in native byte order.
func (g *GRAM) Pixel(x, y int) uint16 {
	g.crit.Lock()
	defer g.crit.Unlock()
	return g.pix[y*g.width+x]
}

// Image returns a copy of the panel contents.
func (g *GRAM) Image() *image.RGBA {
	g.crit.Lock()
	defer g.crit.Unlock()

	img := image.NewRGBA(image.Rect(0, 0, g.width, g.height))
	for y := range g.height {
		for x := range g.width {
			img.SetRGBA(x, y, palette.ToRGBA(g.pix[y*g.width+x]))
		}
	}
	return img
}

// RGBA converts rows of pixels to 8 bit RGBA. The dst slice must have room
// for four bytes for every pixel. The backlight level scales every colour.
func RGBA(dst []byte, pix []uint16, backlight uint8) {
	for i, v := range pix {
		c := palette.ToRGBA(v)
		d := dst[i*4 : i*4+4 : i*4+4]
		if backlight == 255 {
			d[0], d[1], d[2] = c.R, c.G, c.B
		} else {
			d[0] = uint8(uint16(c.R) * uint16(backlight) / 255)
			d[1] = uint8(uint16(c.G) * uint16(backlight) / 255)
			d[2] = uint8(uint16(c.B) * uint16(backlight) / 255)
		}
		d[3] = 0xff
	}
}
