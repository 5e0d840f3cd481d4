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

// Package palette converts the indexed colours of the source video into the
// 16 bit colour values understood by the panel.
//
// The conversion is performed once, when the Cache is created, and the
// result is a 256 entry lookup table. The scaler reads from the table for
// every destination pixel and so the table is never modified while the
// pipeline is running. Rebuild() is provided for completeness but it is not
// safe to call while a frame is being scaled.
package palette

import (
	"fmt"
	"image/color"

	"github.com/panelpipe/panelpipe/display"
)

// Palette is an ordered list of up to 256 colours. The position of a colour in
// the list is the index used by the source video to select it.
type Palette []color.RGBA

// RGB565 packs 8 bit colour components into a 16 bit value. The least
// significant bits of each component are discarded.
func RGB565(r, g, b uint8) uint16 {
	return uint16(r&0xf8)<<8 | uint16(g&0xfc)<<3 | uint16(b>>3)
}

// Swap16 exchanges the high and low bytes of a 16 bit value.
func Swap16(v uint16) uint16 {
	return v>>8 | v<<8
}

// ToRGBA expands a 16 bit colour value to an opaque color.RGBA. The low bits
// of each component are filled from the high bits so that full intensity
// remains full intensity.
func ToRGBA(v uint16) color.RGBA {
	r := uint8(v>>11) & 0x1f
	g := uint8(v>>5) & 0x3f
	b := uint8(v) & 0x1f
	return color.RGBA{
		R: r<<3 | r>>2,
		G: g<<2 | g>>4,
		B: b<<3 | b>>2,
		A: 0xff,
	}
}

// Cache is the lookup table from source colour index to panel colour.
type Cache struct {
	table [256]uint16
	swap  bool
}

// NewCache creates a Cache from a palette. If swap is true then the colour
// values are byte swapped for panels that expect the high byte first.
//
// Indices beyond the length of the palette map to the first colour in the
// palette. An empty palette is a configuration error.
func NewCache(p Palette, swap bool) (*Cache, error) {
	c := &Cache{swap: swap}
	if err := c.Rebuild(p); err != nil {
		return nil, err
	}
	return c, nil
}

// NewCacheFromNative creates a Cache from colour values that are already in the
// panel's 16 bit format. No byte swapping is performed.
func NewCacheFromNative(native []uint16) (*Cache, error) {
	if len(native) == 0 {
		return nil, fmt.Errorf("palette: missing palette: %w", display.ErrConfiguration)
	}
	if len(native) > 256 {
		return nil, fmt.Errorf("palette: too many colours (%d): %w", len(native), display.ErrConfiguration)
	}

	c := &Cache{}
	for i := range c.table {
		if i < len(native) {
			c.table[i] = native[i]
		} else {
			c.table[i] = native[0]
		}
	}
	return c, nil
}

// Rebuild the lookup table from a new palette. The byte swapping setting
// given to NewCache() is preserved.
func (c *Cache) Rebuild(p Palette) error {
	if len(p) == 0 {
		return fmt.Errorf("palette: missing palette: %w", display.ErrConfiguration)
	}
	if len(p) > 256 {
		return fmt.Errorf("palette: too many colours (%d): %w", len(p), display.ErrConfiguration)
	}

	for i := range c.table {
		col := p[0]
		if i < len(p) {
			col = p[i]
		}
		c.table[i] = c.Native(col)
	}

	return nil
}

// Native converts a colour to the panel's 16 bit format, including byte
// swapping if required.
func (c *Cache) Native(col color.RGBA) uint16 {
	v := RGB565(col.R, col.G, col.B)
	if c.swap {
		v = Swap16(v)
	}
	return v
}

// Swapped returns true if the values in the Cache are byte swapped.
func (c *Cache) Swapped() bool {
	return c.swap
}

// Lookup returns the panel colour for the colour index.
func (c *Cache) Lookup(idx uint8) uint16 {
	return c.table[idx]
}

// Table returns the lookup table. The table must not be modified.
func (c *Cache) Table() *[256]uint16 {
	return &c.table
}
