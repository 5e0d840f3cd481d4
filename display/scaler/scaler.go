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

// Package scaler implements nearest-neighbour scaling of an indexed colour
// source frame into a 16 bit destination buffer.
//
// Scaling is a two step lookup per destination pixel. The LUT gives the
// source coordinate and the palette cache gives the colour value for the
// index found at that coordinate. There is no interpolation and no floating
// point arithmetic.
//
// Destination rows that map to the same source row as the previous
// destination row are copied from the previous destination row rather than
// being computed again. The output is identical.
package scaler

import (
	"fmt"

	"github.com/panelpipe/panelpipe/display"
	"github.com/panelpipe/panelpipe/display/palette"
)

// Scale writes the entire destination image into dest. Every pixel of dest in
// the range [0, DestWidth*DestHeight) is written exactly once.
//
// The frame must be at least as large as the source dimensions of the LUT and
// dest must be large enough for the destination image. If either of these
// conditions is not met then an error is returned and nothing is written.
func Scale(frame display.SourceFrame, lut *LUT, cache *palette.Cache, dest []uint16) error {
	return ScaleRows(frame, lut, cache, dest, 0, lut.DestHeight)
}

// ScaleRows writes the destination rows in the range [y0, y1) into dest. The
// first row written is at the start of dest. This allows a frame to be scaled
// one band at a time into a buffer that is smaller than the whole image.
func ScaleRows(frame display.SourceFrame, lut *LUT, cache *palette.Cache, dest []uint16, y0, y1 int) error {
	if y0 < 0 || y1 > lut.DestHeight || y0 > y1 {
		return fmt.Errorf("scaler: row range %d to %d outside of destination height %d", y0, y1, lut.DestHeight)
	}
	if err := checkFrame(frame, lut, y0, y1); err != nil {
		return err
	}

	w := lut.DestWidth
	if len(dest) < (y1-y0)*w {
		return fmt.Errorf("scaler: destination too small (%d pixels for %d rows of %d)", len(dest), y1-y0, w)
	}

	table := cache.Table()
	prevSrcRow := -1

	for y := y0; y < y1; y++ {
		srcRow := lut.YMap[y]
		row := dest[(y-y0)*w : (y-y0+1)*w]

		if srcRow == prevSrcRow {
			copy(row, dest[(y-y0-1)*w:(y-y0)*w])
			continue
		}
		prevSrcRow = srcRow

		src := frame[srcRow]
		for x, srcCol := range lut.XMap {
			row[x] = table[src[srcCol]]
		}
	}

	return nil
}

// checks the source rows that will be read when scaling destination rows y0
// to y1. the check is complete before anything is written
// CheckFrame returns an error wrapping display.ErrFrameGeometry if the frame
// is too small for the source dimensions of the LUT.
func CheckFrame(frame display.SourceFrame, lut *LUT) error {
	return checkFrame(frame, lut, 0, lut.DestHeight)
}

func checkFrame(frame display.SourceFrame, lut *LUT, y0, y1 int) error {
	if frame.Height() < lut.SrcHeight {
		return fmt.Errorf("scaler: frame has %d rows, expected %d: %w", frame.Height(), lut.SrcHeight, display.ErrFrameGeometry)
	}
	prev := -1
	for _, r := range lut.YMap[y0:y1] {
		if r == prev {
			continue
		}
		prev = r
		if len(frame[r]) < lut.SrcWidth {
			return fmt.Errorf("scaler: row %d has %d pixels, expected %d: %w", r, len(frame[r]), lut.SrcWidth, display.ErrFrameGeometry)
		}
	}
	return nil
}
