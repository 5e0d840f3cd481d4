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

package display

// The geometry of the frames produced by the emulation engine.
const (
	SourceWidth  = 256
	SourceHeight = 240
)

// SourceFrame is an indexed colour image as produced by an emulation engine.
// Each row is a separate slice, allowing an engine to hand over the row
// pointers of its own framebuffer without copying.
//
// A SourceFrame is only borrowed by the pipeline for the duration of a call to
// OnFrameReady(). No reference to it is kept afterwards.
type SourceFrame [][]uint8

// NewSourceFrame allocates a frame of the given size. The rows share a single
// backing array.
func NewSourceFrame(width, height int) SourceFrame {
	pix := make([]uint8, width*height)
	f := make(SourceFrame, height)
	for y := range f {
		f[y] = pix[y*width : (y+1)*width : (y+1)*width]
	}
	return f
}

// Width returns the width of the narrowest row in the frame.
func (f SourceFrame) Width() int {
	if len(f) == 0 {
		return 0
	}
	w := len(f[0])
	for _, r := range f[1:] {
		w = min(w, len(r))
	}
	return w
}

// Height returns the number of rows in the frame.
func (f SourceFrame) Height() int {
	return len(f)
}

// Fill sets every pixel in the frame to the palette index.
func (f SourceFrame) Fill(idx uint8) {
	for _, r := range f {
		for x := range r {
			r[x] = idx
		}
	}
}
