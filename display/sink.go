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

// Sink is implemented by panel drivers. It is the only place where pixels
// leave the pipeline.
//
// A Sink is only ever used by one goroutine at a time. In DirectBlocking mode
// that is the producer and in DoubleBufferedAsync mode it is the present task.
type Sink interface {
	// Init performs the one-time bring-up of the panel. It is called before
	// any other function.
	Init() error

	// Transfer writes a w*h block of pixels to the panel with the top-left
	// corner at x,y. The pixels are in the panel's native RGB565 byte order.
	// Transfer may block for the duration of the hardware transfer. The pixel
	// slice must not be retained after Transfer returns.
	Transfer(pix []uint16, w, h, x, y int) error

	// SetBacklight sets the panel brightness. Zero is off and 255 is full
	// brightness.
	SetBacklight(level uint8) error

	// Size returns the dimensions of the panel in pixels.
	Size() (int, int)
}

// Closer is implemented by sinks that own operating system resources.
type Closer interface {
	Close() error
}
