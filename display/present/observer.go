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

import "github.com/panelpipe/panelpipe/display"

// Observer is notified of events in the presentation of frames. Functions are
// called from the presenting goroutine and should return quickly.
type Observer interface {
	// a new frame rate measurement is available. called about once a second
	Measurement(fps float32)

	// a frame was dropped because the sink failed to transfer it
	TransferError(err display.TransferError)
}

// NopObserver ignores all events.
type NopObserver struct{}

// Measurement implements the Observer interface.
func (NopObserver) Measurement(float32) {}

// TransferError implements the Observer interface.
func (NopObserver) TransferError(display.TransferError) {}

// Decorator draws on top of the scaled image before it reaches the sink. The
// pix slice holds the destination rows y0 to y1 of an image that is width
// pixels wide, starting with row y0.
type Decorator interface {
	Decorate(pix []uint16, width int, y0 int, y1 int)
}

// Observers forwards every event to each Observer in turn.
type Observers []Observer

// Measurement implements the Observer interface.
func (obs Observers) Measurement(fps float32) {
	for _, o := range obs {
		o.Measurement(fps)
	}
}

// TransferError implements the Observer interface.
func (obs Observers) TransferError(err display.TransferError) {
	for _, o := range obs {
		o.TransferError(err)
	}
}
