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

package framebuffer

import (
	"fmt"
	"sync/atomic"
)

// State of a FrameBuffer.
type State int32

// List of valid State values.
const (
	Idle State = iota
	Writable
	Pending
	Readable
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Writable:
		return "writable"
	case Pending:
		return "pending"
	case Readable:
		return "readable"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// FrameBuffer is a destination image in the panel's 16 bit colour format.
type FrameBuffer struct {
	// Pix is Width*Height pixels long. it must only be accessed by the owner
	// of the buffer: the producer between Acquire() and Publish() and the
	// present task between Take() and Done()
	Pix    []uint16
	Width  int
	Height int

	// the frame number of the image in the buffer. set by Publish()
	Frame uint64

	index int
	state atomic.Int32
	ready atomic.Bool
}

// Index of the buffer in its pool.
func (fb *FrameBuffer) Index() int {
	return fb.index
}

// State returns the current state of the buffer.
func (fb *FrameBuffer) State() State {
	return State(fb.state.Load())
}

// Ready returns true if the buffer contains a completely written image that
// has been published but not yet presented.
func (fb *FrameBuffer) Ready() bool {
	return fb.ready.Load()
}

func (fb *FrameBuffer) String() string {
	return fmt.Sprintf("buffer %d (%s, frame %d)", fb.index, fb.State(), fb.Frame)
}

func (fb *FrameBuffer) cas(from, to State) bool {
	return fb.state.CompareAndSwap(int32(from), int32(to))
}

func (fb *FrameBuffer) set(s State) {
	fb.state.Store(int32(s))
}
