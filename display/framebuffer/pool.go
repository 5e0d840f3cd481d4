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
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/panelpipe/panelpipe/display"
)

// Sentinel errors returned by the producer functions of the Pool. These
// indicate a programming error in the producer.
var (
	ErrAlreadyAcquired = errors.New("framebuffer: producer already holds a buffer")
	ErrNotHeld         = errors.New("framebuffer: buffer not held by producer")
)

// the value of the handoff slot when no buffer is waiting.
const empty = -1

// Stats records the activity of the pool. Values only ever increase.
type Stats struct {
	// number of buffers published by the producer
	Published uint64

	// number of published buffers taken back by the producer before the present
	// task saw them
	Retracted uint64

	// number of published buffers replaced in the slot by a later buffer
	Superseded uint64

	// number of buffers taken by the present task
	Taken uint64
}

// Dropped returns the number of published frames that were never presented.
func (s Stats) Dropped() uint64 {
	return s.Retracted + s.Superseded
}

// Pool of frame buffers with a single slot handoff from one producer to one
// consumer.
type Pool struct {
	buffers []*FrameBuffer

	// index of the buffer waiting to be presented or empty
	slot atomic.Int32

	// wakes the consumer. the capacity of one means that the producer never
	// blocks when sending and that the consumer never misses a publish
	signal chan struct{}

	// index of the buffer held by the producer or empty. only accessed by the
	// producer
	held int

	// frame number given to the next published buffer. only accessed by the
	// producer
	frame uint64

	published  atomic.Uint64
	retracted  atomic.Uint64
	superseded atomic.Uint64
	taken      atomic.Uint64
}

// NewPool is the preferred method of initialisation for the Pool type. All
// memory used by the pool is allocated here. There must be at least two
// buffers.
func NewPool(n int, width int, height int) (*Pool, error) {
	if n < 2 {
		return nil, fmt.Errorf("framebuffer: at least two buffers are required (%d): %w", n, display.ErrConfiguration)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("framebuffer: invalid dimensions %dx%d: %w", width, height, display.ErrConfiguration)
	}

	p := &Pool{
		buffers: make([]*FrameBuffer, n),
		signal:  make(chan struct{}, 1),
		held:    empty,
	}
	p.slot.Store(empty)

	for i := range p.buffers {
		p.buffers[i] = &FrameBuffer{
			Pix:    make([]uint16, width*height),
			Width:  width,
			Height: height,
			index:  i,
		}
	}

	return p, nil
}

// Len returns the number of buffers in the pool.
func (p *Pool) Len() int {
	return len(p.buffers)
}

// Acquire a buffer for writing. Idle buffers are preferred. If there are no
// idle buffers then the buffer waiting in the handoff slot is retracted.
// Acquire never blocks and never returns a buffer that is being presented.
//
// Acquire must only be called by the producer.
func (p *Pool) Acquire() (*FrameBuffer, error) {
	if p.held != empty {
		return nil, ErrAlreadyAcquired
	}

	for {
		for _, fb := range p.buffers {
			if fb.cas(Idle, Writable) {
				p.held = fb.index
				return fb, nil
			}
		}

		// no idle buffer so take back the buffer in the handoff slot. if the
		// consumer empties the slot first then the buffer it takes will not be
		// the only non-idle buffer for long
		idx := p.slot.Load()
		if idx != empty && p.slot.CompareAndSwap(idx, empty) {
			fb := p.buffers[idx]
			fb.ready.Store(false)
			fb.set(Writable)
			p.held = fb.index
			p.retracted.Add(1)
			return fb, nil
		}

		runtime.Gosched()
	}
}

// Publish the buffer to the present task. The buffer must have been returned
// by the most recent call to Acquire(). The buffer is placed in the handoff
// slot, replacing any buffer that is already waiting there.
//
// Publish must only be called by the producer.
func (p *Pool) Publish(fb *FrameBuffer) error {
	if fb == nil || fb.index != p.held {
		return ErrNotHeld
	}
	p.held = empty

	fb.Frame = p.frame
	p.frame++
	fb.ready.Store(true)
	fb.set(Pending)

	if old := p.slot.Swap(int32(fb.index)); old != empty {
		ofb := p.buffers[old]
		ofb.ready.Store(false)
		ofb.set(Idle)
		p.superseded.Add(1)
	}
	p.published.Add(1)

	select {
	case p.signal <- struct{}{}:
	default:
	}

	return nil
}

// Release a buffer without publishing it. The buffer returns to the Idle
// state.
//
// Release must only be called by the producer.
func (p *Pool) Release(fb *FrameBuffer) error {
	if fb == nil || fb.index != p.held {
		return ErrNotHeld
	}
	p.held = empty
	fb.set(Idle)
	return nil
}

// Ready returns the channel that receives a value after a buffer has been
// published. A value on the channel does not guarantee that Take() will
// return a buffer because the producer may have retracted it.
func (p *Pool) Ready() <-chan struct{} {
	return p.signal
}

// Take the buffer from the handoff slot. Returns nil if the slot is empty.
// The buffer must be returned with Done() once it has been presented.
//
// Take must only be called by the consumer.
func (p *Pool) Take() *FrameBuffer {
	idx := p.slot.Swap(empty)
	if idx == empty {
		return nil
	}
	fb := p.buffers[idx]
	fb.set(Readable)
	p.taken.Add(1)
	return fb
}

// Done returns the buffer to the Idle state. It must be called by the
// consumer once for every buffer returned by Take().
func (p *Pool) Done(fb *FrameBuffer) {
	fb.ready.Store(false)
	fb.set(Idle)
}

// Stats returns a copy of the current statistics.
func (p *Pool) Stats() Stats {
	return Stats{
		Published:  p.published.Load(),
		Retracted:  p.retracted.Load(),
		Superseded: p.superseded.Load(),
		Taken:      p.taken.Load(),
	}
}

// Snapshot returns the state of every buffer. The states are read one after
// the other and so the snapshot is only consistent when neither the producer
// nor the consumer is active.
func (p *Pool) Snapshot() []State {
	s := make([]State, len(p.buffers))
	for i, fb := range p.buffers {
		s[i] = fb.State()
	}
	return s
}

// Buffers returns the buffers in the pool. Intended for use before the
// pipeline starts, for example to clear the buffers.
func (p *Pool) Buffers() []*FrameBuffer {
	return p.buffers
}
