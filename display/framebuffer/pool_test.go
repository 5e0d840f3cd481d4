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

package framebuffer_test

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/panelpipe/panelpipe/display"
	"github.com/panelpipe/panelpipe/display/framebuffer"
	"github.com/panelpipe/panelpipe/test"
)

func countStates(states []framebuffer.State, s framebuffer.State) int {
	var n int
	for _, st := range states {
		if st == s {
			n++
		}
	}
	return n
}

func TestConfiguration(t *testing.T) {
	_, err := framebuffer.NewPool(1, 480, 320)
	test.ExpectSuccess(t, errors.Is(err, display.ErrConfiguration))
	_, err = framebuffer.NewPool(2, 0, 320)
	test.ExpectSuccess(t, errors.Is(err, display.ErrConfiguration))

	p, err := framebuffer.NewPool(2, 480, 320)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, p.Len(), 2)
	for _, fb := range p.Buffers() {
		test.ExpectEquality(t, len(fb.Pix), 480*320)
		test.ExpectEquality(t, fb.State(), framebuffer.Idle)
		test.ExpectFailure(t, fb.Ready())
	}
}

func TestLifecycle(t *testing.T) {
	p, err := framebuffer.NewPool(2, 4, 4)
	test.DemandSuccess(t, err)

	fb, err := p.Acquire()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, fb.State(), framebuffer.Writable)

	// only one buffer can be held by the producer
	_, err = p.Acquire()
	test.ExpectSuccess(t, errors.Is(err, framebuffer.ErrAlreadyAcquired))

	// nothing has been published yet
	test.ExpectSuccess(t, p.Take() == nil)

	test.DemandSuccess(t, p.Publish(fb))
	test.ExpectEquality(t, fb.State(), framebuffer.Pending)
	test.ExpectSuccess(t, fb.Ready())
	test.ExpectEquality(t, fb.Frame, 0)

	// publishing twice is an error
	test.ExpectSuccess(t, errors.Is(p.Publish(fb), framebuffer.ErrNotHeld))

	select {
	case <-p.Ready():
	default:
		t.Fatalf("expected ready signal after publish")
	}

	got := p.Take()
	test.DemandSuccess(t, got == fb)
	test.ExpectEquality(t, got.State(), framebuffer.Readable)

	p.Done(got)
	test.ExpectEquality(t, got.State(), framebuffer.Idle)
	test.ExpectFailure(t, got.Ready())

	stats := p.Stats()
	test.ExpectEquality(t, stats.Published, 1)
	test.ExpectEquality(t, stats.Taken, 1)
	test.ExpectEquality(t, stats.Dropped(), 0)
}

func TestRelease(t *testing.T) {
	p, err := framebuffer.NewPool(2, 4, 4)
	test.DemandSuccess(t, err)

	fb, err := p.Acquire()
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, p.Release(fb))
	test.ExpectEquality(t, fb.State(), framebuffer.Idle)
	test.ExpectSuccess(t, errors.Is(p.Release(fb), framebuffer.ErrNotHeld))

	_, err = p.Acquire()
	test.ExpectSuccess(t, err)
}

// while the consumer holds one buffer the producer alternates over the other
// buffer, retracting it from the slot each time
func TestRetract(t *testing.T) {
	p, err := framebuffer.NewPool(2, 4, 4)
	test.DemandSuccess(t, err)

	a, _ := p.Acquire()
	test.DemandSuccess(t, p.Publish(a))
	<-p.Ready()
	presenting := p.Take()
	test.DemandSuccess(t, presenting == a)

	for i := range 5 {
		fb, err := p.Acquire()
		test.DemandSuccess(t, err)
		test.ExpectInequality(t, fb, presenting, i)
		test.DemandSuccess(t, p.Publish(fb))

		states := p.Snapshot()
		test.ExpectEquality(t, countStates(states, framebuffer.Readable), 1)
		test.ExpectEquality(t, countStates(states, framebuffer.Pending), 1)
	}

	// the first of the five was never retracted because there was an idle
	// buffer at the time
	test.ExpectEquality(t, p.Stats().Retracted, 4)

	p.Done(presenting)
	<-p.Ready()
	last := p.Take()
	test.DemandSuccess(t, last != nil)
	test.ExpectEquality(t, last.Frame, 5)
	p.Done(last)

	test.ExpectEquality(t, countStates(p.Snapshot(), framebuffer.Idle), 2)
}

// with more than two buffers, an idle buffer is preferred and the waiting
// buffer is superseded when the new buffer is published
func TestSupersede(t *testing.T) {
	p, err := framebuffer.NewPool(3, 4, 4)
	test.DemandSuccess(t, err)

	a, _ := p.Acquire()
	test.DemandSuccess(t, p.Publish(a))
	b, _ := p.Acquire()
	test.ExpectInequality(t, a, b)
	test.DemandSuccess(t, p.Publish(b))

	test.ExpectEquality(t, a.State(), framebuffer.Idle)
	test.ExpectEquality(t, p.Stats().Superseded, 1)

	<-p.Ready()
	got := p.Take()
	test.DemandSuccess(t, got == b)
	test.ExpectEquality(t, got.Frame, 1)

	// only one signal was queued for the two publishes
	select {
	case <-p.Ready():
		t.Errorf("unexpected second ready signal")
	default:
	}
	p.Done(got)
}

// the producer never blocks. even when the consumer never takes anything
func TestProducerNeverBlocks(t *testing.T) {
	p, err := framebuffer.NewPool(2, 4, 4)
	test.DemandSuccess(t, err)

	done := make(chan bool)
	go func() {
		for range 1000 {
			fb, err := p.Acquire()
			if err != nil {
				t.Error(err)
				break
			}
			if err := p.Publish(fb); err != nil {
				t.Error(err)
				break
			}
		}
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("producer blocked")
	}

	s := p.Stats()
	test.ExpectEquality(t, s.Published, 1000)
	test.ExpectEquality(t, s.Dropped(), 999)
}

// a producer running much faster than the consumer. every frame the consumer
// sees must be complete and must belong to a buffer that the producer does not
// hold. the run is bounded by the number of frames produced and the consumer
// must always end up presenting the final frame, so nothing can deadlock
func TestOverproduction(t *testing.T) {
	const frames = 5000

	for _, n := range []int{2, 3} {
		p, err := framebuffer.NewPool(n, 64, 16)
		test.DemandSuccess(t, err)

		var held atomic.Int32
		held.Store(-1)

		var wg sync.WaitGroup
		wg.Add(1)

		go func() {
			defer wg.Done()
			var v uint16
			for range frames {
				fb, err := p.Acquire()
				if err != nil {
					t.Error(err)
					return
				}
				held.Store(int32(fb.Index()))
				v++
				for i := range fb.Pix {
					fb.Pix[i] = v
				}
				held.Store(-1)
				if err := p.Publish(fb); err != nil {
					t.Error(err)
					return
				}

				// give the consumer a chance to run when there is only one CPU
				runtime.Gosched()
			}
		}()

		var presented int
		var lastFrame uint64
		for presented == 0 || lastFrame < frames-1 {
			select {
			case <-p.Ready():
			case <-time.After(30 * time.Second):
				t.Fatalf("deadlock after %d presents (last frame %d)", presented, lastFrame)
			}

			fb := p.Take()
			if fb == nil {
				continue
			}

			if int32(fb.Index()) == held.Load() {
				t.Fatalf("buffer %d held by producer and consumer", fb.Index())
			}

			// no tearing
			v := fb.Pix[0]
			for _, px := range fb.Pix {
				if px != v {
					t.Fatalf("torn frame in %v", fb)
				}
			}

			// frames are presented in order
			if presented > 0 && fb.Frame <= lastFrame {
				t.Fatalf("frame %d presented after frame %d", fb.Frame, lastFrame)
			}
			lastFrame = fb.Frame

			// a slow transfer
			time.Sleep(50 * time.Microsecond)

			p.Done(fb)
			presented++
		}

		wg.Wait()

		s := p.Stats()
		test.ExpectEquality(t, s.Published, frames)
		test.ExpectEquality(t, s.Taken, uint64(presented))
		test.ExpectEquality(t, s.Published, s.Taken+s.Dropped())
		test.ExpectEquality(t, countStates(p.Snapshot(), framebuffer.Pending), 0)
	}
}
