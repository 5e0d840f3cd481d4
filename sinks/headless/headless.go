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

// Package headless implements a display.Sink that keeps the panel contents in
// memory. It is used for testing and for measuring the performance of the
// pipeline without a panel.
//
// The latency of each transfer can be set to simulate a slow bus and transfer
// failures can be injected.
package headless

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panelpipe/panelpipe/display/palette"
	"github.com/panelpipe/panelpipe/sinks/gram"
)

// Sentinel errors returned by the headless Sink.
var (
	ErrNotInitialised = errors.New("headless: sink not initialised")
	ErrInjected       = errors.New("headless: injected transfer failure")
)

// Sink is an in-memory panel.
type Sink struct {
	crit sync.Mutex

	swapped bool
	mem     *gram.GRAM

	initialised bool
	backlight   uint8

	latency atomic.Int64
	fail    atomic.Int32

	transfers atomic.Uint64
	pixels    atomic.Uint64

	hook func(pix []uint16, w, h, x, y int)
}

// NewSink is the preferred method of initialisation for the Sink type. If
// swapped is true then the pixels transferred to the sink are expected to be
// byte swapped.
func NewSink(width, height int, swapped bool) *Sink {
	return &Sink{
		swapped: swapped,
		mem:     gram.NewGRAM(width, height, swapped),
	}
}

// Init implements the display.Sink interface.
func (s *Sink) Init() error {
	s.crit.Lock()
	defer s.crit.Unlock()
	s.initialised = true
	return nil
}

// Transfer implements the display.Sink interface.
func (s *Sink) Transfer(pix []uint16, w, h, x, y int) error {
	if d := time.Duration(s.latency.Load()); d > 0 {
		time.Sleep(d)
	}

	if n := s.fail.Load(); n > 0 {
		s.fail.Add(-1)
		return ErrInjected
	}

	s.crit.Lock()
	defer s.crit.Unlock()

	if !s.initialised {
		return ErrNotInitialised
	}
	if err := s.mem.Write(pix, w, h, x, y); err != nil {
		return fmt.Errorf("headless: %w", err)
	}

	if s.hook != nil {
		s.hook(pix, w, h, x, y)
	}

	s.transfers.Add(1)
	s.pixels.Add(uint64(w * h))

	return nil
}

// SetBacklight implements the display.Sink interface.
func (s *Sink) SetBacklight(level uint8) error {
	s.crit.Lock()
	defer s.crit.Unlock()
	if !s.initialised {
		return ErrNotInitialised
	}
	s.backlight = level
	return nil
}

// Size implements the display.Sink interface.
func (s *Sink) Size() (int, int) {
	return s.mem.Size()
}

// SetLatency sets the time taken by every future transfer.
func (s *Sink) SetLatency(d time.Duration) {
	s.latency.Store(int64(d))
}

// FailNext causes the next n transfers to fail.
func (s *Sink) FailNext(n int) {
	s.fail.Store(int32(n))
}

// SetTransferHook sets a function that is called at the end of every
// successful transfer. The hook is called from the transferring goroutine and
// must not retain the pixel slice.
func (s *Sink) SetTransferHook(f func(pix []uint16, w, h, x, y int)) {
	s.crit.Lock()
	defer s.crit.Unlock()
	s.hook = f
}

// Transfers returns the number of successful transfers.
func (s *Sink) Transfers() uint64 {
	return s.transfers.Load()
}

// Pixels returns the number of pixels written by successful transfers.
func (s *Sink) Pixels() uint64 {
	return s.pixels.Load()
}

// Backlight returns the most recent brightness level.
func (s *Sink) Backlight() uint8 {
	s.crit.Lock()
	defer s.crit.Unlock()
	return s.backlight
}

// Pixel returns the colour value of the panel at x,y in the order it was
// transferred.
func (s *Sink) Pixel(x, y int) uint16 {
	v := s.mem.Pixel(x, y)
	if s.swapped {
		return palette.Swap16(v)
	}
	return v
}

// Image returns a copy of the panel contents as an RGBA image.
func (s *Sink) Image() *image.RGBA {
	return s.mem.Image()
}
