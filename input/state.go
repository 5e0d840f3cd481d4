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

package input

import (
	"fmt"
	"sync/atomic"
)

// State is the current and previous mask of a controller. It is safe for one
// goroutine to call Update() while any number of goroutines read from it.
//
// Both masks are kept in a single 64 bit word so that readers always see a
// pair that was produced by the same poll.
type State struct {
	pair atomic.Uint64
}

// NewState returns a State where the current and previous masks are both
// AllReleased.
func NewState() *State {
	s := &State{}
	s.pair.Store(pack(AllReleased, AllReleased))
	return s
}

func pack(prev, cur uint32) uint64 {
	return uint64(prev)<<32 | uint64(cur)
}

func (s *State) load() (uint32, uint32) {
	v := s.pair.Load()
	return uint32(v >> 32), uint32(v)
}

// Update the state with the mask from the most recent poll. The old current
// mask becomes the previous mask.
//
// Update must only be called from one goroutine.
func (s *State) Update(current uint32) {
	_, cur := s.load()
	s.pair.Store(pack(cur, current))
}

// Reset both masks to AllReleased.
func (s *State) Reset() {
	s.pair.Store(pack(AllReleased, AllReleased))
}

// Current returns the mask from the most recent poll.
func (s *State) Current() uint32 {
	_, cur := s.load()
	return cur
}

// Previous returns the mask from the poll before the most recent one.
func (s *State) Previous() uint32 {
	prev, _ := s.load()
	return prev
}

// Held returns the buttons that are currently pressed. Unlike the masks, a set
// bit means that the button is pressed.
func (s *State) Held() uint32 {
	_, cur := s.load()
	return ^cur
}

// Pressed returns the buttons that became pressed in the most recent poll. A
// set bit means that the button has just been pressed.
func (s *State) Pressed() uint32 {
	prev, cur := s.load()
	return ^cur & prev
}

// Released returns the buttons that became released in the most recent poll. A
// set bit means that the button has just been released.
func (s *State) Released() uint32 {
	prev, cur := s.load()
	return cur & ^prev
}

// Edges returns the pressed and released masks from the same poll.
func (s *State) Edges() (pressed uint32, released uint32) {
	prev, cur := s.load()
	return ^cur & prev, cur & ^prev
}

// ButtonPressed returns true if any button in the mask has just been pressed.
func (s *State) ButtonPressed(mask uint32) bool {
	return s.Pressed()&mask != 0
}

// ButtonReleased returns true if any button in the mask has just been released.
func (s *State) ButtonReleased(mask uint32) bool {
	return s.Released()&mask != 0
}

// ButtonDown returns true if every button in the mask is currently pressed.
func (s *State) ButtonDown(mask uint32) bool {
	return s.Current()&mask == 0
}

func (s *State) String() string {
	return fmt.Sprintf("held: %s", Names(s.Held()&(TriggerR<<1-1)))
}
