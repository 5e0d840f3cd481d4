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

package keyboard

import (
	"fmt"

	"github.com/panelpipe/panelpipe/input"
)

// KeyState is the kind of event reported by the BBQ10.
type KeyState uint8

// List of valid KeyState values. The values are those used by the keyboard
// firmware.
const (
	StateIdle KeyState = iota
	StatePress
	StateLongPress
	StateRelease
)

func (s KeyState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePress:
		return "pressed"
	case StateLongPress:
		return "held down"
	case StateRelease:
		return "released"
	}
	return "unknown key state"
}

// KeyEvent is a single entry from the BBQ10 event queue.
type KeyEvent struct {
	Key   byte
	State KeyState
}

func (ev KeyEvent) String() string {
	return fmt.Sprintf("key %q (%d) %s", ev.Key, ev.Key, ev.State)
}

// EventBus is the connection to a keyboard that reports events.
type EventBus interface {
	// ReadEvents fills the slice with events from the queue and returns the
	// number of events. It must not block.
	ReadEvents(events []KeyEvent) (int, error)
}

// BBQ10Address is the I2C address of the BBQ10 keyboard.
const BBQ10Address = 0x1f

var bbq10Keys = map[byte]uint32{
	'w': input.Up,
	'z': input.Down,
	's': input.Down,
	'a': input.Left,
	'd': input.Right,
	' ': input.Select,
	10:  input.Start,
	'k': input.A,
	'l': input.B,
	'o': input.X,
	'p': input.Y,
}

// BBQ10 implements the input.Source interface for the BBQ10 keyboard.
type BBQ10 struct {
	bus    EventBus
	events [32]KeyEvent
	value  uint32
}

// NewBBQ10 is the preferred method of initialisation for the BBQ10 type.
func NewBBQ10(bus EventBus) *BBQ10 {
	return &BBQ10{bus: bus, value: input.AllReleased}
}

// Poll implements the input.Source interface.
func (kb *BBQ10) Poll() (uint32, error) {
	for {
		n, err := kb.bus.ReadEvents(kb.events[:])
		for _, ev := range kb.events[:n] {
			bit := bbq10Keys[ev.Key]
			switch ev.State {
			case StatePress:
				kb.value &^= bit
			case StateRelease:
				kb.value |= bit
			}
		}
		if err != nil {
			return kb.value, fmt.Errorf("bbq10: %w", err)
		}
		if n < len(kb.events) {
			return kb.value, nil
		}
	}
}

// Close the bus if it implements the input.Closer interface.
func (kb *BBQ10) Close() error {
	if c, ok := kb.bus.(input.Closer); ok {
		return c.Close()
	}
	return nil
}
