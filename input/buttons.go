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
	"strings"
)

// Button bits. A zero bit in a mask means that the button is pressed.
const (
	Up uint32 = 1 << iota
	Down
	Left
	Right
	Select
	Start
	A
	B
	X
	Y
	TriggerL
	TriggerR
)

// AllReleased is the mask when no buttons are pressed.
const AllReleased uint32 = 0xffffffff

// DPad is the mask of the four directions.
const DPad = Up | Down | Left | Right

// Buttons lists every button in bit order.
var Buttons = []uint32{Up, Down, Left, Right, Select, Start, A, B, X, Y, TriggerL, TriggerR}

var buttonNames = map[uint32]string{
	Up:       "Up",
	Down:     "Down",
	Left:     "Left",
	Right:    "Right",
	Select:   "Select",
	Start:    "Start",
	A:        "A",
	B:        "B",
	X:        "X",
	Y:        "Y",
	TriggerL: "TriggerL",
	TriggerR: "TriggerR",
}

// FromPressed converts a mask where a set bit means pressed into the active low
// form used everywhere else.
func FromPressed(pressed uint32) uint32 {
	return AllReleased ^ pressed
}

// Names returns the names of the buttons set in the mask. The mask uses
// positive logic, a set bit is included in the list.
func Names(mask uint32) string {
	var s strings.Builder
	for _, b := range Buttons {
		if mask&b != 0 {
			if s.Len() > 0 {
				s.WriteString("+")
			}
			s.WriteString(buttonNames[b])
		}
	}
	if s.Len() == 0 {
		return "none"
	}
	return s.String()
}

// ParseButton returns the bit of the named button. Names are not case
// sensitive.
func ParseButton(name string) (uint32, error) {
	for _, b := range Buttons {
		if strings.EqualFold(buttonNames[b], name) {
			return b, nil
		}
	}
	return 0, fmt.Errorf("input: unknown button %q", name)
}
