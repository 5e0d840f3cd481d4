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

// Package gpio reads buttons that are wired directly to input pins. Each pin
// is pulled up so a high level means released and a low level means pressed.
package gpio

import (
	"github.com/panelpipe/panelpipe/input"
)

// Pin is a single digital input.
type Pin interface {
	// High returns true if the pin is at the high level.
	High() bool
}

// Pins assigns a pin to each button. A nil pin is treated as not connected
// and the button always reads as released.
type Pins struct {
	Up     Pin
	Down   Pin
	Left   Pin
	Right  Pin
	Select Pin
	Start  Pin
	A      Pin
	B      Pin
	X      Pin
	Y      Pin
}

type assignment struct {
	pin Pin
	bit uint32
}

// GPIO implements the input.Source interface for buttons on input pins.
type GPIO struct {
	pins []assignment
}

// NewGPIO is the preferred method of initialisation for the GPIO type.
func NewGPIO(pins Pins) *GPIO {
	g := &GPIO{}
	for _, a := range []assignment{
		{pins.Up, input.Up},
		{pins.Down, input.Down},
		{pins.Left, input.Left},
		{pins.Right, input.Right},
		{pins.Select, input.Select},
		{pins.Start, input.Start},
		{pins.A, input.A},
		{pins.B, input.B},
		{pins.X, input.X},
		{pins.Y, input.Y},
	} {
		if a.pin != nil {
			g.pins = append(g.pins, a)
		}
	}
	return g
}

// Pressed returns the buttons that are pressed. A set bit means pressed.
func (g *GPIO) Pressed() uint32 {
	var pressed uint32
	for _, a := range g.pins {
		if !a.pin.High() {
			pressed |= a.bit
		}
	}
	return pressed
}

// Poll implements the input.Source interface.
func (g *GPIO) Poll() (uint32, error) {
	return input.FromPressed(g.Pressed()), nil
}

// Close any pin that implements the input.Closer interface.
func (g *GPIO) Close() error {
	var err error
	for _, a := range g.pins {
		if c, ok := a.pin.(input.Closer); ok {
			if e := c.Close(); e != nil && err == nil {
				err = e
			}
		}
	}
	return err
}
