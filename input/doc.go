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

// Package input maintains the state of the player's controller. Every input
// backend, whatever the hardware, reduces to a 32 bit mask where a zero bit
// means that the corresponding button is pressed. The mask for "nothing
// pressed" is therefore AllReleased.
//
// The Poller reads a Source at a fixed cadence and feeds the State. The State
// keeps the current and the previous mask. Edges are derived from the pair
// when they are asked for, they are never stored:
//
//	pressed  = ^current & previous
//	released = current & ^previous
//
// An edge is therefore visible for exactly one poll period.
//
// Backends are in sub-packages: gpio for buttons wired directly to input
// pins, joystick for an analog stick read through an ADC, keyboard for the
// CardKB and BBQ10 I2C keyboards and gamepad for wireless controllers.
package input
