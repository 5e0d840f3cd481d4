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

// Package keyboard reads the small I2C keyboards that are popular with
// handheld builds.
//
// The CardKB reports the key that is currently pressed, one byte at a time.
// Every poll starts from "nothing pressed" and clears the bit for every byte
// read from the bus. The CardKB can not report held keys so each key press
// is seen for one poll only.
//
// The BBQ10 reports a queue of press and release events. The state persists
// between polls and is changed by each event in turn.
//
// The protocols read from a Bus. The Bus can be the I2C device itself on
// Linux, a serial port bridged to the keyboard, or the terminal that the
// program is running in. The terminal bus translates the ANSI escape sequences
// for the arrow keys into CardKB key codes.
package keyboard
