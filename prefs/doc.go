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

// Package prefs facilitates the storage of preference values on disk. Values
// are registered with a Disk instance by key and are saved to and loaded from
// a simple text file:
//
//	*** do not edit this file by hand ***
//	display.mode :: async
//	input.cadence :: 10ms
//
// The Bool, Int, Float, String and Duration types are safe to read from any
// goroutine. Hooks can be attached to each value to veto or react to a change.
//
// The command line stack allows preference values to be overridden without
// changing the values stored on disk.
package prefs
