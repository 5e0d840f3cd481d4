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

// Package modalflag is a wrapper for the flag package in the Go standard
// library. It provides a convenient method of handling program modes and
// allows different flags for each mode.
//
// Whereas with flag.FlagSet you call Parse() with the array of strings as the
// only argument, with modalflag you first call NewArgs() with the array of
// arguments and then Parse() with no arguments:
//
//	md := modalflag.Modes{Output: os.Stdout}
//	md.NewArgs(os.Args[1:])
//	md.AddSubModes("RUN", "PERFORMANCE", "VERSION")
//	p, err := md.Parse()
//
// The first sub-mode is the default. If the first non-flag argument matches a
// sub-mode (case insensitive) then that mode is selected and the argument is
// consumed. The selected mode is returned by Mode().
//
// Flags for the selected mode are added after calling NewMode(), followed by
// another call to Parse():
//
//	md.NewMode()
//	sink := md.AddString("sink", "sdl", "display sink")
//	p, err = md.Parse()
//
// Help messages are printed to the Output writer automatically when the -help
// flag is seen, in which case Parse() returns ParseHelp.
package modalflag
