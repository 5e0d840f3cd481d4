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

// Package macro implements an input source that processes instructions from
// a macro script. Macros make a run repeatable, which is useful when
// comparing digests or measuring performance with input activity.
//
// The first line of a macro file must be the header "panelpipemacro". The
// second line is a version string, which is currently ignored.
//
// The macro language is very simple and does not implement any flow control
// except basic loops.
//
//	DO loopCt
//		...
//	LOOP
//
// Loops can be nested.
//
// The WAIT instruction pauses the execution of the macro. The argument is
// either a number of polls or a duration.
//
//	WAIT 60
//	WAIT 250ms
//
// If no value is given the macro waits for 60 polls.
//
// Buttons are pressed and released with the PRESS and RELEASE instructions.
// TAP presses the buttons and releases them two polls later. Button names are
// those used by the input package.
//
//	PRESS up a
//	RELEASE up
//	TAP start
//
// RELEASE without any arguments releases every button.
//
// The engine producing the frames can be controlled with the PATTERN, FPS
// and PAUSE instructions.
//
//	PATTERN grid
//	FPS 30
//	PAUSE on
//
// The QUIT instruction ends the run.
//
// Lines beginning with -- are comments. Any errors in a macro script will
// result in a log entry and the termination of the macro. Buttons that are
// held when the macro ends are released.
package macro
