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

// Package assert contains functions that help confirm the goroutine
// discipline of the display pipeline. There is exactly one producer of frames
// and exactly one consumer and neither role may migrate between goroutines
// while the pipeline is running.
//
// The Owner type records the goroutine that first claims a role. When compiled
// with the "assertions" build tag, a claim from any other goroutine will
// panic. Without the build tag the Claim() function does nothing and costs
// nothing on the hot path.
package assert
