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

//go:build !assertions

package assert

// Owner records the goroutine that first called Claim(). Without the
// "assertions" build tag nothing is recorded.
type Owner struct {
	Role string
}

// Claim does nothing without the "assertions" build tag.
func (o *Owner) Claim() {}

// Reset does nothing without the "assertions" build tag.
func (o *Owner) Reset() {}

// Enabled returns true if assertions have been compiled into the program.
const Enabled = false
