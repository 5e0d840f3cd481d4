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

//go:build assertions

package assert

import (
	"fmt"
	"sync/atomic"
)

// Owner records the goroutine that first called Claim().
type Owner struct {
	Role string
	id   atomic.Uint64
}

// Claim panics if called from a goroutine other than the one that first
// called Claim().
func (o *Owner) Claim() {
	id := GetGoRoutineID()
	if o.id.CompareAndSwap(0, id) {
		return
	}
	if o.id.Load() != id {
		panic(fmt.Sprintf("assert: %s claimed by goroutine %d and then by goroutine %d", o.Role, o.id.Load(), id))
	}
}

// Reset forgets the owning goroutine.
func (o *Owner) Reset() {
	o.id.Store(0)
}

// Enabled returns true if assertions have been compiled into the program.
const Enabled = true
