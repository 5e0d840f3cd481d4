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

package sdlsink

import (
	"encoding/binary"
	"testing"

	"github.com/panelpipe/panelpipe/test"
)

func TestPack(t *testing.T) {
	pix := []uint16{0x1234, 0x5678, 0x9abc, 0xdef0}

	// pitch is wider than the row
	dst := make([]byte, 12)
	pack(dst, 6, pix, 2, 2)

	test.ExpectEquality(t, binary.NativeEndian.Uint16(dst[0:]), 0x1234)
	test.ExpectEquality(t, binary.NativeEndian.Uint16(dst[2:]), 0x5678)
	test.ExpectEquality(t, binary.NativeEndian.Uint16(dst[4:]), 0)
	test.ExpectEquality(t, binary.NativeEndian.Uint16(dst[6:]), 0x9abc)
	test.ExpectEquality(t, binary.NativeEndian.Uint16(dst[8:]), 0xdef0)
}
