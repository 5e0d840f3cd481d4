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

package display_test

import (
	"errors"
	"testing"

	"github.com/panelpipe/panelpipe/display"
	"github.com/panelpipe/panelpipe/test"
)

func TestSourceFrame(t *testing.T) {
	f := display.NewSourceFrame(display.SourceWidth, display.SourceHeight)
	test.ExpectEquality(t, f.Width(), 256)
	test.ExpectEquality(t, f.Height(), 240)

	f.Fill(7)
	test.ExpectEquality(t, f[0][0], 7)
	test.ExpectEquality(t, f[239][255], 7)

	// rows do not overlap
	f[0] = append(f[0], 1)
	test.ExpectEquality(t, f[1][0], 7)

	var empty display.SourceFrame
	test.ExpectEquality(t, empty.Width(), 0)
	test.ExpectEquality(t, empty.Height(), 0)
}

func TestPresentMode(t *testing.T) {
	m, err := display.ParsePresentMode("ASYNC")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, m, display.DoubleBufferedAsync)

	m, err = display.ParsePresentMode(" direct ")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, m, display.DirectBlocking)

	_, err = display.ParsePresentMode("triple")
	test.ExpectSuccess(t, errors.Is(err, display.ErrConfiguration))

	for _, s := range display.PresentModeList {
		m, err := display.ParsePresentMode(s)
		test.ExpectSuccess(t, err)
		test.ExpectEquality(t, m.String(), s)
	}
}

func TestTransferError(t *testing.T) {
	bus := errors.New("bus timeout")
	err := error(display.TransferError{Frame: 12, Err: bus})
	test.ExpectEquality(t, err.Error(), "transfer of frame 12: bus timeout")
	test.ExpectSuccess(t, errors.Is(err, bus))

	var te display.TransferError
	test.ExpectSuccess(t, errors.As(err, &te))
	test.ExpectEquality(t, te.Frame, 12)
}
