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

package ebitensink_test

import (
	"errors"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/panelpipe/panelpipe/display"
	"github.com/panelpipe/panelpipe/sinks/ebitensink"
	"github.com/panelpipe/panelpipe/test"
)

func TestImplements(t *testing.T) {
	s, err := ebitensink.NewSink("test", 4, 4, 1, false)
	test.DemandSuccess(t, err)
	test.ExpectImplements[display.Sink](t, s)
	test.ExpectImplements[ebiten.Game](t, s)
}

func TestTransfer(t *testing.T) {
	s, err := ebitensink.NewSink("test", 4, 2, 1, false)
	test.DemandSuccess(t, err)

	pix := []uint16{1, 2, 3, 4}
	test.ExpectSuccess(t, errors.Is(s.Transfer(pix, 2, 2, 0, 0), ebitensink.ErrNotInitialised))
	test.ExpectSuccess(t, errors.Is(s.SetBacklight(10), ebitensink.ErrNotInitialised))

	test.DemandSuccess(t, s.Init())
	test.ExpectSuccess(t, s.Transfer(pix, 2, 2, 2, 0))
	test.ExpectFailure(t, s.Transfer(pix, 2, 2, 3, 0))
	test.ExpectSuccess(t, s.SetBacklight(10))

	w, h := s.Size()
	test.ExpectEquality(t, w, 4)
	test.ExpectEquality(t, h, 2)
	w, h = s.Layout(100, 100)
	test.ExpectEquality(t, w, 4)
	test.ExpectEquality(t, h, 2)

	_, err = ebitensink.NewSink("test", 0, 2, 1, false)
	test.ExpectFailure(t, err)
}
