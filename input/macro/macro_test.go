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

package macro_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/panelpipe/panelpipe/emulation"
	"github.com/panelpipe/panelpipe/input"
	"github.com/panelpipe/panelpipe/input/macro"
	"github.com/panelpipe/panelpipe/test"
)

func newMacro(t *testing.T, script string, features macro.Features, quit func()) *macro.Macro {
	t.Helper()
	mcr, err := macro.NewMacroFromReader("test", strings.NewReader("panelpipemacro\nv1\n"+script), features, quit)
	test.DemandSuccess(t, err)
	test.ExpectImplements[input.Source](t, mcr)
	return mcr
}

// poll the macro and return the pressed buttons, with a set bit meaning
// pressed
func pressed(t *testing.T, mcr *macro.Macro) uint32 {
	t.Helper()
	v, err := mcr.Poll()
	test.ExpectSuccess(t, err)
	return input.FromPressed(v)
}

func TestHeader(t *testing.T) {
	_, err := macro.NewMacroFromReader("test", strings.NewReader("PRESS up\n"), nil, nil)
	test.ExpectFailure(t, err)

	_, err = macro.NewMacroFromReader("test", strings.NewReader("notamacro\nv1\nPRESS up\n"), nil, nil)
	test.ExpectFailure(t, err)

	_, err = macro.NewMacro(filepath.Join(t.TempDir(), "missing"), nil, nil)
	test.ExpectFailure(t, err)
}

func TestPressRelease(t *testing.T) {
	mcr := newMacro(t, "PRESS up a\nWAIT 3\nRELEASE up\nRELEASE\n", nil, nil)

	for range 5 {
		test.ExpectEquality(t, pressed(t, mcr), input.Up|input.A)
	}
	test.ExpectEquality(t, pressed(t, mcr), input.A)
	test.ExpectEquality(t, pressed(t, mcr), input.A)
	test.ExpectEquality(t, pressed(t, mcr), 0)
	test.ExpectEquality(t, pressed(t, mcr), 0)
	test.ExpectFailure(t, mcr.Done())
	test.ExpectEquality(t, pressed(t, mcr), 0)
	test.ExpectSuccess(t, mcr.Done())
}

func TestTapLoop(t *testing.T) {
	mcr := newMacro(t, "-- tap start three times\nDO 3\nTAP start\nLOOP\n", nil, nil)

	var taps int
	var prev uint32
	for range 20 {
		p := pressed(t, mcr)
		if p == input.Start && prev == 0 {
			taps++
		}
		prev = p
	}
	test.ExpectEquality(t, taps, 3)
	test.ExpectSuccess(t, mcr.Done())
}

func TestWaitDuration(t *testing.T) {
	mcr := newMacro(t, "PRESS b\nWAIT 50ms\nRELEASE\n", nil, nil)

	test.ExpectEquality(t, pressed(t, mcr), input.B)
	test.ExpectEquality(t, pressed(t, mcr), input.B)
	test.ExpectEquality(t, pressed(t, mcr), input.B)
	test.ExpectEquality(t, pressed(t, mcr), input.B)

	time.Sleep(60 * time.Millisecond)
	test.ExpectEquality(t, pressed(t, mcr), 0)
}

type features struct {
	pattern string
	fps     float32
	pause   bool
}

func (f *features) SetFeature(request emulation.FeatureReq, args ...emulation.FeatureReqData) error {
	switch request {
	case emulation.ReqSetPattern:
		f.pattern = args[0].(string)
	case emulation.ReqSetFPS:
		f.fps = args[0].(float32)
	case emulation.ReqSetPause:
		f.pause = args[0].(bool)
	}
	return nil
}

func TestFeaturesAndQuit(t *testing.T) {
	var f features
	var quit bool

	mcr := newMacro(t, "PATTERN grid\nFPS 30\nPAUSE on\nPRESS x\nQUIT\nPRESS y\n", &f, func() { quit = true })

	test.ExpectEquality(t, pressed(t, mcr), input.X)
	test.ExpectEquality(t, f.pattern, "grid")
	test.ExpectEquality(t, f.fps, float32(30))
	test.ExpectSuccess(t, f.pause)
	test.ExpectFailure(t, quit)

	test.ExpectEquality(t, pressed(t, mcr), input.X)
	test.ExpectEquality(t, pressed(t, mcr), 0)
	test.ExpectSuccess(t, quit)
	test.ExpectSuccess(t, mcr.Done())
}

func TestScriptError(t *testing.T) {
	mcr := newMacro(t, "PRESS up\nJUMP\nPRESS down\n", nil, nil)
	test.ExpectEquality(t, pressed(t, mcr), input.Up)
	test.ExpectEquality(t, pressed(t, mcr), input.Up)

	// the error ends the macro and releases the buttons
	test.ExpectEquality(t, pressed(t, mcr), 0)
	test.ExpectSuccess(t, mcr.Done())

	mcr = newMacro(t, "PRESS fire\n", nil, nil)
	test.ExpectEquality(t, pressed(t, mcr), 0)
	test.ExpectSuccess(t, mcr.Done())

	mcr = newMacro(t, "LOOP\n", nil, nil)
	test.ExpectEquality(t, pressed(t, mcr), 0)
	test.ExpectSuccess(t, mcr.Done())
}

func TestMacroFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "macro")
	test.DemandSuccess(t, os.WriteFile(filename, []byte("panelpipemacro\nv1\nPRESS select\n"), 0o644))

	mcr, err := macro.NewMacro(filename, nil, nil)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, pressed(t, mcr), input.Select)
}
