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

package main

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/panelpipe/panelpipe/display"
	"github.com/panelpipe/panelpipe/display/specification"
	"github.com/panelpipe/panelpipe/input"
	"github.com/panelpipe/panelpipe/modalflag"
	"github.com/panelpipe/panelpipe/preferences"
	"github.com/panelpipe/panelpipe/sinks/headless"
	"github.com/panelpipe/panelpipe/test"
	"github.com/panelpipe/panelpipe/version"
)

func TestCommandLinePrefs(t *testing.T) {
	s := commandLinePrefs("", map[string]string{"panel.id": "", "input.source": "gpio"})
	test.ExpectEquality(t, s, "input.source::gpio")

	s = commandLinePrefs("engine.fps::30", map[string]string{"pipeline.mode": "direct"})
	test.ExpectEquality(t, s, "engine.fps::30; pipeline.mode::direct")

	s = commandLinePrefs("", nil)
	test.ExpectEquality(t, s, "")
}

func TestPrintVersion(t *testing.T) {
	w, err := test.NewRingWriter(256)
	test.DemandSuccess(t, err)

	printVersion(w, false)
	test.ExpectSuccess(t, strings.HasPrefix(w.String(), version.ApplicationName))
	test.ExpectEquality(t, strings.Count(w.String(), "\n"), 1)

	w.Reset()
	printVersion(w, true)
	test.ExpectEquality(t, strings.Count(w.String(), "\n"), 2)
}

func TestOpenInput(t *testing.T) {
	prf, err := preferences.NewPreferences(t.TempDir() + "/prefs")
	test.DemandSuccess(t, err)

	sink := headless.NewSink(480, 320, false)

	src, err := openInput("none", "", prf, sink, nil)
	test.ExpectSuccess(t, err)
	test.ExpectImplements[input.Source](t, src)

	// host sources require a window
	for _, name := range []string{"keyboard", "gamepad", "pad", "stick"} {
		_, err = openInput(name, "", prf, sink, nil)
		test.ExpectSuccess(t, errors.Is(err, display.ErrConfiguration), name)
	}

	_, err = openInput("bbq10", ttyStdin, prf, sink, nil)
	test.ExpectSuccess(t, errors.Is(err, display.ErrConfiguration))

	_, err = openInput("mouse", "", prf, sink, nil)
	test.ExpectSuccess(t, errors.Is(err, display.ErrConfiguration))
}

func TestCreateSink(t *testing.T) {
	panel := specification.PanelILI9488

	sink, err := createSink(nil, "headless", panel, 1)
	test.DemandSuccess(t, err)
	w, h := sink.Size()
	test.ExpectEquality(t, w, panel.Width)
	test.ExpectEquality(t, h, panel.Height)

	_, err = createSink(nil, "vga", panel, 1)
	test.ExpectSuccess(t, errors.Is(err, display.ErrConfiguration))
}

func TestRegressMode(t *testing.T) {
	db := filepath.Join(t.TempDir(), "regress", "db")

	modes := func(args ...string) (*modalflag.Modes, *strings.Builder) {
		out := &strings.Builder{}
		md := &modalflag.Modes{Output: out}
		md.NewArgs(args)
		return md, out
	}

	md, _ := modes("-db", db, "ADD", "-panel", "ili9341", "-mode", "direct", "-frames", "3", "-pattern", "gradient")
	test.DemandSuccess(t, regress(md))

	md, out := modes("-db", db, "LIST")
	test.DemandSuccess(t, regress(md))
	test.ExpectSuccess(t, strings.Contains(out.String(), "ILI9341 direct aspect gradient frames=3"))

	md, out = modes("-db", db, "RUN", "-v")
	test.DemandSuccess(t, regress(md))
	test.ExpectSuccess(t, strings.Contains(out.String(), "1 succeed, 0 fail"))

	md, _ = modes("-db", db, "ADD", "-mode", "sometimes")
	test.ExpectFailure(t, regress(md))

	md, _ = modes("-db", db, "DELETE")
	test.ExpectFailure(t, regress(md))
}
