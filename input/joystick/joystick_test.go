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

package joystick_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/panelpipe/panelpipe/display"
	"github.com/panelpipe/panelpipe/input"
	"github.com/panelpipe/panelpipe/input/gpio"
	"github.com/panelpipe/panelpipe/input/joystick"
	"github.com/panelpipe/panelpipe/test"
)

func poll(t *testing.T, j *joystick.Joystick) uint32 {
	t.Helper()
	v, err := j.Poll()
	test.DemandSuccess(t, err)
	return v
}

func TestConfiguration(t *testing.T) {
	adc := joystick.NewFixed(2048)

	_, err := joystick.NewJoystick(nil, nil, joystick.DefaultConfig())
	test.ExpectSuccess(t, errors.Is(err, display.ErrConfiguration))

	cfg := joystick.DefaultConfig()
	cfg.Center = 5000
	_, err = joystick.NewJoystick(adc, nil, cfg)
	test.ExpectSuccess(t, errors.Is(err, display.ErrConfiguration))

	cfg = joystick.DefaultConfig()
	cfg.Deadzone = 3000
	_, err = joystick.NewJoystick(adc, nil, cfg)
	test.ExpectSuccess(t, errors.Is(err, display.ErrConfiguration))

	j, err := joystick.NewJoystick(adc, nil, joystick.DefaultConfig())
	test.DemandSuccess(t, err)
	test.ExpectImplements[input.Source](t, j)
}

func TestDeadzone(t *testing.T) {
	adc := joystick.NewFixed(2048)
	j, err := joystick.NewJoystick(adc, nil, joystick.DefaultConfig())
	test.DemandSuccess(t, err)

	// centred
	test.ExpectEquality(t, poll(t, j), input.AllReleased)

	// inside the deadzone
	adc.Set(2048+300, 2048-300)
	test.ExpectEquality(t, poll(t, j), input.AllReleased)

	// outside the deadzone
	adc.Set(2048+301, 2048)
	test.ExpectEquality(t, poll(t, j), input.FromPressed(input.Right))
	adc.Set(2048-301, 2048)
	test.ExpectEquality(t, poll(t, j), input.FromPressed(input.Left))
	adc.Set(2048, 2048+301)
	test.ExpectEquality(t, poll(t, j), input.FromPressed(input.Down))
	adc.Set(2048, 0)
	test.ExpectEquality(t, poll(t, j), input.FromPressed(input.Up))

	// diagonal
	adc.Set(4095, 0)
	test.ExpectEquality(t, poll(t, j), input.FromPressed(input.Up|input.Right))

	// out of range values are clamped
	adc.Set(9999, -50)
	test.ExpectEquality(t, poll(t, j), input.FromPressed(input.Up|input.Right))
}

func TestReverse(t *testing.T) {
	adc := joystick.NewFixed(2048)
	cfg := joystick.DefaultConfig()
	cfg.ReverseX = true
	cfg.ReverseY = true
	j, err := joystick.NewJoystick(adc, nil, cfg)
	test.DemandSuccess(t, err)

	adc.Set(4095, 0)
	test.ExpectEquality(t, poll(t, j), input.FromPressed(input.Down|input.Left))
}

func TestOdroid(t *testing.T) {
	adc := joystick.NewFixed(2048)
	cfg := joystick.DefaultConfig()
	cfg.Mapping = joystick.Odroid
	j, err := joystick.NewJoystick(adc, nil, cfg)
	test.DemandSuccess(t, err)

	adc.Set(800, 800)
	test.ExpectEquality(t, poll(t, j), input.AllReleased)

	adc.Set(800, 3500)
	test.ExpectEquality(t, poll(t, j), input.FromPressed(input.Up))

	adc.Set(800, 2000)
	test.ExpectEquality(t, poll(t, j), input.FromPressed(input.Down))

	adc.Set(3500, 800)
	test.ExpectEquality(t, poll(t, j), input.FromPressed(input.Left))

	adc.Set(2000, 800)
	test.ExpectEquality(t, poll(t, j), input.FromPressed(input.Right))

	// both opposing directions at once
	adc.Set(100, 100)
	test.ExpectEquality(t, poll(t, j), input.FromPressed(input.DPad))
}

func TestButtons(t *testing.T) {
	adc := joystick.NewFixed(2048)
	a := gpio.NewLevel()
	up := gpio.NewLevel()
	buttons := gpio.NewGPIO(gpio.Pins{A: a, Up: up})

	j, err := joystick.NewJoystick(adc, buttons, joystick.DefaultConfig())
	test.DemandSuccess(t, err)

	a.Press()
	up.Press()

	// the d-pad pins are ignored by default
	test.ExpectEquality(t, poll(t, j), input.FromPressed(input.A))

	cfg := joystick.DefaultConfig()
	cfg.UseDPad = true
	j, err = joystick.NewJoystick(adc, buttons, cfg)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, poll(t, j), input.FromPressed(input.A|input.Up))

	// stick and d-pad combined
	adc.Set(4095, 2048)
	test.ExpectEquality(t, poll(t, j), input.FromPressed(input.A|input.Up|input.Right))
}

func TestParseMapping(t *testing.T) {
	for _, n := range joystick.MappingList {
		m, err := joystick.ParseMapping(n)
		test.ExpectSuccess(t, err)
		test.ExpectEquality(t, m.String(), n)
	}
	_, err := joystick.ParseMapping("spring")
	test.ExpectSuccess(t, errors.Is(err, display.ErrConfiguration))
}

func TestSetAxis(t *testing.T) {
	adc := joystick.NewFixed(2048)
	adc.SetAxis(joystick.AxisY, 0)
	x, err := adc.Read(joystick.AxisX)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, x, 2048)
	y, err := adc.Read(joystick.AxisY)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, y, 0)
}

type failing struct{}

func (failing) Read(joystick.Axis) (int, error) {
	return 0, errors.New("adc failure")
}

func TestADCError(t *testing.T) {
	j, err := joystick.NewJoystick(failing{}, nil, joystick.DefaultConfig())
	test.DemandSuccess(t, err)
	v, err := j.Poll()
	test.ExpectFailure(t, err)
	test.ExpectEquality(t, v, input.AllReleased)
}

func TestIIO(t *testing.T) {
	dir := t.TempDir()
	test.DemandSuccess(t, os.WriteFile(filepath.Join(dir, "in_voltage0_raw"), []byte("4000\n"), 0o644))
	test.DemandSuccess(t, os.WriteFile(filepath.Join(dir, "in_voltage1_raw"), []byte("2048\n"), 0o644))

	adc, err := joystick.OpenIIO(dir, 0, 1)
	test.DemandSuccess(t, err)
	defer adc.Close()

	v, err := adc.Read(joystick.AxisX)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, 4000)

	j, err := joystick.NewJoystick(adc, nil, joystick.DefaultConfig())
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, poll(t, j), input.FromPressed(input.Right))

	_, err = joystick.OpenIIO(dir, 0, 2)
	test.ExpectFailure(t, err)
}
