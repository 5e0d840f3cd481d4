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

package sdlinput

import (
	"testing"

	"github.com/panelpipe/panelpipe/input"
	"github.com/panelpipe/panelpipe/input/gamepad"
	"github.com/panelpipe/panelpipe/input/gpio"
	"github.com/panelpipe/panelpipe/input/joystick"
	"github.com/panelpipe/panelpipe/test"
	"github.com/veandco/go-sdl2/sdl"
)

func key(typ uint32, code sdl.Scancode) *sdl.KeyboardEvent {
	return &sdl.KeyboardEvent{Type: typ, Keysym: sdl.Keysym{Scancode: code}}
}

func TestKeyboard(t *testing.T) {
	k := NewKeyboard()
	g := gpio.NewGPIO(k.Pins())

	v, err := g.Poll()
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, input.AllReleased)

	test.ExpectSuccess(t, k.HandleEvent(key(sdl.KEYDOWN, sdl.SCANCODE_UP)))
	test.ExpectSuccess(t, k.HandleEvent(key(sdl.KEYDOWN, sdl.SCANCODE_X)))
	v, _ = g.Poll()
	test.ExpectEquality(t, v, input.FromPressed(input.Up|input.A))

	// repeats and unmapped keys are not consumed
	rep := key(sdl.KEYDOWN, sdl.SCANCODE_DOWN)
	rep.Repeat = 1
	test.ExpectFailure(t, k.HandleEvent(rep))
	test.ExpectFailure(t, k.HandleEvent(key(sdl.KEYDOWN, sdl.SCANCODE_F1)))
	test.ExpectFailure(t, k.HandleEvent(&sdl.QuitEvent{}))

	test.ExpectSuccess(t, k.HandleEvent(key(sdl.KEYUP, sdl.SCANCODE_UP)))
	v, _ = g.Poll()
	test.ExpectEquality(t, v, input.FromPressed(input.A))
}

func TestStick(t *testing.T) {
	test.ExpectEquality(t, twelveBit(-32768), 0)
	test.ExpectEquality(t, twelveBit(0), 2048)
	test.ExpectEquality(t, twelveBit(32767), 4095)

	s := NewStick()
	j, err := joystick.NewJoystick(s.ADC(), nil, joystick.DefaultConfig())
	test.DemandSuccess(t, err)

	axis := func(a sdl.GameControllerAxis, v int16) *sdl.ControllerAxisEvent {
		return &sdl.ControllerAxisEvent{Axis: uint8(a), Value: v}
	}

	test.ExpectFailure(t, s.HandleEvent(axis(sdl.CONTROLLER_AXIS_LEFTX, 32767)))
	v, err := j.Poll()
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, input.FromPressed(input.Right))

	s.HandleEvent(axis(sdl.CONTROLLER_AXIS_LEFTY, -32768))
	v, _ = j.Poll()
	test.ExpectEquality(t, v, input.FromPressed(input.Right|input.Up))

	s.HandleEvent(&sdl.ControllerDeviceEvent{Type: sdl.CONTROLLERDEVICEREMOVED})
	v, _ = j.Poll()
	test.ExpectEquality(t, v, input.AllReleased)
}

func TestReport(t *testing.T) {
	var r gamepad.Report

	applyButton(&r, sdl.CONTROLLER_BUTTON_DPAD_LEFT, true)
	applyButton(&r, sdl.CONTROLLER_BUTTON_START, true)
	applyButton(&r, sdl.CONTROLLER_BUTTON_A, true)
	applyButton(&r, sdl.CONTROLLER_BUTTON_A, false)
	test.ExpectSuccess(t, r.Left)
	test.ExpectSuccess(t, r.Start)
	test.ExpectFailure(t, r.A)

	applyAxis(&r, sdl.CONTROLLER_AXIS_LEFTY, -20000)
	test.ExpectEquality(t, r.LeftY, 20000)
	applyAxis(&r, sdl.CONTROLLER_AXIS_TRIGGERRIGHT, 32767)
	test.ExpectEquality(t, r.TriggerR, 1023)

	opts := gamepad.DefaultOptions()
	opts.AnalogAsDPad = true
	opts.Triggers = true
	pad := gamepad.NewGamepad(nil, opts)
	test.ExpectEquality(t, pad.Map(r), input.Left|input.Start|input.Up|input.TriggerR)
}

func TestDisconnected(t *testing.T) {
	gc := NewGameController()
	test.ExpectFailure(t, gc.Connected())

	// events from a controller that has not been opened are ignored
	gc.HandleEvent(&sdl.ControllerButtonEvent{Button: uint8(sdl.CONTROLLER_BUTTON_A), State: sdl.PRESSED})
	test.ExpectFailure(t, gc.Report().A)
	test.ExpectEquality(t, gc.FailedConnections(), 0)

	pad := gamepad.NewGamepad(gc, gamepad.DefaultOptions())
	v, err := pad.Poll()
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, input.AllReleased)
}
