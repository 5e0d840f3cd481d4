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

// Package sdlinput adapts events received by an SDL window to the input
// sources of the input package. It allows the pipeline to be driven from the
// host keyboard or from a gamepad plugged into the host.
//
// The types in this package implement the sdlsink.EventHandler interface and
// should be added to the sink with AddEventHandler(). Events arrive on the
// main thread and the state they produce is read by the Poller on another
// goroutine.
package sdlinput

import (
	"github.com/panelpipe/panelpipe/input/gpio"
	"github.com/panelpipe/panelpipe/input/joystick"
	"github.com/veandco/go-sdl2/sdl"
)

// Keyboard presents keys on the host keyboard as input pins.
type Keyboard struct {
	keys map[sdl.Scancode]*gpio.Level
	pins gpio.Pins
}

// NewKeyboard is the preferred method of initialisation for the Keyboard
// type. The cursor keys are the d-pad. Return and right-shift are start and
// select. The X Z S and A keys are the A B X and Y buttons.
func NewKeyboard() *Keyboard {
	k := &Keyboard{
		keys: make(map[sdl.Scancode]*gpio.Level),
	}

	assign := func(code sdl.Scancode) *gpio.Level {
		l := gpio.NewLevel()
		k.keys[code] = l
		return l
	}

	k.pins = gpio.Pins{
		Up:     assign(sdl.SCANCODE_UP),
		Down:   assign(sdl.SCANCODE_DOWN),
		Left:   assign(sdl.SCANCODE_LEFT),
		Right:  assign(sdl.SCANCODE_RIGHT),
		Start:  assign(sdl.SCANCODE_RETURN),
		Select: assign(sdl.SCANCODE_RSHIFT),
		A:      assign(sdl.SCANCODE_X),
		B:      assign(sdl.SCANCODE_Z),
		X:      assign(sdl.SCANCODE_S),
		Y:      assign(sdl.SCANCODE_A),
	}

	return k
}

// Pins returns the key assignments for use with gpio.NewGPIO().
func (k *Keyboard) Pins() gpio.Pins {
	return k.pins
}

// HandleEvent implements the sdlsink.EventHandler interface.
func (k *Keyboard) HandleEvent(ev sdl.Event) bool {
	kev, ok := ev.(*sdl.KeyboardEvent)
	if !ok || kev.Repeat != 0 {
		return false
	}

	l, ok := k.keys[kev.Keysym.Scancode]
	if !ok {
		return false
	}

	switch kev.Type {
	case sdl.KEYDOWN:
		l.Press()
	case sdl.KEYUP:
		l.Release()
	}

	return true
}

// Stick presents the left stick of any gamepad as a 12 bit analogue joystick.
// It never consumes events so it can be used alongside a GameController.
type Stick struct {
	adc *joystick.Fixed
}

// NewStick is the preferred method of initialisation for the Stick type.
func NewStick() *Stick {
	return &Stick{
		adc: joystick.NewFixed(stickCenter),
	}
}

const stickCenter = 2048

// ADC returns the joystick.ADC for use with joystick.NewJoystick().
func (s *Stick) ADC() joystick.ADC {
	return s.adc
}

// HandleEvent implements the sdlsink.EventHandler interface.
func (s *Stick) HandleEvent(ev sdl.Event) bool {
	switch ev := ev.(type) {
	case *sdl.ControllerAxisEvent:
		switch sdl.GameControllerAxis(ev.Axis) {
		case sdl.CONTROLLER_AXIS_LEFTX:
			s.adc.SetAxis(joystick.AxisX, twelveBit(ev.Value))
		case sdl.CONTROLLER_AXIS_LEFTY:
			s.adc.SetAxis(joystick.AxisY, twelveBit(ev.Value))
		}
	case *sdl.ControllerDeviceEvent:
		if ev.Type == sdl.CONTROLLERDEVICEREMOVED {
			s.adc.Set(stickCenter, stickCenter)
		}
	}
	return false
}

// twelveBit converts a signed 16 bit axis value to the range of a 12 bit ADC.
func twelveBit(v int16) int {
	return (int(v) + 32768) >> 4
}
