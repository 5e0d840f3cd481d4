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
	"fmt"
	"os"
	"strings"

	"github.com/panelpipe/panelpipe/display"
	"github.com/panelpipe/panelpipe/input"
	"github.com/panelpipe/panelpipe/input/ebiteninput"
	"github.com/panelpipe/panelpipe/input/gamepad"
	"github.com/panelpipe/panelpipe/input/gpio"
	"github.com/panelpipe/panelpipe/input/joystick"
	"github.com/panelpipe/panelpipe/input/keyboard"
	"github.com/panelpipe/panelpipe/input/sdlinput"
	"github.com/panelpipe/panelpipe/preferences"
	"github.com/panelpipe/panelpipe/sinks/ebitensink"
	"github.com/panelpipe/panelpipe/sinks/sdlsink"
)

// default devices for the input sources attached to the board
const (
	defaultIIODevice = "/sys/bus/iio/devices/iio:device0"
	defaultI2CDevice = "/dev/i2c-1"
)

// the value of the -tty flag that selects the terminal the program is running in
const ttyStdin = "stdin"

// sinks that pass window events to handlers. both the sdl and gl sinks
// implement this
type eventSink interface {
	AddEventHandler(h sdlsink.EventHandler)
}

// source with the resources that must be closed when the source is no longer
// required
type source struct {
	input.Source
	closers []input.Closer
}

func (s source) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// openInput creates the named input source. Sources that read the host
// keyboard or a gamepad plugged into the host need a window sink. The
// interrupt function is called if ctrl-c is read from the terminal.
func openInput(name string, tty string, prf *preferences.Preferences, sink display.Sink, interrupt func()) (input.Source, error) {
	events, sdlHost := sink.(eventSink)
	_, ebitenHost := sink.(*ebitensink.Sink)

	hostRequired := func() error {
		return fmt.Errorf("input source %q requires a window sink: %w", name, display.ErrConfiguration)
	}

	switch strings.ToLower(name) {
	case "", "none":
		return input.None{}, nil

	case "gpio":
		pins, err := gpio.OpenSysfsPins("", gpio.DefaultNumbers)
		if err != nil {
			return nil, err
		}
		return gpio.NewGPIO(pins), nil

	case "joystick":
		cfg, err := prf.JoystickConfig()
		if err != nil {
			return nil, err
		}

		numbers := gpio.DefaultNumbers
		if !cfg.UseDPad {
			numbers.Up, numbers.Down, numbers.Left, numbers.Right = -1, -1, -1, -1
		}

		adc, err := joystick.OpenIIO(defaultIIODevice, 0, 1)
		if err != nil {
			return nil, err
		}
		pins, err := gpio.OpenSysfsPins("", numbers)
		if err != nil {
			_ = adc.Close()
			return nil, err
		}
		buttons := gpio.NewGPIO(pins)

		js, err := joystick.NewJoystick(adc, buttons, cfg)
		if err != nil {
			_ = adc.Close()
			_ = buttons.Close()
			return nil, err
		}
		return source{Source: js, closers: []input.Closer{adc, buttons}}, nil

	case "cardkb":
		var bus interface {
			keyboard.Bus
			input.Closer
		}
		var err error
		switch tty {
		case "":
			bus, err = keyboard.OpenI2C(defaultI2CDevice, keyboard.CardKBAddress)
		case ttyStdin:
			bus, err = keyboard.OpenTerminal(os.Stdin, interrupt)
		default:
			bus, err = keyboard.OpenTTY(tty, keyboard.DefaultBaud)
		}
		if err != nil {
			return nil, err
		}
		return source{Source: keyboard.NewCardKB(bus), closers: []input.Closer{bus}}, nil

	case "bbq10":
		var bus interface {
			keyboard.EventBus
			input.Closer
		}
		var err error
		switch tty {
		case "":
			bus, err = keyboard.OpenI2C(defaultI2CDevice, keyboard.BBQ10Address)
		case ttyStdin:
			return nil, fmt.Errorf("the bbq10 can not be read from the terminal: %w", display.ErrConfiguration)
		default:
			bus, err = keyboard.OpenTTY(tty, keyboard.DefaultBaud)
		}
		if err != nil {
			return nil, err
		}
		return source{Source: keyboard.NewBBQ10(bus), closers: []input.Closer{bus}}, nil

	case "gamepad", "pad":
		switch {
		case sdlHost:
			ctrl := sdlinput.NewGameController()
			events.AddEventHandler(ctrl)
			return gamepad.NewGamepad(ctrl, prf.GamepadOptions()), nil
		case ebitenHost:
			return gamepad.NewGamepad(ebiteninput.NewGamepad(), prf.GamepadOptions()), nil
		}
		return nil, hostRequired()

	case "keyboard":
		switch {
		case sdlHost:
			kb := sdlinput.NewKeyboard()
			events.AddEventHandler(kb)
			return gpio.NewGPIO(kb.Pins()), nil
		case ebitenHost:
			return gpio.NewGPIO(ebiteninput.KeyPins()), nil
		}
		return nil, hostRequired()

	case "stick":
		if !sdlHost {
			return nil, hostRequired()
		}
		cfg, err := prf.JoystickConfig()
		if err != nil {
			return nil, err
		}

		// the stick handler must see controller events before the
		// controller handler
		stick := sdlinput.NewStick()
		kb := sdlinput.NewKeyboard()
		events.AddEventHandler(stick)
		events.AddEventHandler(kb)
		events.AddEventHandler(sdlinput.NewGameController())

		js, err := joystick.NewJoystick(stick.ADC(), gpio.NewGPIO(kb.Pins()), cfg)
		if err != nil {
			return nil, err
		}
		return js, nil
	}

	return nil, fmt.Errorf("unknown input source %q: %w", name, display.ErrConfiguration)
}
