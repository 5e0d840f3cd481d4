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

// Package joystick maps an analog stick, read through an ADC, to the four
// direction buttons. The remaining buttons are read from input pins with the
// gpio package.
package joystick

import (
	"fmt"
	"strings"

	"github.com/panelpipe/panelpipe/display"
	"github.com/panelpipe/panelpipe/input"
	"github.com/panelpipe/panelpipe/input/gpio"
)

// Axis of the stick.
type Axis int

// List of valid Axis values.
const (
	AxisX Axis = iota
	AxisY
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	}
	return "unknown axis"
}

// ADC reads the position of an axis.
type ADC interface {
	Read(axis Axis) (int, error)
}

// Mapping decides how an axis value becomes direction buttons.
type Mapping int

// List of valid Mapping values.
const (
	// a direction is pressed when the axis is further than the deadzone from
	// the centre
	Deadzone Mapping = iota

	// the fixed thresholds of the ODROID-GO. the low end of each axis reports
	// both directions at once
	Odroid
)

func (m Mapping) String() string {
	switch m {
	case Deadzone:
		return "deadzone"
	case Odroid:
		return "odroid"
	}
	return "unknown mapping"
}

// MappingList is the list of Mapping values as strings.
var MappingList = []string{Deadzone.String(), Odroid.String()}

// ParseMapping converts a string to a Mapping.
func ParseMapping(s string) (Mapping, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deadzone":
		return Deadzone, nil
	case "odroid":
		return Odroid, nil
	}
	return Deadzone, fmt.Errorf("joystick: unknown mapping %q: %w", s, display.ErrConfiguration)
}

// Config for a Joystick. The default values are for a 12 bit ADC.
type Config struct {
	Center   int
	Deadzone int
	Max      int

	ReverseX bool
	ReverseY bool

	Mapping Mapping

	// read the d-pad pins as well as the stick. a direction is pressed if it
	// is pressed on either
	UseDPad bool
}

// DefaultConfig returns a Config for a 12 bit ADC.
func DefaultConfig() Config {
	return Config{
		Center:   2048,
		Deadzone: 300,
		Max:      4095,
		Mapping:  Deadzone,
	}
}

// Joystick implements the input.Source interface.
type Joystick struct {
	adc     ADC
	buttons *gpio.GPIO
	cfg     Config
}

// NewJoystick is the preferred method of initialisation for the Joystick type.
// The buttons argument can be nil.
func NewJoystick(adc ADC, buttons *gpio.GPIO, cfg Config) (*Joystick, error) {
	if adc == nil {
		return nil, fmt.Errorf("joystick: no ADC: %w", display.ErrConfiguration)
	}
	if cfg.Max <= 0 || cfg.Center <= 0 || cfg.Center >= cfg.Max {
		return nil, fmt.Errorf("joystick: centre %d outside of range 0 to %d: %w", cfg.Center, cfg.Max, display.ErrConfiguration)
	}
	if cfg.Deadzone < 0 || cfg.Center-cfg.Deadzone < 0 || cfg.Center+cfg.Deadzone > cfg.Max {
		return nil, fmt.Errorf("joystick: deadzone %d: %w", cfg.Deadzone, display.ErrConfiguration)
	}
	if buttons == nil {
		buttons = gpio.NewGPIO(gpio.Pins{})
	}
	return &Joystick{
		adc:     adc,
		buttons: buttons,
		cfg:     cfg,
	}, nil
}

// returns the pressed state of the low and high direction of an axis. the
// value has already been reversed if required
func (j *Joystick) deadzone(v int) (low bool, high bool) {
	return v < j.cfg.Center-j.cfg.Deadzone, v > j.cfg.Center+j.cfg.Deadzone
}

// the ODROID-GO thresholds. the first return value is the direction that is
// pressed at the top of the range
func odroid(v int) (top bool, middle bool) {
	switch {
	case v > 2048+1024:
		return true, false
	case v > 1024:
		return false, true
	case v < 512:
		return true, true
	}
	return false, false
}

func (j *Joystick) read(axis Axis, reverse bool) (int, error) {
	v, err := j.adc.Read(axis)
	if err != nil {
		return 0, fmt.Errorf("joystick: %v axis: %w", axis, err)
	}
	v = min(max(v, 0), j.cfg.Max)
	if reverse {
		v = j.cfg.Max - v
	}
	return v, nil
}

// Pressed returns the buttons that are pressed. A set bit means pressed.
func (j *Joystick) Pressed() (uint32, error) {
	y, err := j.read(AxisY, j.cfg.ReverseY)
	if err != nil {
		return 0, err
	}
	x, err := j.read(AxisX, j.cfg.ReverseX)
	if err != nil {
		return 0, err
	}

	var up, down, left, right bool
	switch j.cfg.Mapping {
	case Odroid:
		up, down = odroid(y)
		left, right = odroid(x)
	default:
		up, down = j.deadzone(y)
		left, right = j.deadzone(x)
	}

	var pressed uint32
	if up {
		pressed |= input.Up
	}
	if down {
		pressed |= input.Down
	}
	if left {
		pressed |= input.Left
	}
	if right {
		pressed |= input.Right
	}

	buttons := j.buttons.Pressed()
	if !j.cfg.UseDPad {
		buttons &^= input.DPad
	}

	return pressed | buttons, nil
}

// Poll implements the input.Source interface.
func (j *Joystick) Poll() (uint32, error) {
	pressed, err := j.Pressed()
	if err != nil {
		return input.AllReleased, err
	}
	return input.FromPressed(pressed), nil
}
