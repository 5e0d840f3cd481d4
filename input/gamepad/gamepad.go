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

// Package gamepad reads a wireless game controller. The connection to the
// controller is managed elsewhere. This package only needs to know whether
// the controller is connected and what it is reporting.
//
// While the controller is not connected every button reads as released. If the
// connection fails too many times then Poll() returns ErrControllerLost and
// the Poller stops.
package gamepad

import (
	"fmt"

	"github.com/panelpipe/panelpipe/input"
	"github.com/panelpipe/panelpipe/logger"
)

// ErrControllerLost is returned by Poll() when the controller has failed to
// connect more times than allowed.
var ErrControllerLost = fmt.Errorf("gamepad: controller lost: %w", input.ErrSourceLost)

// Report is the state of the controller. Stick values are signed with zero at
// the centre and positive values up and to the right. Trigger values are zero
// when released.
type Report struct {
	Up     bool
	Down   bool
	Left   bool
	Right  bool
	Select bool
	Start  bool
	A      bool
	B      bool
	X      bool
	Y      bool

	LeftX  int
	LeftY  int
	RightX int
	RightY int

	TriggerL int
	TriggerR int
}

// Controller is the connection to a game controller.
type Controller interface {
	Connected() bool

	// a controller that has connected but not yet sent any state
	WaitingForFirstNotification() bool

	// the most recent state sent by the controller
	Report() Report

	// the number of times a connection has been attempted and failed
	FailedConnections() int
}

// Options for a Gamepad.
type Options struct {
	// the left stick also drives the d-pad
	AnalogAsDPad bool

	// the triggers are reported as TriggerL and TriggerR
	Triggers bool

	AnalogThreshold  int
	TriggerThreshold int

	// Poll() returns ErrControllerLost when the number of failed connections
	// is greater than this value
	MaxFailedConnections int
}

// DefaultOptions returns the Options for an Xbox Series controller.
func DefaultOptions() Options {
	return Options{
		AnalogThreshold:      8000,
		TriggerThreshold:     200,
		MaxFailedConnections: 2,
	}
}

// Gamepad implements the input.Source interface.
type Gamepad struct {
	ctrl Controller
	opts Options

	current   uint32
	connected bool
}

// NewGamepad is the preferred method of initialisation for the Gamepad type.
func NewGamepad(ctrl Controller, opts Options) *Gamepad {
	return &Gamepad{
		ctrl:    ctrl,
		opts:    opts,
		current: input.AllReleased,
	}
}

// Map converts a report to a mask of pressed buttons. A set bit means pressed.
func (g *Gamepad) Map(r Report) uint32 {
	var pressed uint32

	for _, b := range []struct {
		on  bool
		bit uint32
	}{
		{r.Up, input.Up},
		{r.Down, input.Down},
		{r.Left, input.Left},
		{r.Right, input.Right},
		{r.Select, input.Select},
		{r.Start, input.Start},
		{r.A, input.A},
		{r.B, input.B},
		{r.X, input.X},
		{r.Y, input.Y},
	} {
		if b.on {
			pressed |= b.bit
		}
	}

	if g.opts.AnalogAsDPad {
		t := g.opts.AnalogThreshold
		if r.LeftY > t {
			pressed |= input.Up
		}
		if r.LeftY < -t {
			pressed |= input.Down
		}
		if r.LeftX < -t {
			pressed |= input.Left
		}
		if r.LeftX > t {
			pressed |= input.Right
		}
	}

	if g.opts.Triggers {
		if r.TriggerL > g.opts.TriggerThreshold {
			pressed |= input.TriggerL
		}
		if r.TriggerR > g.opts.TriggerThreshold {
			pressed |= input.TriggerR
		}
	}

	return pressed
}

// Poll implements the input.Source interface.
func (g *Gamepad) Poll() (uint32, error) {
	if !g.ctrl.Connected() {
		if g.connected {
			g.connected = false
			logger.Log(logger.Allow, "input", "gamepad disconnected")
		}
		g.current = input.AllReleased
		if n := g.ctrl.FailedConnections(); n > g.opts.MaxFailedConnections {
			return input.AllReleased, fmt.Errorf("%w: %d failed connections", ErrControllerLost, n)
		}
		return input.AllReleased, nil
	}

	if !g.connected {
		g.connected = true
		logger.Log(logger.Allow, "input", "gamepad connected")
	}

	if g.ctrl.WaitingForFirstNotification() {
		return g.current, nil
	}

	g.current = input.FromPressed(g.Map(g.ctrl.Report()))
	return g.current, nil
}
