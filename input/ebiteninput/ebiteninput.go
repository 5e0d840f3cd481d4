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

// Package ebiteninput reads the host keyboard and gamepads through
// Ebitengine. It is used with the ebitensink package. The input functions of
// Ebitengine are safe to call from any goroutine so, unlike the sdlinput
// package, there are no events to forward and the Poller reads the state
// directly.
package ebiteninput

import (
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/panelpipe/panelpipe/input/gamepad"
	"github.com/panelpipe/panelpipe/input/gpio"
	"github.com/panelpipe/panelpipe/logger"
)

// Key returns a pin that is low while the key is held down.
func Key(k ebiten.Key) gpio.Pin {
	return gpio.PinFunc(func() bool {
		return !ebiten.IsKeyPressed(k)
	})
}

// KeyPins returns the default key assignments for use with gpio.NewGPIO().
// The cursor keys are the d-pad. Enter and right-shift are start and select.
// The X Z S and A keys are the A B X and Y buttons.
func KeyPins() gpio.Pins {
	return gpio.Pins{
		Up:     Key(ebiten.KeyArrowUp),
		Down:   Key(ebiten.KeyArrowDown),
		Left:   Key(ebiten.KeyArrowLeft),
		Right:  Key(ebiten.KeyArrowRight),
		Start:  Key(ebiten.KeyEnter),
		Select: Key(ebiten.KeyShiftRight),
		A:      Key(ebiten.KeyX),
		B:      Key(ebiten.KeyZ),
		X:      Key(ebiten.KeyS),
		Y:      Key(ebiten.KeyA),
	}
}

// Gamepad implements the gamepad.Controller interface for the first gamepad
// with a standard layout.
type Gamepad struct {
	crit sync.Mutex
	ids  []ebiten.GamepadID

	id        ebiten.GamepadID
	connected bool
}

// NewGamepad is the preferred method of initialisation for the Gamepad type.
func NewGamepad() *Gamepad {
	return &Gamepad{
		ids: make([]ebiten.GamepadID, 0, 8),
	}
}

// Connected implements the gamepad.Controller interface.
func (g *Gamepad) Connected() bool {
	g.crit.Lock()
	defer g.crit.Unlock()

	g.ids = ebiten.AppendGamepadIDs(g.ids[:0])
	for _, id := range g.ids {
		if ebiten.IsStandardGamepadLayoutAvailable(id) {
			if !g.connected || g.id != id {
				logger.Logf(logger.Allow, "input", "gamepad: %s", ebiten.GamepadName(id))
			}
			g.id = id
			g.connected = true
			return true
		}
	}

	g.connected = false
	return false
}

// WaitingForFirstNotification implements the gamepad.Controller interface.
// Ebitengine always has the state of a connected gamepad.
func (g *Gamepad) WaitingForFirstNotification() bool {
	return false
}

// FailedConnections implements the gamepad.Controller interface.
func (g *Gamepad) FailedConnections() int {
	return 0
}

// Report implements the gamepad.Controller interface.
func (g *Gamepad) Report() gamepad.Report {
	g.crit.Lock()
	id := g.id
	connected := g.connected
	g.crit.Unlock()

	if !connected {
		return gamepad.Report{}
	}

	button := func(b ebiten.StandardGamepadButton) bool {
		return ebiten.IsStandardGamepadButtonPressed(id, b)
	}
	axis := func(a ebiten.StandardGamepadAxis) float64 {
		return ebiten.StandardGamepadAxisValue(id, a)
	}
	trigger := func(b ebiten.StandardGamepadButton) float64 {
		return ebiten.StandardGamepadButtonValue(id, b)
	}

	return gamepad.Report{
		Up:     button(ebiten.StandardGamepadButtonLeftTop),
		Down:   button(ebiten.StandardGamepadButtonLeftBottom),
		Left:   button(ebiten.StandardGamepadButtonLeftLeft),
		Right:  button(ebiten.StandardGamepadButtonLeftRight),
		Select: button(ebiten.StandardGamepadButtonCenterLeft),
		Start:  button(ebiten.StandardGamepadButtonCenterRight),
		A:      button(ebiten.StandardGamepadButtonRightBottom),
		B:      button(ebiten.StandardGamepadButtonRightRight),
		X:      button(ebiten.StandardGamepadButtonRightLeft),
		Y:      button(ebiten.StandardGamepadButtonRightTop),

		LeftX:  stick(axis(ebiten.StandardGamepadAxisLeftStickHorizontal)),
		LeftY:  -stick(axis(ebiten.StandardGamepadAxisLeftStickVertical)),
		RightX: stick(axis(ebiten.StandardGamepadAxisRightStickHorizontal)),
		RightY: -stick(axis(ebiten.StandardGamepadAxisRightStickVertical)),

		TriggerL: analogueTrigger(trigger(ebiten.StandardGamepadButtonFrontBottomLeft)),
		TriggerR: analogueTrigger(trigger(ebiten.StandardGamepadButtonFrontBottomRight)),
	}
}

// stick converts an axis value in the range -1 to 1 to the signed 16 bit
// range used by gamepad.Report.
func stick(v float64) int {
	return int(max(-1, min(1, v)) * 32767)
}

// analogueTrigger converts a trigger value in the range 0 to 1 to ten bits.
func analogueTrigger(v float64) int {
	return int(max(0, min(1, v)) * 1023)
}
