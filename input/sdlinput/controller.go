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
	"sync"

	"github.com/panelpipe/panelpipe/input/gamepad"
	"github.com/panelpipe/panelpipe/logger"
	"github.com/veandco/go-sdl2/sdl"
)

// GameController implements the gamepad.Controller interface for the first
// game controller attached to the host. Controllers can be attached and
// removed while the program is running.
type GameController struct {
	crit sync.Mutex

	pad      *sdl.GameController
	instance sdl.JoystickID

	// true between the controller being attached and the first button or
	// axis event
	waiting bool

	report gamepad.Report
	failed int
}

// NewGameController is the preferred method of initialisation for the
// GameController type. The controller is opened when SDL reports that it has
// been attached, which for controllers already plugged in happens on the
// first call to sdlsink.Service().
func NewGameController() *GameController {
	return &GameController{}
}

// Connected implements the gamepad.Controller interface.
func (gc *GameController) Connected() bool {
	gc.crit.Lock()
	defer gc.crit.Unlock()
	return gc.pad != nil
}

// WaitingForFirstNotification implements the gamepad.Controller interface.
func (gc *GameController) WaitingForFirstNotification() bool {
	gc.crit.Lock()
	defer gc.crit.Unlock()
	return gc.waiting
}

// Report implements the gamepad.Controller interface.
func (gc *GameController) Report() gamepad.Report {
	gc.crit.Lock()
	defer gc.crit.Unlock()
	return gc.report
}

// FailedConnections implements the gamepad.Controller interface.
func (gc *GameController) FailedConnections() int {
	gc.crit.Lock()
	defer gc.crit.Unlock()
	return gc.failed
}

// HandleEvent implements the sdlsink.EventHandler interface. It never
// consumes events.
func (gc *GameController) HandleEvent(ev sdl.Event) bool {
	gc.crit.Lock()
	defer gc.crit.Unlock()

	switch ev := ev.(type) {
	case *sdl.ControllerDeviceEvent:
		switch ev.Type {
		case sdl.CONTROLLERDEVICEADDED:
			if gc.pad != nil {
				break
			}
			pad := sdl.GameControllerOpen(int(ev.Which))
			if pad == nil {
				gc.failed++
				logger.Logf(logger.Allow, "input", "cannot open game controller %d: %v", ev.Which, sdl.GetError())
				break
			}
			gc.pad = pad
			gc.instance = pad.Joystick().InstanceID()
			gc.waiting = true
			gc.report = gamepad.Report{}
			logger.Logf(logger.Allow, "input", "game controller: %s", pad.Name())

		case sdl.CONTROLLERDEVICEREMOVED:
			if gc.pad == nil || ev.Which != gc.instance {
				break
			}
			gc.pad.Close()
			gc.pad = nil
			gc.report = gamepad.Report{}
		}

	case *sdl.ControllerButtonEvent:
		if gc.pad == nil || ev.Which != gc.instance {
			break
		}
		gc.waiting = false
		applyButton(&gc.report, sdl.GameControllerButton(ev.Button), ev.State == sdl.PRESSED)

	case *sdl.ControllerAxisEvent:
		if gc.pad == nil || ev.Which != gc.instance {
			break
		}
		gc.waiting = false
		applyAxis(&gc.report, sdl.GameControllerAxis(ev.Axis), ev.Value)
	}

	return false
}

func applyButton(r *gamepad.Report, button sdl.GameControllerButton, down bool) {
	switch button {
	case sdl.CONTROLLER_BUTTON_DPAD_UP:
		r.Up = down
	case sdl.CONTROLLER_BUTTON_DPAD_DOWN:
		r.Down = down
	case sdl.CONTROLLER_BUTTON_DPAD_LEFT:
		r.Left = down
	case sdl.CONTROLLER_BUTTON_DPAD_RIGHT:
		r.Right = down
	case sdl.CONTROLLER_BUTTON_BACK:
		r.Select = down
	case sdl.CONTROLLER_BUTTON_START:
		r.Start = down
	case sdl.CONTROLLER_BUTTON_A:
		r.A = down
	case sdl.CONTROLLER_BUTTON_B:
		r.B = down
	case sdl.CONTROLLER_BUTTON_X:
		r.X = down
	case sdl.CONTROLLER_BUTTON_Y:
		r.Y = down
	}
}

// stick values in the report are positive upwards. triggers are reduced to
// ten bits
func applyAxis(r *gamepad.Report, axis sdl.GameControllerAxis, v int16) {
	switch axis {
	case sdl.CONTROLLER_AXIS_LEFTX:
		r.LeftX = int(v)
	case sdl.CONTROLLER_AXIS_LEFTY:
		r.LeftY = -int(v)
	case sdl.CONTROLLER_AXIS_RIGHTX:
		r.RightX = int(v)
	case sdl.CONTROLLER_AXIS_RIGHTY:
		r.RightY = -int(v)
	case sdl.CONTROLLER_AXIS_TRIGGERLEFT:
		r.TriggerL = max(int(v), 0) >> 5
	case sdl.CONTROLLER_AXIS_TRIGGERRIGHT:
		r.TriggerR = max(int(v), 0) >> 5
	}
}
