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

// Package emulation defines the contract between a video source, usually an
// emulator, and the display pipeline. The engine produces indexed frames and
// hands each one to a FrameSink. The FrameSink returns once it no longer
// needs the frame so the engine can draw the next frame into the same
// memory.
package emulation

import (
	"context"

	"github.com/panelpipe/panelpipe/display"
)

// FrameSink receives finished frames from the engine. The
// pipeline.Pipeline type is the only likely implementation.
type FrameSink interface {
	OnFrameReady(frame display.SourceFrame) error
}

// Buttons is the view of the input state available to the engine. The
// input.State type is the only likely implementation.
type Buttons interface {
	// Held returns the buttons that are currently pressed. A set bit means
	// pressed.
	Held() uint32
}

// Engine is a source of video frames.
type Engine interface {
	// Run produces frames until the context is cancelled or an error
	// occurs. Cancellation of the context is not an error.
	Run(ctx context.Context, sink FrameSink, buttons Buttons) error

	// Send a request to set an engine feature.
	SetFeature(request FeatureReq, args ...FeatureReqData) error

	// Immediate request for the state of the engine.
	State() State
}

// State indicates the engine's state.
type State int

// List of possible engine states.
//
// Values are ordered so that order comparisons are meaningful. For example,
// Running is "greater than" Paused.
const (
	Initialising State = iota
	Paused
	Running
	Ending
)

func (s State) String() string {
	switch s {
	case Initialising:
		return "initialising"
	case Paused:
		return "paused"
	case Running:
		return "running"
	case Ending:
		return "ending"
	}
	return "unknown state"
}
