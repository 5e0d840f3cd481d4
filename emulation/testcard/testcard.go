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

// Package testcard is a synthetic engine. It draws a choice of test patterns
// and a cursor that is steered with the d-pad, which is enough to exercise
// the whole pipeline from input to panel without an emulator.
//
// Pressing Start pauses and resumes the engine. While paused the same frame
// is handed to the FrameSink so the panel keeps being refreshed.
package testcard

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/panelpipe/panelpipe/display"
	"github.com/panelpipe/panelpipe/display/fps"
	"github.com/panelpipe/panelpipe/emulation"
	"github.com/panelpipe/panelpipe/input"
	"github.com/panelpipe/panelpipe/logger"
)

// Pattern is the background drawn by the Engine.
type Pattern int

// List of valid Pattern values.
const (
	Bars Pattern = iota
	Grid
	Gradient
)

func (p Pattern) String() string {
	switch p {
	case Bars:
		return "bars"
	case Grid:
		return "grid"
	case Gradient:
		return "gradient"
	}
	return "unknown pattern"
}

// PatternList is the list of pattern names accepted by ParsePattern().
var PatternList = []string{"bars", "grid", "gradient"}

// ParsePattern returns the Pattern for the name.
func ParsePattern(s string) (Pattern, error) {
	for i, n := range PatternList {
		if strings.EqualFold(s, n) {
			return Pattern(i), nil
		}
	}
	return Bars, fmt.Errorf("testcard: unknown pattern %q", s)
}

// palette indexes of the colour bars
var bars = [...]uint8{0x30, 0x28, 0x2c, 0x2a, 0x24, 0x16, 0x12, 0x0f}

const (
	cursorSize   = 8
	cursorColour = 0x20
	gridColour   = 0x30
	gridSpacing  = 16
	darkColour   = 0x0f
)

// Engine implements the emulation.Engine interface.
type Engine struct {
	frame   display.SourceFrame
	limiter *fps.Limiter

	pattern atomic.Int32
	paused  atomic.Bool
	state   atomic.Int32

	cursorX int
	cursorY int

	// start button was held on the previous frame
	start bool

	// number of unpaused steps. the patterns scroll with this value
	steps int

	frames atomic.Uint64
}

// NewEngine is the preferred method of initialisation for the Engine type.
// Frames are produced at the requested rate. A rate of zero or less produces
// frames as quickly as the FrameSink accepts them.
func NewEngine(rate float32) *Engine {
	e := &Engine{
		frame:   display.NewSourceFrame(display.SourceWidth, display.SourceHeight),
		limiter: fps.NewLimiter(rate),
	}
	e.cursorX = (display.SourceWidth - cursorSize) / 2
	e.cursorY = (display.SourceHeight - cursorSize) / 2
	return e
}

// SetFeature implements the emulation.Engine interface.
func (e *Engine) SetFeature(request emulation.FeatureReq, args ...emulation.FeatureReqData) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: %s", emulation.ErrFeatureArgument, request)
	}

	switch request {
	case emulation.ReqSetPause:
		v, ok := args[0].(bool)
		if !ok {
			return fmt.Errorf("%w: %s", emulation.ErrFeatureArgument, request)
		}
		e.paused.Store(v)

	case emulation.ReqSetFPS:
		v, ok := args[0].(float32)
		if !ok {
			return fmt.Errorf("%w: %s", emulation.ErrFeatureArgument, request)
		}
		e.limiter.SetLimit(v)

	case emulation.ReqSetPattern:
		s, ok := args[0].(string)
		if !ok {
			return fmt.Errorf("%w: %s", emulation.ErrFeatureArgument, request)
		}
		p, err := ParsePattern(s)
		if err != nil {
			return err
		}
		e.pattern.Store(int32(p))

	default:
		return fmt.Errorf("%w: %s", emulation.ErrUnsupportedFeature, request)
	}

	return nil
}

// State implements the emulation.Engine interface.
func (e *Engine) State() emulation.State {
	return emulation.State(e.state.Load())
}

// Frames returns the number of frames handed to the FrameSink.
func (e *Engine) Frames() uint64 {
	return e.frames.Load()
}

// FPS returns the measured rate of frame production.
func (e *Engine) FPS() float32 {
	return e.limiter.Measured.Load().(float32)
}

// Frame returns the frame drawn by the most recent call to Step().
func (e *Engine) Frame() display.SourceFrame {
	return e.frame
}

// Cursor returns the position of the top-left corner of the cursor.
func (e *Engine) Cursor() (int, int) {
	return e.cursorX, e.cursorY
}

// Run implements the emulation.Engine interface. The Engine can only be run
// once.
func (e *Engine) Run(ctx context.Context, sink emulation.FrameSink, buttons emulation.Buttons) error {
	defer e.limiter.Stop()
	defer e.state.Store(int32(emulation.Ending))

	logger.Logf(logger.Allow, "engine", "testcard running (%s)", Pattern(e.pattern.Load()))

	for ctx.Err() == nil {
		e.Step(buttons.Held())

		if e.paused.Load() {
			e.state.Store(int32(emulation.Paused))
		} else {
			e.state.Store(int32(emulation.Running))
		}

		if err := sink.OnFrameReady(e.frame); err != nil {
			return fmt.Errorf("testcard: %w", err)
		}
		e.frames.Add(1)

		if err := e.limiter.CheckFrame(ctx); err != nil {
			break
		}
	}

	return nil
}

// Step advances the engine by one frame. Held is the mask of buttons that are
// pressed, with a set bit meaning pressed.
func (e *Engine) Step(held uint32) {
	start := held&input.Start == input.Start
	if start && !e.start {
		e.paused.Store(!e.paused.Load())
	}
	e.start = start

	if e.paused.Load() {
		return
	}

	if held&input.Left == input.Left {
		e.cursorX--
	}
	if held&input.Right == input.Right {
		e.cursorX++
	}
	if held&input.Up == input.Up {
		e.cursorY--
	}
	if held&input.Down == input.Down {
		e.cursorY++
	}
	e.cursorX = min(max(e.cursorX, 0), display.SourceWidth-cursorSize)
	e.cursorY = min(max(e.cursorY, 0), display.SourceHeight-cursorSize)

	e.draw(e.steps)
	e.steps++
}

func (e *Engine) draw(offset int) {
	switch Pattern(e.pattern.Load()) {
	case Bars:
		w := display.SourceWidth / len(bars)
		for _, row := range e.frame {
			for x := range row {
				row[x] = bars[((x+offset)/w)%len(bars)]
			}
		}

	case Grid:
		for y, row := range e.frame {
			for x := range row {
				if (x+offset)%gridSpacing == 0 || y%gridSpacing == 0 {
					row[x] = gridColour
				} else {
					row[x] = darkColour
				}
			}
		}

	case Gradient:
		for y, row := range e.frame {
			for x := range row {
				row[x] = uint8(((x + y + offset) / 4) % 64)
			}
		}
	}

	for y := e.cursorY; y < e.cursorY+cursorSize; y++ {
		row := e.frame[y]
		for x := e.cursorX; x < e.cursorX+cursorSize; x++ {
			row[x] = cursorColour
		}
	}
}
