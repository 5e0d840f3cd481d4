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

package macro

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/panelpipe/panelpipe/emulation"
	"github.com/panelpipe/panelpipe/input"
	"github.com/panelpipe/panelpipe/logger"
)

// Features is the part of the emulation.Engine interface used by macros.
type Features interface {
	SetFeature(request emulation.FeatureReq, args ...emulation.FeatureReqData) error
}

const headerID = "panelpipemacro"

const (
	headerLineID = iota
	headerLineVersion
	headerNumLines
)

// number of polls that a button pressed by TAP is held for
const tapPolls = 2

// default number of polls for WAIT
const defaultWait = 60

type loop struct {
	line int

	// loop counters count upwards because it is more natural when thinking
	// about the number of iterations
	count    int
	countEnd int
}

// Macro implements the input.Source interface.
type Macro struct {
	name         string
	instructions []string

	features Features
	quit     func()
	now      func() time.Time

	ln    int
	loops []loop

	// buttons held by the macro. a set bit means pressed
	held uint32

	// buttons that will be released when the current wait ends
	tapped uint32

	waitPolls int
	waitUntil time.Time

	done bool
}

// NewMacro reads the macro file. The features and quit arguments can be nil,
// in which case the instructions that use them are ignored.
func NewMacro(filename string, features Features, quit func()) (*Macro, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("macro: %w", err)
	}
	defer f.Close()
	return NewMacroFromReader(filename, f, features, quit)
}

// NewMacroFromReader is like NewMacro but reads the macro from an io.Reader.
// The name is used in log entries.
func NewMacroFromReader(name string, r io.Reader, features Features, quit func()) (*Macro, error) {
	mcr := &Macro{
		name:     name,
		features: features,
		quit:     quit,
		now:      time.Now,
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		mcr.instructions = append(mcr.instructions, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("macro: %w", err)
	}

	if len(mcr.instructions) < headerNumLines {
		return nil, fmt.Errorf("macro: %s: not a macro file", name)
	}
	if strings.TrimSpace(mcr.instructions[headerLineID]) != headerID {
		return nil, fmt.Errorf("macro: %s: not a macro file", name)
	}

	// ignore version string for now

	// we no longer need the header
	mcr.instructions = mcr.instructions[headerNumLines:]

	return mcr, nil
}

// Done returns true once the macro has ended.
func (mcr *Macro) Done() bool {
	return mcr.done
}

// Poll implements the input.Source interface. Every call advances the macro
// to the next WAIT, or to the end of the script.
func (mcr *Macro) Poll() (uint32, error) {
	if !mcr.done {
		mcr.step()
	}
	return input.FromPressed(mcr.held), nil
}

func (mcr *Macro) log(msg string) {
	logger.Logf(logger.Allow, "macro", "%s: %d: %s", mcr.name, mcr.ln+headerNumLines+1, msg)
}

// end the macro. buttons are released.
func (mcr *Macro) end() {
	mcr.done = true
	mcr.held = 0
	mcr.tapped = 0
}

// waiting returns true if the macro is in the middle of a wait. the wait is
// consumed by the call.
func (mcr *Macro) waiting() bool {
	if mcr.waitPolls > 0 {
		mcr.waitPolls--
		return true
	}
	if !mcr.waitUntil.IsZero() {
		if mcr.now().Before(mcr.waitUntil) {
			return true
		}
		mcr.waitUntil = time.Time{}
	}
	return false
}

func (mcr *Macro) step() {
	if mcr.waiting() {
		return
	}

	// buttons pressed by TAP are released once the wait is over
	if mcr.tapped != 0 {
		mcr.held &^= mcr.tapped
		mcr.tapped = 0
		mcr.waitPolls = tapPolls - 1
		return
	}

	for ; mcr.ln < len(mcr.instructions); mcr.ln++ {
		wait, err := mcr.execute(strings.Fields(mcr.instructions[mcr.ln]))
		if err != nil {
			mcr.log(err.Error())
			mcr.end()
			return
		}
		if mcr.done {
			return
		}
		if wait {
			mcr.ln++
			return
		}
	}

	mcr.end()
}

// parse the names of buttons into a mask. a set bit means pressed
func buttons(names []string) (uint32, error) {
	var mask uint32
	for _, n := range names {
		b, err := input.ParseButton(n)
		if err != nil {
			return 0, err
		}
		mask |= b
	}
	return mask, nil
}

// execute a single instruction. returns true if the macro should wait
// before executing the next instruction.
func (mcr *Macro) execute(toks []string) (bool, error) {
	if len(toks) == 0 {
		return false, nil
	}

	switch strings.ToUpper(toks[0]) {
	default:
		return false, fmt.Errorf("unrecognised command: %s", toks[0])

	case "--":
		// ignore comment lines

	case "DO":
		if len(toks) != 2 {
			return false, fmt.Errorf("DO requires one argument")
		}
		ct, err := strconv.Atoi(toks[1])
		if err != nil {
			return false, err
		}
		mcr.loops = append(mcr.loops, loop{line: mcr.ln, countEnd: ct})

	case "LOOP":
		if len(toks) > 1 {
			return false, fmt.Errorf("too many arguments for LOOP")
		}

		idx := len(mcr.loops) - 1
		if idx == -1 {
			return false, fmt.Errorf("LOOP without a DO")
		}

		lp := &mcr.loops[idx]
		lp.count++

		if lp.count < lp.countEnd {
			// loop is ongoing so return to start of loop
			mcr.ln = lp.line
		} else {
			// loop has ended. remove from loop stack
			mcr.loops = mcr.loops[:idx]
		}

	case "WAIT":
		switch len(toks) {
		case 1:
			mcr.waitPolls = defaultWait - 1
		case 2:
			if w, err := strconv.Atoi(toks[1]); err == nil {
				mcr.waitPolls = max(w-1, 0)
				break
			}
			d, err := time.ParseDuration(toks[1])
			if err != nil {
				return false, fmt.Errorf("unrecognised WAIT: %s", toks[1])
			}
			mcr.waitUntil = mcr.now().Add(d)
		default:
			return false, fmt.Errorf("too many arguments for WAIT")
		}
		return true, nil

	case "PRESS":
		mask, err := buttons(toks[1:])
		if err != nil {
			return false, err
		}
		mcr.held |= mask
		mcr.waitPolls = tapPolls - 1
		return true, nil

	case "RELEASE":
		if len(toks) == 1 {
			mcr.held = 0
		} else {
			mask, err := buttons(toks[1:])
			if err != nil {
				return false, err
			}
			mcr.held &^= mask
		}
		mcr.waitPolls = tapPolls - 1
		return true, nil

	case "TAP":
		mask, err := buttons(toks[1:])
		if err != nil {
			return false, err
		}
		mcr.held |= mask
		mcr.tapped = mask
		mcr.waitPolls = tapPolls - 1
		return true, nil

	case "PATTERN":
		if len(toks) != 2 {
			return false, fmt.Errorf("PATTERN requires one argument")
		}
		return false, mcr.setFeature(emulation.ReqSetPattern, toks[1])

	case "FPS":
		if len(toks) != 2 {
			return false, fmt.Errorf("FPS requires one argument")
		}
		v, err := strconv.ParseFloat(toks[1], 32)
		if err != nil {
			return false, err
		}
		return false, mcr.setFeature(emulation.ReqSetFPS, float32(v))

	case "PAUSE":
		if len(toks) != 2 {
			return false, fmt.Errorf("PAUSE requires one argument")
		}
		var pause bool
		switch strings.ToLower(toks[1]) {
		case "on":
			pause = true
		case "off":
		default:
			return false, fmt.Errorf("unrecognised PAUSE: %s", toks[1])
		}
		return false, mcr.setFeature(emulation.ReqSetPause, pause)

	case "QUIT":
		if len(toks) > 1 {
			return false, fmt.Errorf("too many arguments for QUIT")
		}
		if mcr.quit != nil {
			mcr.quit()
		}
		mcr.end()
	}

	return false, nil
}

func (mcr *Macro) setFeature(request emulation.FeatureReq, arg emulation.FeatureReqData) error {
	if mcr.features == nil {
		return nil
	}
	return mcr.features.SetFeature(request, arg)
}
