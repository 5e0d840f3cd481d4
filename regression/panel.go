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

package regression

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/panelpipe/panelpipe/database"
	"github.com/panelpipe/panelpipe/digest"
	"github.com/panelpipe/panelpipe/display"
	"github.com/panelpipe/panelpipe/display/specification"
	"github.com/panelpipe/panelpipe/emulation"
	"github.com/panelpipe/panelpipe/emulation/testcard"
	"github.com/panelpipe/panelpipe/input"
	"github.com/panelpipe/panelpipe/input/macro"
	"github.com/panelpipe/panelpipe/pipeline"
	"github.com/panelpipe/panelpipe/sinks/headless"
)

const panelEntryType = "panel"

const (
	panelFieldPanel int = iota
	panelFieldMode
	panelFieldScale
	panelFieldPattern
	panelFieldFrames
	panelFieldMacro
	panelFieldNotes
	panelFieldDigest
	numPanelFields
)

// the longest time a regression waits for a single frame to be presented
const presentTimeout = 5 * time.Second

// PanelRegression runs the testcard through a pipeline for a number of
// frames and records a digest of what was sent to the panel.
type PanelRegression struct {
	Panel   string
	Mode    display.PresentMode
	Scale   pipeline.ScaleMode
	Pattern string
	Frames  int

	// path to the macro file that drives the input. can be empty
	Macro string

	Notes  string
	Digest string
}

// NewPanelRegression is the preferred method of initialisation for the
// PanelRegression type. The digest is recorded when the regression is added
// to the database.
func NewPanelRegression(panel string, mode display.PresentMode, scale pipeline.ScaleMode, pattern string, frames int) (*PanelRegression, error) {
	p, err := specification.SearchPanel(panel)
	if err != nil {
		return nil, fmt.Errorf("regression: %w", err)
	}
	if _, err := testcard.ParsePattern(pattern); err != nil {
		return nil, fmt.Errorf("regression: %w", err)
	}
	if frames <= 0 {
		return nil, fmt.Errorf("regression: number of frames must be positive")
	}
	return &PanelRegression{
		Panel:   p.ID,
		Mode:    mode,
		Scale:   scale,
		Pattern: pattern,
		Frames:  frames,
	}, nil
}

func deserialisePanelEntry(fields []string) (database.Entry, error) {
	if len(fields) != numPanelFields {
		return nil, fmt.Errorf("panel regression: wrong number of fields (%d)", len(fields))
	}

	reg := &PanelRegression{
		Panel:   fields[panelFieldPanel],
		Pattern: fields[panelFieldPattern],
		Macro:   fields[panelFieldMacro],
		Notes:   fields[panelFieldNotes],
		Digest:  fields[panelFieldDigest],
	}

	var err error
	reg.Mode, err = display.ParsePresentMode(fields[panelFieldMode])
	if err != nil {
		return nil, fmt.Errorf("panel regression: %w", err)
	}
	reg.Scale, err = pipeline.ParseScaleMode(fields[panelFieldScale])
	if err != nil {
		return nil, fmt.Errorf("panel regression: %w", err)
	}
	reg.Frames, err = strconv.Atoi(fields[panelFieldFrames])
	if err != nil {
		return nil, fmt.Errorf("panel regression: invalid number of frames: %w", err)
	}

	return reg, nil
}

// EntryType implements the database.Entry interface.
func (reg PanelRegression) EntryType() string {
	return panelEntryType
}

// String implements the database.Entry interface.
func (reg PanelRegression) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("[%s] %s %s %s %s frames=%d", reg.EntryType(), reg.Panel, reg.Mode, reg.Scale, reg.Pattern, reg.Frames))
	if reg.Macro != "" {
		s.WriteString(fmt.Sprintf(" macro=%s", filepath.Base(reg.Macro)))
	}
	if reg.Notes != "" {
		s.WriteString(fmt.Sprintf(" [%s]", reg.Notes))
	}
	return s.String()
}

// Serialise implements the database.Entry interface.
func (reg *PanelRegression) Serialise() (database.SerialisedEntry, error) {
	return database.SerialisedEntry{
		reg.Panel,
		reg.Mode.String(),
		reg.Scale.String(),
		reg.Pattern,
		strconv.Itoa(reg.Frames),
		reg.Macro,
		reg.Notes,
		reg.Digest,
	}, nil
}

// CleanUp implements the database.Entry interface. The macro file is not
// owned by the regression and is not removed.
func (reg PanelRegression) CleanUp() error {
	return nil
}

// regress implements the Regressor interface.
func (reg *PanelRegression) regress(newRegression bool, output io.Writer, msg string) (bool, string, error) {
	fmt.Fprint(output, msg)

	hash, err := reg.run()
	if err != nil {
		return false, "", err
	}

	if newRegression {
		reg.Digest = hash
		return true, "", nil
	}

	if hash != reg.Digest {
		return false, fmt.Sprintf("digest mismatch: %s", hash), nil
	}

	return true, "", nil
}

// run the pipeline and return the digest.
func (reg *PanelRegression) run() (string, error) {
	panel, err := specification.SearchPanel(reg.Panel)
	if err != nil {
		return "", err
	}

	cfg := pipeline.DefaultConfig(panel)
	cfg.Mode = reg.Mode
	cfg.Scale = reg.Scale

	dig := digest.NewSink(headless.NewSink(panel.Width, panel.Height, panel.SwapBytes))

	pl, err := pipeline.NewPipeline(cfg, dig, specification.PaletteNES, nil)
	if err != nil {
		return "", err
	}
	if err := pl.Start(); err != nil {
		return "", err
	}

	engine := testcard.NewEngine(0)
	if err := engine.SetFeature(emulation.ReqSetPattern, reg.Pattern); err != nil {
		return "", err
	}

	var src input.Source = input.None{}
	if reg.Macro != "" {
		src, err = macro.NewMacro(reg.Macro, engine, nil)
		if err != nil {
			return "", err
		}
	}
	state := input.NewState()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- pl.Run(ctx)
	}()

	for i := range reg.Frames {
		mask, err := src.Poll()
		if err != nil {
			return "", err
		}
		state.Update(mask)

		engine.Step(state.Held())
		if err := pl.OnFrameReady(engine.Frame()); err != nil {
			return "", err
		}

		// wait for the frame to be presented before producing the next one
		if err := waitPresented(pl, uint64(i+1), done); err != nil {
			return "", err
		}
	}

	cancel()
	if err := <-done; err != nil {
		return "", err
	}

	return dig.Hash(), nil
}

func waitPresented(pl *pipeline.Pipeline, n uint64, done chan error) error {
	timeout := time.After(presentTimeout)
	for pl.Presented() < n {
		select {
		case err := <-done:
			if err == nil {
				err = fmt.Errorf("present task ended early")
			}
			return err
		case <-timeout:
			return fmt.Errorf("frame %d was not presented", n)
		case <-time.After(100 * time.Microsecond):
		}
	}
	return nil
}
