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

// Package preferences collates the preference values used to build a
// pipeline, its panel and its input source. Values are stored on disk with
// the prefs package and can be overridden from the command line with the
// prefs command line stack.
package preferences

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/panelpipe/panelpipe/display"
	"github.com/panelpipe/panelpipe/display/specification"
	"github.com/panelpipe/panelpipe/emulation/testcard"
	"github.com/panelpipe/panelpipe/input"
	"github.com/panelpipe/panelpipe/input/gamepad"
	"github.com/panelpipe/panelpipe/input/joystick"
	"github.com/panelpipe/panelpipe/logger"
	"github.com/panelpipe/panelpipe/paths"
	"github.com/panelpipe/panelpipe/pipeline"
	"github.com/panelpipe/panelpipe/prefs"
)

// DefaultPrefsFile is the name of the preferences file in the resource
// directory.
const DefaultPrefsFile = "prefs"

// Preferences defines and collates all the preference values.
type Preferences struct {
	dsk  *prefs.Disk
	path string

	// panel
	Panel     prefs.String
	Backlight prefs.Int

	// pipeline
	Mode       prefs.String
	Scale      prefs.String
	Buffers    prefs.Int
	BandHeight prefs.Int
	Overlay    prefs.Bool

	// engine
	FPS     prefs.Float
	Pattern prefs.String

	// input
	Input        prefs.String
	Cadence      prefs.Duration
	TTY          prefs.String
	Deadzone     prefs.Int
	Mapping      prefs.String
	UseDPad      prefs.Bool
	AnalogAsDPad prefs.Bool
	Triggers     prefs.Bool
}

func (p *Preferences) String() string {
	return p.dsk.String()
}

// NewPreferences is the preferred method of initialisation for the
// Preferences type. If the path is empty the preferences file in the
// resource directory is used.
func NewPreferences(path string) (*Preferences, error) {
	p := &Preferences{}
	if err := p.SetDefaults(); err != nil {
		return nil, err
	}

	if path == "" {
		path = paths.ResourcePath(DefaultPrefsFile)
	}

	p.path = path

	var err error
	p.dsk, err = prefs.NewDisk(path)
	if err != nil {
		return nil, fmt.Errorf("preferences: %w", err)
	}

	for _, e := range []struct {
		key  string
		pref prefs.Pref
	}{
		{"panel.id", &p.Panel},
		{"panel.backlight", &p.Backlight},
		{"pipeline.mode", &p.Mode},
		{"pipeline.scale", &p.Scale},
		{"pipeline.buffers", &p.Buffers},
		{"pipeline.band", &p.BandHeight},
		{"pipeline.overlay", &p.Overlay},
		{"engine.fps", &p.FPS},
		{"engine.pattern", &p.Pattern},
		{"input.source", &p.Input},
		{"input.cadence", &p.Cadence},
		{"input.tty", &p.TTY},
		{"input.joystick.deadzone", &p.Deadzone},
		{"input.joystick.mapping", &p.Mapping},
		{"input.joystick.dpad", &p.UseDPad},
		{"input.gamepad.analog", &p.AnalogAsDPad},
		{"input.gamepad.triggers", &p.Triggers},
	} {
		if err := p.dsk.Add(e.key, e.pref); err != nil {
			return nil, fmt.Errorf("preferences: %w", err)
		}
	}

	if err := p.dsk.Load(); err != nil {
		return nil, fmt.Errorf("preferences: %w", err)
	}

	return p, nil
}

// SetDefaults reverts all preferences to their default values. A backlight
// or band height of zero means the value from the panel specification.
func (p *Preferences) SetDefaults() error {
	for _, err := range []error{
		p.Panel.Set(specification.PanelILI9488.ID),
		p.Backlight.Set(0),
		p.Mode.Set(display.DoubleBufferedAsync.String()),
		p.Scale.Set(pipeline.Stretch.String()),
		p.Buffers.Set(2),
		p.BandHeight.Set(0),
		p.Overlay.Set(false),
		p.FPS.Set(specification.FramesPerSecond),
		p.Pattern.Set(testcard.Bars.String()),
		p.Input.Set("none"),
		p.Cadence.Set(input.DefaultCadence),
		p.TTY.Set(""),
		p.Deadzone.Set(joystick.DefaultConfig().Deadzone),
		p.Mapping.Set(joystick.Deadzone.String()),
		p.UseDPad.Set(false),
		p.AnalogAsDPad.Set(false),
		p.Triggers.Set(false),
	} {
		if err != nil {
			return fmt.Errorf("preferences: %w", err)
		}
	}
	return nil
}

// Load preferences from disk.
func (p *Preferences) Load() error {
	return p.dsk.Load()
}

// Save current preferences to disk.
func (p *Preferences) Save() error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o700); err != nil {
		return fmt.Errorf("preferences: %w", err)
	}
	return p.dsk.Save()
}

// PipelineConfig returns the pipeline configuration described by the
// preferences. Errors wrap display.ErrConfiguration.
func (p *Preferences) PipelineConfig() (pipeline.Config, error) {
	panel, err := specification.SearchPanel(p.Panel.String())
	if err != nil {
		return pipeline.Config{}, fmt.Errorf("preferences: %w", err)
	}

	cfg := pipeline.DefaultConfig(panel)

	cfg.Mode, err = display.ParsePresentMode(p.Mode.String())
	if err != nil {
		return pipeline.Config{}, fmt.Errorf("preferences: %w", err)
	}
	cfg.Scale, err = pipeline.ParseScaleMode(p.Scale.String())
	if err != nil {
		return pipeline.Config{}, fmt.Errorf("preferences: %w", err)
	}

	cfg.Buffers = p.Buffers.Get().(int)
	if b := p.BandHeight.Get().(int); b > 0 {
		cfg.BandHeight = b
	}

	if b := p.Backlight.Get().(int); b > 0 {
		if b > 255 {
			return pipeline.Config{}, fmt.Errorf("preferences: backlight %d: %w", b, display.ErrConfiguration)
		}
		cfg.Backlight = uint8(b)
	}

	cfg.Overlay = p.Overlay.Get().(bool)

	return cfg, nil
}

// JoystickConfig returns the joystick configuration described by the
// preferences.
func (p *Preferences) JoystickConfig() (joystick.Config, error) {
	cfg := joystick.DefaultConfig()

	var err error
	cfg.Mapping, err = joystick.ParseMapping(p.Mapping.String())
	if err != nil {
		return cfg, fmt.Errorf("preferences: %w", err)
	}
	cfg.Deadzone = p.Deadzone.Get().(int)
	cfg.UseDPad = p.UseDPad.Get().(bool)

	return cfg, nil
}

// GamepadOptions returns the gamepad options described by the preferences.
func (p *Preferences) GamepadOptions() gamepad.Options {
	opts := gamepad.DefaultOptions()
	opts.AnalogAsDPad = p.AnalogAsDPad.Get().(bool)
	opts.Triggers = p.Triggers.Get().(bool)
	return opts
}

// BindPoller sets the cadence of the poller and changes it whenever the
// Cadence preference changes.
func (p *Preferences) BindPoller(poller *input.Poller) {
	poller.SetCadence(p.Cadence.Get().(time.Duration))
	p.Cadence.SetHookPost(func(v prefs.Value) error {
		d := v.(time.Duration)
		poller.SetCadence(d)
		logger.Logf(logger.Allow, "prefs", "input cadence: %v", d)
		return nil
	})
}
