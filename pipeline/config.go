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

package pipeline

import (
	"fmt"
	"strings"

	"github.com/panelpipe/panelpipe/display"
	"github.com/panelpipe/panelpipe/display/specification"
)

// ScaleMode decides the size of the destination image when it is not given
// explicitly.
type ScaleMode int

// List of valid ScaleMode values.
const (
	// the destination image fills the panel
	Stretch ScaleMode = iota

	// the destination image is as large as possible while keeping the
	// proportions of the source frame. it is centred on the panel
	Aspect
)

func (m ScaleMode) String() string {
	switch m {
	case Stretch:
		return "stretch"
	case Aspect:
		return "aspect"
	}
	return "unknown scale mode"
}

// ScaleModeList is the list of ScaleMode values as strings.
var ScaleModeList = []string{Stretch.String(), Aspect.String()}

// ParseScaleMode converts a string to a ScaleMode. Matching is case
// insensitive.
func ParseScaleMode(s string) (ScaleMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stretch":
		return Stretch, nil
	case "aspect":
		return Aspect, nil
	}
	return Stretch, fmt.Errorf("pipeline: unknown scale mode %q: %w", s, display.ErrConfiguration)
}

// Config for a new Pipeline.
type Config struct {
	Panel specification.Panel

	// size of the source frame. zero values mean SourceWidth and SourceHeight
	SourceWidth  int
	SourceHeight int

	// size of the destination image. zero values mean that the size is
	// decided by the Scale field
	DestWidth  int
	DestHeight int
	Scale      ScaleMode

	Mode display.PresentMode

	// number of buffers in the pool. only used in DoubleBufferedAsync mode
	Buffers int

	// number of rows in each transfer. only used in DirectBlocking mode
	BandHeight int

	Backlight uint8

	// byte swap pixels for the panel bus
	Swap bool

	// draw the measured frame rate over the image
	Overlay bool
}

// DefaultConfig returns the configuration for the panel with all other
// fields set to their default values.
func DefaultConfig(panel specification.Panel) Config {
	return Config{
		Panel:        panel,
		SourceWidth:  display.SourceWidth,
		SourceHeight: display.SourceHeight,
		Scale:        Stretch,
		Mode:         display.DoubleBufferedAsync,
		Buffers:      2,
		BandHeight:   panel.BandHeight,
		Backlight:    panel.Backlight,
		Swap:         panel.SwapBytes,
	}
}

// aspectFit returns the largest size with the proportions of the source that
// fits inside the panel.
func aspectFit(srcW, srcH, panelW, panelH int) (int, int) {
	if panelW*srcH <= panelH*srcW {
		return panelW, panelW * srcH / srcW
	}
	return panelH * srcW / srcH, panelH
}

// resolve fills in derived values and checks that the configuration is usable.
// A copy of the configuration is returned.
func (cfg Config) resolve() (Config, error) {
	if cfg.Panel.Width <= 0 || cfg.Panel.Height <= 0 {
		return cfg, fmt.Errorf("pipeline: panel is %dx%d: %w", cfg.Panel.Width, cfg.Panel.Height, display.ErrConfiguration)
	}

	if cfg.SourceWidth == 0 {
		cfg.SourceWidth = display.SourceWidth
	}
	if cfg.SourceHeight == 0 {
		cfg.SourceHeight = display.SourceHeight
	}
	if cfg.SourceWidth < 0 || cfg.SourceHeight < 0 {
		return cfg, fmt.Errorf("pipeline: source is %dx%d: %w", cfg.SourceWidth, cfg.SourceHeight, display.ErrConfiguration)
	}

	if cfg.DestWidth == 0 && cfg.DestHeight == 0 {
		switch cfg.Scale {
		case Stretch:
			cfg.DestWidth, cfg.DestHeight = cfg.Panel.Width, cfg.Panel.Height
		case Aspect:
			cfg.DestWidth, cfg.DestHeight = aspectFit(cfg.SourceWidth, cfg.SourceHeight, cfg.Panel.Width, cfg.Panel.Height)
		default:
			return cfg, fmt.Errorf("pipeline: %v: %w", cfg.Scale, display.ErrConfiguration)
		}
	}
	if cfg.DestWidth <= 0 || cfg.DestHeight <= 0 {
		return cfg, fmt.Errorf("pipeline: destination is %dx%d: %w", cfg.DestWidth, cfg.DestHeight, display.ErrConfiguration)
	}
	if cfg.DestWidth > cfg.Panel.Width || cfg.DestHeight > cfg.Panel.Height {
		return cfg, fmt.Errorf("pipeline: destination %dx%d is larger than panel %v: %w",
			cfg.DestWidth, cfg.DestHeight, cfg.Panel, display.ErrConfiguration)
	}

	switch cfg.Mode {
	case display.DirectBlocking:
		if cfg.BandHeight == 0 {
			cfg.BandHeight = 1
		}
		cfg.BandHeight = min(cfg.BandHeight, cfg.DestHeight)
		if cfg.BandHeight < 0 {
			return cfg, fmt.Errorf("pipeline: band height %d: %w", cfg.BandHeight, display.ErrConfiguration)
		}
	case display.DoubleBufferedAsync:
		if cfg.Buffers == 0 {
			cfg.Buffers = 2
		}
		if cfg.Buffers < 2 {
			return cfg, fmt.Errorf("pipeline: %d buffers: %w", cfg.Buffers, display.ErrConfiguration)
		}
	default:
		return cfg, fmt.Errorf("pipeline: %v: %w", cfg.Mode, display.ErrConfiguration)
	}

	return cfg, nil
}
