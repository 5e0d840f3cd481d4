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

// Package specification contains the definitions of the panels supported by
// the display pipeline and the colour palette of the source video.
package specification

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/panelpipe/panelpipe/display"
)

// Bus describes how pixels reach a panel. It has no effect on the pipeline
// other than to inform the choice of band height in DirectBlocking mode.
type Bus string

// List of valid Bus values.
const (
	BusParallel16 Bus = "parallel16"
	BusSPI        Bus = "spi"
	BusHost       Bus = "host"
)

// Panel is the definition of a physical display panel.
type Panel struct {
	ID     string
	Width  int
	Height int
	Bus    Bus

	// controllers on a little-endian bus expect the high byte of each RGB565
	// pixel first. pixels handed to the sink for these panels are byte swapped
	SwapBytes bool

	// the brightness to use when the pipeline starts
	Backlight uint8

	// the number of rows transferred in one call to Sink.Transfer() in
	// DirectBlocking mode
	BandHeight int
}

func (p Panel) String() string {
	return fmt.Sprintf("%s (%dx%d %s)", p.ID, p.Width, p.Height, p.Bus)
}

// Background is the colour of the panel outside of the scaled image.
var Background = color.RGBA{R: 24, G: 28, B: 24, A: 255}

// FramesPerSecond is the rate at which the source video is produced.
const FramesPerSecond = 60.0

// The panels supported by the pipeline.
var (
	PanelILI9488 = Panel{
		ID:         "ILI9488",
		Width:      480,
		Height:     320,
		Bus:        BusParallel16,
		SwapBytes:  true,
		Backlight:  255,
		BandHeight: 1,
	}

	PanelILI9341 = Panel{
		ID:         "ILI9341",
		Width:      320,
		Height:     240,
		Bus:        BusSPI,
		SwapBytes:  true,
		Backlight:  255,
		BandHeight: 8,
	}

	PanelST7789 = Panel{
		ID:         "ST7789",
		Width:      240,
		Height:     240,
		Bus:        BusSPI,
		SwapBytes:  true,
		Backlight:  200,
		BandHeight: 8,
	}

	// a window on the host. the window is the same size as the ILI9488 so
	// that the output can be compared directly
	PanelHost = Panel{
		ID:         "HOST",
		Width:      480,
		Height:     320,
		Bus:        BusHost,
		SwapBytes:  false,
		Backlight:  255,
		BandHeight: 320,
	}
)

// PanelList is the list of panels that can be selected by ID.
var PanelList = []string{
	PanelILI9488.ID,
	PanelILI9341.ID,
	PanelST7789.ID,
	PanelHost.ID,
}

var panels = map[string]Panel{
	PanelILI9488.ID: PanelILI9488,
	PanelILI9341.ID: PanelILI9341,
	PanelST7789.ID:  PanelST7789,
	PanelHost.ID:    PanelHost,
}

// SearchPanel returns the Panel with the ID. Matching is case insensitive.
func SearchPanel(id string) (Panel, error) {
	if p, ok := panels[strings.ToUpper(strings.TrimSpace(id))]; ok {
		return p, nil
	}
	return Panel{}, fmt.Errorf("specification: unknown panel %q: %w", id, display.ErrConfiguration)
}
