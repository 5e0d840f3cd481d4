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

// Package ebitensink implements a display.Sink that shows the panel in a
// window created by Ebitengine.
//
// Ebitengine owns the main thread once RunGame() has been called so, like
// the SDL sinks, the panel contents are held in a GRAM that can be written
// from any goroutine. The Draw() function of the game converts the rows that
// have changed since the previous frame.
package ebitensink

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/panelpipe/panelpipe/logger"
	"github.com/panelpipe/panelpipe/sinks/gram"
)

// ErrNotInitialised is returned by Transfer() and SetBacklight() if Init() has
// not been called.
var ErrNotInitialised = errors.New("ebitensink: sink not initialised")

// Sink is an emulated panel in an Ebitengine window. It implements the
// ebiten.Game interface.
type Sink struct {
	title string
	scale int

	mem *gram.GRAM

	initialised atomic.Bool
	backlight   atomic.Uint32

	// staging is the RGBA copy of the GRAM. it is only accessed by Draw()
	staging []byte
	image   *ebiten.Image
	opts    ebiten.DrawImageOptions

	ctx context.Context
}

// NewSink is the preferred method of initialisation for the Sink type.
func NewSink(title string, width, height, scale int, swapped bool) (*Sink, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("ebitensink: panel size %dx%d", width, height)
	}
	return &Sink{
		title:   title,
		scale:   max(scale, 1),
		mem:     gram.NewGRAM(width, height, swapped),
		staging: make([]byte, width*height*4),
		ctx:     context.Background(),
	}, nil
}

// Close releases the panel image. The window itself is closed when Run()
// returns. Transfers made after Close() fail with ErrNotInitialised.
func (s *Sink) Close() error {
	s.initialised.Store(false)
	s.image = nil
	return nil
}

// Init implements the display.Sink interface.
func (s *Sink) Init() error {
	s.mem.Fill(0)
	s.initialised.Store(true)
	return nil
}

// Transfer implements the display.Sink interface.
func (s *Sink) Transfer(pix []uint16, w, h, x, y int) error {
	if !s.initialised.Load() {
		return ErrNotInitialised
	}
	if err := s.mem.Write(pix, w, h, x, y); err != nil {
		return fmt.Errorf("ebitensink: %w", err)
	}
	return nil
}

// SetBacklight implements the display.Sink interface.
func (s *Sink) SetBacklight(level uint8) error {
	if !s.initialised.Load() {
		return ErrNotInitialised
	}
	s.backlight.Store(uint32(level))
	return nil
}

// Size implements the display.Sink interface.
func (s *Sink) Size() (int, int) {
	return s.mem.Size()
}

// Run opens the window and runs the game loop until the context is cancelled
// or the window is closed. It must be called from the main thread.
func (s *Sink) Run(ctx context.Context) error {
	s.ctx = ctx

	w, h := s.mem.Size()
	ebiten.SetWindowSize(w*s.scale, h*s.scale)
	ebiten.SetWindowTitle(s.title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetVsyncEnabled(true)

	logger.Logf(logger.Allow, "sink", "ebiten window %dx%d (scale %d)", w, h, s.scale)

	err := ebiten.RunGame(s)
	if err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("ebitensink: %w", err)
	}

	logger.Log(logger.Allow, "sink", "ebiten window closed")
	return nil
}

// Update implements the ebiten.Game interface.
func (s *Sink) Update() error {
	if s.ctx.Err() != nil {
		return ebiten.Termination
	}
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	return nil
}

// Draw implements the ebiten.Game interface.
func (s *Sink) Draw(screen *ebiten.Image) {
	w, h := s.mem.Size()
	if s.image == nil {
		s.image = ebiten.NewImage(w, h)
	}

	_ = s.mem.Flush(func(pix []uint16, stride int, y0 int, y1 int) error {
		gram.RGBA(s.staging[y0*stride*4:y1*stride*4], pix, 255)
		sub := s.image.SubImage(image.Rect(0, y0, stride, y1)).(*ebiten.Image)
		sub.WritePixels(s.staging[y0*stride*4 : y1*stride*4])
		return nil
	})

	level := float32(s.backlight.Load()) / 255.0
	s.opts.ColorScale.Reset()
	s.opts.ColorScale.Scale(level, level, level, 1.0)
	screen.DrawImage(s.image, &s.opts)
}

// Layout implements the ebiten.Game interface.
func (s *Sink) Layout(_, _ int) (int, int) {
	return s.mem.Size()
}
