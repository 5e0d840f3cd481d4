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

// Package glsink implements a display.Sink that shows the panel in an SDL
// window using OpenGL 2.1 for the drawing. It behaves in the same way as the
// sdlsink package but the window can be scaled by any amount without
// involving the SDL renderer.
//
// As with sdlsink, the GRAM of the emulated panel can be written from any
// goroutine but Run() must be called from the main thread.
package glsink

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/gl/v2.1/gl"
	"github.com/panelpipe/panelpipe/logger"
	"github.com/panelpipe/panelpipe/sinks/gram"
	"github.com/panelpipe/panelpipe/sinks/sdlsink"
	"github.com/veandco/go-sdl2/sdl"
)

// ErrNotInitialised is returned by Transfer() and SetBacklight() if Init() has
// not been called.
var ErrNotInitialised = errors.New("glsink: sink not initialised")

// Sink is an emulated panel in an OpenGL window.
type Sink struct {
	window  *sdl.Window
	context sdl.GLContext
	texture uint32

	mem *gram.GRAM

	initialised atomic.Bool
	backlight   atomic.Uint32

	crit     sync.Mutex
	handlers []sdlsink.EventHandler

	quit atomic.Bool
}

// NewSink is the preferred method of initialisation for the Sink type. It
// must be called from the main thread.
func NewSink(title string, width, height, scale int, swapped bool) (*Sink, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("glsink: panel size %dx%d", width, height)
	}
	scale = max(scale, 1)

	err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_JOYSTICK | sdl.INIT_GAMECONTROLLER)
	if err != nil {
		return nil, fmt.Errorf("glsink: %w", err)
	}

	_ = sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 2)
	_ = sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 1)
	_ = sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)

	s := &Sink{
		mem: gram.NewGRAM(width, height, swapped),
	}

	s.window, err = sdl.CreateWindow(title,
		int32(sdl.WINDOWPOS_UNDEFINED), int32(sdl.WINDOWPOS_UNDEFINED),
		int32(width*scale), int32(height*scale),
		uint32(sdl.WINDOW_OPENGL|sdl.WINDOW_RESIZABLE|sdl.WINDOW_ALLOW_HIGHDPI))
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("glsink: %w", err)
	}

	s.context, err = s.window.GLCreateContext()
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("glsink: %w", err)
	}
	err = s.window.GLMakeCurrent(s.context)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("glsink: %w", err)
	}
	_ = sdl.GLSetSwapInterval(1)

	err = gl.Init()
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("glsink: %w", err)
	}

	logger.Logf(logger.Allow, "sink", "gl vendor: %s", gl.GoStr(gl.GetString(gl.VENDOR)))
	logger.Logf(logger.Allow, "sink", "gl renderer: %s", gl.GoStr(gl.GetString(gl.RENDERER)))
	logger.Logf(logger.Allow, "sink", "gl driver: %s", gl.GoStr(gl.GetString(gl.VERSION)))

	gl.GenTextures(1, &s.texture)
	gl.BindTexture(gl.TEXTURE_2D, s.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 2)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGB, int32(width), int32(height), 0,
		gl.RGB, gl.UNSIGNED_SHORT_5_6_5, nil)

	return s, nil
}

// Close destroys the window. It must be called from the main thread.
func (s *Sink) Close() error {
	if s.texture != 0 {
		gl.DeleteTextures(1, &s.texture)
		s.texture = 0
	}
	if s.context != nil {
		sdl.GLDeleteContext(s.context)
		s.context = nil
	}
	if s.window != nil {
		_ = s.window.Destroy()
		s.window = nil
	}
	sdl.Quit()
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
		return fmt.Errorf("glsink: %w", err)
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

// AddEventHandler adds a handler to the list of handlers that see events
// received by the window.
func (s *Sink) AddEventHandler(h sdlsink.EventHandler) {
	s.crit.Lock()
	defer s.crit.Unlock()
	s.handlers = append(s.handlers, h)
}

// Quit returns true once the window has been closed.
func (s *Sink) Quit() bool {
	return s.quit.Load()
}

// Run services the window until the context is cancelled or the window is
// closed. It must be called from the main thread.
func (s *Sink) Run(ctx context.Context) error {
	tck := time.NewTicker(time.Second / sdlsink.RefreshRate)
	defer tck.Stop()

	for {
		if err := s.Service(); err != nil {
			return err
		}
		if s.Quit() {
			logger.Log(logger.Allow, "sink", "gl window closed")
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-tck.C:
		}
	}
}

// Service handles pending window events and redraws the window. It must be
// called from the main thread.
func (s *Sink) Service() error {
	s.crit.Lock()
	handlers := s.handlers
	s.crit.Unlock()

	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		switch ev := ev.(type) {
		case *sdl.QuitEvent:
			s.quit.Store(true)
			continue
		case *sdl.KeyboardEvent:
			if ev.Type == sdl.KEYUP && ev.Keysym.Scancode == sdl.SCANCODE_ESCAPE {
				s.quit.Store(true)
				continue
			}
		}

		for _, h := range handlers {
			if h.HandleEvent(ev) {
				break
			}
		}
	}

	gl.BindTexture(gl.TEXTURE_2D, s.texture)
	_ = s.mem.Flush(func(pix []uint16, stride int, y0 int, y1 int) error {
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, int32(y0), int32(stride), int32(y1-y0),
			gl.RGB, gl.UNSIGNED_SHORT_5_6_5, gl.Ptr(pix))
		return nil
	})

	winW, winH := s.window.GLGetDrawableSize()
	panelW, panelH := s.mem.Size()
	x, y, w, h := letterbox(winW, winH, int32(panelW), int32(panelH))

	gl.Viewport(0, 0, winW, winH)
	gl.ClearColor(0.0, 0.0, 0.0, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.Viewport(x, y, w, h)

	// the backlight modulates the texture colour
	level := float32(s.backlight.Load()) / 255.0
	gl.Enable(gl.TEXTURE_2D)
	gl.TexEnvi(gl.TEXTURE_ENV, gl.TEXTURE_ENV_MODE, gl.MODULATE)
	gl.Color3f(level, level, level)

	// texture coordinates are flipped vertically because the first row of
	// the GRAM is the top of the panel
	gl.Begin(gl.QUADS)
	gl.TexCoord2f(0, 1)
	gl.Vertex2f(-1, -1)
	gl.TexCoord2f(1, 1)
	gl.Vertex2f(1, -1)
	gl.TexCoord2f(1, 0)
	gl.Vertex2f(1, 1)
	gl.TexCoord2f(0, 0)
	gl.Vertex2f(-1, 1)
	gl.End()

	gl.Disable(gl.TEXTURE_2D)

	s.window.GLSwap()

	return nil
}

// letterbox returns the largest area of the window with the same aspect
// ratio as the panel, centred in the window.
func letterbox(winW, winH, panelW, panelH int32) (int32, int32, int32, int32) {
	if winW <= 0 || winH <= 0 || panelW <= 0 || panelH <= 0 {
		return 0, 0, 0, 0
	}
	w := winW
	h := int32(int64(w) * int64(panelH) / int64(panelW))
	if h > winH {
		h = winH
		w = int32(int64(h) * int64(panelW) / int64(panelH))
	}
	return (winW - w) / 2, (winH - h) / 2, w, h
}
