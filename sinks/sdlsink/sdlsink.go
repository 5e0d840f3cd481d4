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

// Package sdlsink implements a display.Sink that shows the panel in an SDL
// window on the host.
//
// SDL requires that the window is serviced by the main thread of the program.
// The Sink therefore keeps the contents of the emulated panel in a GRAM that
// can be written from any goroutine. The main thread calls Run(), which
// handles window events and refreshes the window from the GRAM.
//
//	func main() {
//		runtime.LockOSThread()
//
//		sink, err := sdlsink.NewSink("panel", 320, 240, 2, false)
//		...
//		go pipeline.Run(ctx)
//		err = sink.Run(ctx)
//	}
package sdlsink

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panelpipe/panelpipe/logger"
	"github.com/panelpipe/panelpipe/sinks/gram"
	"github.com/veandco/go-sdl2/sdl"
)

// ErrNotInitialised is returned by Transfer() and SetBacklight() if Init() has
// not been called.
var ErrNotInitialised = errors.New("sdlsink: sink not initialised")

// EventHandler is implemented by types that want to see the events received
// by the window. Input sources that read the host keyboard or gamepads are
// the main users.
type EventHandler interface {
	// HandleEvent returns true if the event has been consumed. Consumed
	// events are not passed to any other handler.
	HandleEvent(ev sdl.Event) bool
}

// RefreshRate is the rate at which Run() refreshes the window.
const RefreshRate = 60

// Sink is an emulated panel in an SDL window.
type Sink struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture

	mem *gram.GRAM

	initialised atomic.Bool
	backlight   atomic.Uint32

	// the backlight level most recently applied to the texture. only
	// accessed by the main thread
	applied int

	crit     sync.Mutex
	handlers []EventHandler

	quit atomic.Bool
}

// NewSink is the preferred method of initialisation for the Sink type. It
// must be called from the main thread.
//
// The window is the size of the panel multiplied by scale. If swapped is true
// then the pixels transferred to the sink are byte swapped.
func NewSink(title string, width, height, scale int, swapped bool) (*Sink, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("sdlsink: panel size %dx%d", width, height)
	}
	scale = max(scale, 1)

	err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_JOYSTICK | sdl.INIT_GAMECONTROLLER)
	if err != nil {
		return nil, fmt.Errorf("sdlsink: %w", err)
	}

	s := &Sink{
		mem:     gram.NewGRAM(width, height, swapped),
		applied: -1,
	}

	s.window, err = sdl.CreateWindow(title,
		int32(sdl.WINDOWPOS_UNDEFINED), int32(sdl.WINDOWPOS_UNDEFINED),
		int32(width*scale), int32(height*scale),
		uint32(sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE))
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("sdlsink: %w", err)
	}

	s.renderer, err = sdl.CreateRenderer(s.window, -1, uint32(sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC))
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("sdlsink: %w", err)
	}

	// the logical size keeps the aspect ratio of the panel when the window is
	// resized
	err = s.renderer.SetLogicalSize(int32(width), int32(height))
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("sdlsink: %w", err)
	}

	s.texture, err = s.renderer.CreateTexture(uint32(sdl.PIXELFORMAT_RGB565), int(sdl.TEXTUREACCESS_STREAMING),
		int32(width), int32(height))
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("sdlsink: %w", err)
	}

	logger.Logf(logger.Allow, "sink", "sdl window %dx%d (scale %d)", width, height, scale)

	return s, nil
}

// Close destroys the window. It must be called from the main thread.
func (s *Sink) Close() error {
	if s.texture != nil {
		_ = s.texture.Destroy()
		s.texture = nil
	}
	if s.renderer != nil {
		_ = s.renderer.Destroy()
		s.renderer = nil
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
		return fmt.Errorf("sdlsink: %w", err)
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
// received by the window. Handlers are called in the order they are added
// and always from the main thread.
func (s *Sink) AddEventHandler(h EventHandler) {
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
	tck := time.NewTicker(time.Second / RefreshRate)
	defer tck.Stop()

	for {
		if err := s.Service(); err != nil {
			return err
		}
		if s.Quit() {
			logger.Log(logger.Allow, "sink", "sdl window closed")
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-tck.C:
		}
	}
}

// Service handles pending window events and refreshes the window if the
// panel has changed. It must be called from the main thread.
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

	if level := int(s.backlight.Load()); level != s.applied {
		s.applied = level
		if err := s.texture.SetColorMod(uint8(level), uint8(level), uint8(level)); err != nil {
			return fmt.Errorf("sdlsink: %w", err)
		}
	}

	err := s.mem.Flush(s.upload)
	if err != nil {
		return fmt.Errorf("sdlsink: %w", err)
	}

	_ = s.renderer.SetDrawColor(0, 0, 0, 255)
	if err := s.renderer.Clear(); err != nil {
		return fmt.Errorf("sdlsink: %w", err)
	}
	if err := s.renderer.Copy(s.texture, nil, nil); err != nil {
		return fmt.Errorf("sdlsink: %w", err)
	}
	s.renderer.Present()

	return nil
}

// upload copies rows from the GRAM to the texture.
func (s *Sink) upload(pix []uint16, stride int, y0 int, y1 int) error {
	rect := &sdl.Rect{X: 0, Y: int32(y0), W: int32(stride), H: int32(y1 - y0)}
	dst, pitch, err := s.texture.Lock(rect)
	if err != nil {
		return err
	}
	pack(dst, pitch, pix, stride, y1-y0)
	s.texture.Unlock()
	return nil
}

// pack copies rows of RGB565 pixels to a byte slice with the given pitch.
func pack(dst []byte, pitch int, pix []uint16, stride int, rows int) {
	for r := range rows {
		row := dst[r*pitch : r*pitch+stride*2]
		for i, v := range pix[r*stride : (r+1)*stride] {
			binary.NativeEndian.PutUint16(row[i*2:], v)
		}
	}
}
