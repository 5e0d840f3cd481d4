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

// Package pipeline connects a video source to a display panel. The Pipeline
// type is the single context object for the display side of the program. It
// owns the scaling table, the palette cache, the frame buffers and the present
// task, and it is explicitly constructed with NewPipeline(). There are no
// package level variables.
//
// The producer (normally the emulation engine) calls OnFrameReady() once for
// every completed source frame. What happens next depends on the present
// mode.
//
// In DirectBlocking mode the frame is scaled band by band and each band is
// transferred to the sink before OnFrameReady() returns. Run() does nothing
// other than wait for the context to be cancelled.
//
// In DoubleBufferedAsync mode the frame is scaled into a buffer from the pool
// and published. OnFrameReady() returns immediately and never waits for the
// sink. Run() must be called on another goroutine. It presents the most
// recently published buffer every time the producer signals that one is
// ready. Frames that are published faster than the sink can accept them are
// dropped.
//
//	p, err := pipeline.NewPipeline(cfg, sink, specification.PaletteNES, nil)
//	if err != nil {
//		return err
//	}
//	if err := p.Start(); err != nil {
//		return err
//	}
//	go p.Run(ctx)
//	engine.Run(ctx, p, buttons)
package pipeline
