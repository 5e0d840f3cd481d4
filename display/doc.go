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

// Package display defines the types shared by every part of the display
// pipeline: the indexed colour source frame, the presentation mode, the Sink
// interface implemented by panel drivers and the error values that the
// pipeline can return.
//
// The pipeline itself is assembled in the pipeline package from the
// sub-packages of this package:
//
//	palette       index to panel colour lookup
//	scaler        nearest-neighbour coordinate tables and frame scaling
//	framebuffer   destination buffers and the producer/consumer handoff
//	fps           frame rate measurement and producer pacing
//	present       the task that drains the handoff into a Sink
//	overlay       on-screen frame rate display
//	specification source geometry and panel definitions
package display
