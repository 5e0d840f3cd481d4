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

// Package framebuffer implements the pool of destination buffers that are
// shared between the producer of frames and the present task, along with the
// single slot handoff between them.
//
// Each buffer moves through the following states:
//
//	Idle -> Writable -> Pending -> Readable -> Idle
//
// The producer calls Acquire() to take a buffer for writing and Publish() to
// place it in the handoff slot. The present task waits on Ready(), calls
// Take() to move the buffer in the slot to the Readable state and Done() when
// it has finished with it.
//
// The producer never waits for the present task. If no buffer is Idle when
// the producer calls Acquire() then the buffer in the handoff slot is
// retracted and given back to the producer. The frame in that buffer is
// dropped without ever being presented. Similarly, if the producer publishes
// a buffer while an earlier buffer is still waiting in the slot then the
// earlier buffer is returned to the Idle state and its frame is dropped.
//
// Ownership of a buffer is transferred with atomic operations only. The
// pixels of a buffer are never locked because no buffer is ever owned by the
// producer and the present task at the same time.
package framebuffer
