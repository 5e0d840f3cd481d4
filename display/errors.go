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

package display

import (
	"errors"
	"fmt"
)

// ErrConfiguration is wrapped by every error that indicates the pipeline has
// been misconfigured: zero or invalid display dimensions, a missing palette,
// an unknown panel, etc. These errors are fatal and are only ever returned
// during initialisation.
var ErrConfiguration = errors.New("configuration error")

// ErrFrameGeometry is returned when a source frame is smaller than the source
// geometry the pipeline was configured for. Nothing is written to the
// destination when this error is returned.
var ErrFrameGeometry = errors.New("frame geometry")

// TransferError wraps an error returned by a Sink. A TransferError is
// recoverable: the frame being transferred is dropped and the pipeline
// continues with the next frame.
type TransferError struct {
	// the number of the frame that was being transferred
	Frame uint64
	Err   error
}

func (e TransferError) Error() string {
	return fmt.Sprintf("transfer of frame %d: %v", e.Frame, e.Err)
}

func (e TransferError) Unwrap() error {
	return e.Err
}
