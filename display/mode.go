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
	"fmt"
	"strings"
)

// PresentMode selects how scaled frames reach the Sink.
type PresentMode int

// List of valid PresentMode values.
const (
	// the producer scales the frame one band at a time and transfers each band
	// to the sink itself. the producer is blocked for the duration of the
	// transfer and there is no frame buffer pool
	DirectBlocking PresentMode = iota

	// the producer scales the frame into a buffer from the pool and publishes
	// it to the present task, which transfers it to the sink from its own
	// goroutine. the producer never waits for the sink
	DoubleBufferedAsync
)

func (m PresentMode) String() string {
	switch m {
	case DirectBlocking:
		return "direct"
	case DoubleBufferedAsync:
		return "async"
	}
	return fmt.Sprintf("PresentMode(%d)", int(m))
}

// PresentModeList is the list of names accepted by ParsePresentMode().
var PresentModeList = []string{DirectBlocking.String(), DoubleBufferedAsync.String()}

// ParsePresentMode returns the PresentMode for the name. Matching is case
// insensitive.
func ParsePresentMode(s string) (PresentMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "direct", "directblocking":
		return DirectBlocking, nil
	case "async", "doublebufferedasync", "double":
		return DoubleBufferedAsync, nil
	}
	return DirectBlocking, fmt.Errorf("display: unknown present mode %q: %w", s, ErrConfiguration)
}
