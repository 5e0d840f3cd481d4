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

package input

import (
	"errors"
	"sync/atomic"

	"github.com/panelpipe/panelpipe/logger"
)

// ErrSourceLost is wrapped by errors from a Source that can not recover. The
// Poller stops when it sees one.
var ErrSourceLost = errors.New("input: source lost")

// Source is implemented by every input backend.
type Source interface {
	// Poll returns the current mask. A zero bit means that the button is
	// pressed. A source that has nothing to report returns AllReleased.
	Poll() (uint32, error)
}

// Closer is implemented by sources that hold OS resources.
type Closer interface {
	Close() error
}

// None is a Source with no buttons.
type None struct{}

// Poll implements the Source interface.
func (None) Poll() (uint32, error) {
	return AllReleased, nil
}

// SourceFunc allows an ordinary function to be used as a Source.
type SourceFunc func() (uint32, error)

// Poll implements the Source interface.
func (f SourceFunc) Poll() (uint32, error) {
	return f()
}

// Static is a Source whose mask is set directly. It can be shared between
// goroutines.
type Static struct {
	mask atomic.Uint32
}

// NewStatic returns a Static source with no buttons pressed.
func NewStatic() *Static {
	s := &Static{}
	s.mask.Store(AllReleased)
	return s
}

// Set the mask that will be returned by Poll().
func (s *Static) Set(mask uint32) {
	s.mask.Store(mask)
}

// Poll implements the Source interface.
func (s *Static) Poll() (uint32, error) {
	return s.mask.Load(), nil
}

// Merge combines several sources. A button is pressed if it is pressed in any
// source that polled without error. Errors from individual sources are logged
// and the source counts as having no buttons pressed. An error is only
// returned when every source fails.
type Merge []Source

// Poll implements the Source interface.
func (m Merge) Poll() (uint32, error) {
	mask := AllReleased
	var errs []error
	for _, src := range m {
		v, err := src.Poll()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		mask &= v
	}

	if len(errs) == 0 {
		return mask, nil
	}

	err := errors.Join(errs...)
	if len(errs) == len(m) {
		return AllReleased, err
	}

	logger.Log(logger.Allow, "input", err)
	return mask, nil
}

// Close any source that implements the Closer interface.
func (m Merge) Close() error {
	var errs []error
	for _, src := range m {
		if c, ok := src.(Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
