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
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/panelpipe/panelpipe/logger"
)

// DefaultCadence is the time between polls if no other value is configured.
const DefaultCadence = 10 * time.Millisecond

// Poller reads a Source at a regular interval and updates a State. The
// cadence is independent of the video pipeline.
type Poller struct {
	source Source
	state  *State

	cadence atomic.Int64
	changed chan struct{}

	polls  atomic.Uint64
	errors atomic.Uint64
}

// NewPoller is the preferred method of initialisation for the Poller type. A
// cadence of zero or less means DefaultCadence.
func NewPoller(source Source, state *State, cadence time.Duration) *Poller {
	p := &Poller{
		source:  source,
		state:   state,
		changed: make(chan struct{}, 1),
	}
	p.SetCadence(cadence)
	return p
}

// SetCadence changes the time between polls. It can be called from any
// goroutine, including while Run() is active. A cadence of zero or less means
// DefaultCadence.
func (p *Poller) SetCadence(cadence time.Duration) {
	if cadence <= 0 {
		cadence = DefaultCadence
	}
	p.cadence.Store(int64(cadence))
	select {
	case p.changed <- struct{}{}:
	default:
	}
}

// Cadence returns the time between polls.
func (p *Poller) Cadence() time.Duration {
	return time.Duration(p.cadence.Load())
}

// Poll the source once and update the state. If the source returns an error
// the state is not changed, unless the source has been lost in which case
// every button is released.
func (p *Poller) Poll() error {
	p.polls.Add(1)

	mask, err := p.source.Poll()
	if err != nil {
		p.errors.Add(1)
		if errors.Is(err, ErrSourceLost) {
			p.state.Update(AllReleased)
		}
		return fmt.Errorf("input: %w", err)
	}

	p.state.Update(mask)
	if pressed := p.state.Pressed(); pressed != 0 {
		logger.Logf(logger.Allow, "input", "pressed %s", Names(pressed))
	}

	return nil
}

// Run polls the source until the context is cancelled or the source reports
// that it has been lost. Other errors are logged and polling continues. When
// the source is lost the state is left with every button released.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.Cadence())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-p.changed:
			ticker.Reset(p.Cadence())
		case <-ticker.C:
			if err := p.Poll(); err != nil {
				if errors.Is(err, ErrSourceLost) {
					return err
				}
				logger.Log(logger.Allow, "input", err)
			}
		}
	}
}

// Polls returns the number of times the source has been polled.
func (p *Poller) Polls() uint64 {
	return p.polls.Load()
}

// Errors returns the number of polls that failed.
func (p *Poller) Errors() uint64 {
	return p.errors.Load()
}
