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

package keyboard

import (
	"fmt"

	"github.com/pkg/term"
)

// DefaultBaud is the speed of the serial bridge if no other is given.
const DefaultBaud = 115200

// TTY is a keyboard connected through a serial port. Bytes received from a
// CardKB bridge are read as they are. A BBQ10 bridge sends each event as a pair
// of bytes, the state followed by the key. TTY implements both the Bus and the
// EventBus interfaces.
type TTY struct {
	port *term.Term
	buf  [64]byte

	// the first byte of an event that has not been completed
	partial    byte
	hasPartial bool
}

// OpenTTY opens the serial port in raw mode.
func OpenTTY(path string, baud int) (*TTY, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	port, err := term.Open(path, term.Speed(baud), term.RawMode)
	if err != nil {
		return nil, fmt.Errorf("tty: %w", err)
	}
	return &TTY{port: port}, nil
}

// Read implements the Bus interface. Only the bytes already received are
// read.
func (t *TTY) Read(p []byte) (int, error) {
	n, err := t.port.Available()
	if err != nil {
		return 0, fmt.Errorf("tty: %w", err)
	}
	if n == 0 {
		return 0, nil
	}
	n, err = t.port.Read(p[:min(n, len(p))])
	if err != nil {
		return n, fmt.Errorf("tty: %w", err)
	}
	return n, nil
}

// ReadEvents implements the EventBus interface.
func (t *TTY) ReadEvents(events []KeyEvent) (int, error) {
	n, err := t.Read(t.buf[:min(len(t.buf), len(events)*2)])
	if err != nil {
		return 0, err
	}
	return decodeEvents(t.buf[:n], events, &t.partial, &t.hasPartial), nil
}

// decodeEvents converts state and key byte pairs into events. A trailing odd
// byte is kept for the next call.
func decodeEvents(b []byte, events []KeyEvent, partial *byte, hasPartial *bool) int {
	var count int
	for _, c := range b {
		if !*hasPartial {
			*partial = c
			*hasPartial = true
			continue
		}
		*hasPartial = false
		if count < len(events) {
			events[count] = KeyEvent{State: KeyState(*partial), Key: c}
			count++
		}
	}
	return count
}

// Close implements the input.Closer interface.
func (t *TTY) Close() error {
	return t.port.Close()
}
