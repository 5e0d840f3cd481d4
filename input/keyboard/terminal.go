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
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

// the control character sent by ctrl-c when the terminal is in raw mode
const ctrlC = 3

// Terminal reads key presses from the terminal that the program is running in.
// The arrow keys are translated to CardKB key codes and the return key to the
// CardKB enter code. It implements the Bus interface.
type Terminal struct {
	fd    int
	state *term.State

	keys chan byte
	dec  ansi

	// called from the reading goroutine when ctrl-c is pressed
	interrupt func()

	closeOnce sync.Once
}

// OpenTerminal puts the terminal into raw mode and starts reading from it. The
// interrupt function is called when ctrl-c is pressed and can be nil.
func OpenTerminal(f *os.File, interrupt func()) (*Terminal, error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return nil, errors.New("terminal: not a terminal")
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("terminal: %w", err)
	}
	t := NewTerminalReader(f, interrupt)
	t.fd = fd
	t.state = state
	return t, nil
}

// NewTerminalReader reads key presses from any reader. The reader is not
// changed to raw mode.
func NewTerminalReader(r io.Reader, interrupt func()) *Terminal {
	t := &Terminal{
		fd:        -1,
		keys:      make(chan byte, 64),
		interrupt: interrupt,
	}
	go func() {
		var b [16]byte
		for {
			n, err := r.Read(b[:])
			for _, c := range b[:n] {
				if c == ctrlC && t.interrupt != nil {
					t.interrupt()
					continue
				}
				select {
				case t.keys <- c:
				default:
				}
			}
			if err != nil {
				close(t.keys)
				return
			}
		}
	}()
	return t
}

// Read implements the Bus interface.
func (t *Terminal) Read(p []byte) (int, error) {
	var n int
	for n < len(p) {
		select {
		case c, ok := <-t.keys:
			if !ok {
				return n, io.EOF
			}
			if k, ok := t.dec.decode(c); ok {
				p[n] = k
				n++
			}
		default:
			return n, nil
		}
	}
	return n, nil
}

// Close restores the terminal to the state it was in before OpenTerminal().
func (t *Terminal) Close() error {
	var err error
	t.closeOnce.Do(func() {
		if t.state != nil {
			err = term.Restore(t.fd, t.state)
		}
	})
	return err
}

// ansi translates the escape sequences of the arrow keys.
type ansi struct {
	state int
}

const (
	ansiNone = iota
	ansiEscape
	ansiCSI
)

// returns the translated key and true if the byte completes a key.
func (a *ansi) decode(c byte) (byte, bool) {
	switch a.state {
	case ansiEscape:
		if c == '[' {
			a.state = ansiCSI
			return 0, false
		}
		a.state = ansiNone
	case ansiCSI:
		a.state = ansiNone
		switch c {
		case 'A':
			return CardKBUp, true
		case 'B':
			return CardKBDown, true
		case 'C':
			return CardKBRight, true
		case 'D':
			return CardKBLeft, true
		}
		return 0, false
	}

	switch c {
	case 0x1b:
		a.state = ansiEscape
		return 0, false
	case '\r', '\n':
		return CardKBEnter, true
	}
	return c, true
}
