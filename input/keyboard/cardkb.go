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

	"github.com/panelpipe/panelpipe/input"
)

// CardKB key codes that are not printable characters.
const (
	CardKBLeft  = 180
	CardKBUp    = 181
	CardKBDown  = 182
	CardKBRight = 183
	CardKBEnter = 13
)

// CardKBAddress is the I2C address of the CardKB.
const CardKBAddress = 0x5f

var cardKBKeys = map[byte]uint32{
	CardKBUp:    input.Up,
	CardKBDown:  input.Down,
	CardKBLeft:  input.Left,
	CardKBRight: input.Right,
	' ':         input.Select,
	CardKBEnter: input.Start,
	'k':         input.A,
	'l':         input.B,
	'o':         input.X,
	'p':         input.Y,
	'w':         input.Up,
	's':         input.Down,
	'a':         input.Left,
	'd':         input.Right,
}

// Bus is the connection to the keyboard. Read must not block. If there are no
// bytes available then Read returns zero and a nil error.
type Bus interface {
	io.Reader
}

// CardKB implements the input.Source interface for the M5Stack CardKB.
type CardKB struct {
	bus Bus
	buf [16]byte
}

// NewCardKB is the preferred method of initialisation for the CardKB type.
func NewCardKB(bus Bus) *CardKB {
	return &CardKB{bus: bus}
}

// Poll implements the input.Source interface.
func (kb *CardKB) Poll() (uint32, error) {
	value := input.AllReleased
	for {
		n, err := kb.bus.Read(kb.buf[:])
		for _, c := range kb.buf[:n] {
			value &^= cardKBKeys[c]
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return value, nil
			}
			return value, fmt.Errorf("cardkb: %w", err)
		}
		if n < len(kb.buf) {
			return value, nil
		}
	}
}

// Close the bus if it implements the input.Closer interface.
func (kb *CardKB) Close() error {
	if c, ok := kb.bus.(input.Closer); ok {
		return c.Close()
	}
	return nil
}
