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

//go:build !linux

package keyboard

import (
	"errors"
)

// I2C is not available on this platform.
type I2C struct{}

// OpenI2C always fails on this platform.
func OpenI2C(_ string, _ int) (*I2C, error) {
	return nil, errors.New("i2c: not supported on this platform")
}

// Read implements the Bus interface.
func (bus *I2C) Read(_ []byte) (int, error) {
	return 0, nil
}

// ReadEvents implements the EventBus interface.
func (bus *I2C) ReadEvents(_ []KeyEvent) (int, error) {
	return 0, nil
}

// Close implements the input.Closer interface.
func (bus *I2C) Close() error {
	return nil
}
