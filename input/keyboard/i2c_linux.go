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

//go:build linux

package keyboard

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// ioctl request to set the address of the device on the I2C bus
const i2cSlave = 0x0703

// BBQ10 registers
const (
	bbq10RegKey  = 0x04
	bbq10RegFIFO = 0x09

	bbq10KeyCountMask = 0x1f
)

// I2C is a keyboard on a Linux I2C bus, normally /dev/i2c-1. It implements
// both the Bus and the EventBus interfaces.
type I2C struct {
	dev  *os.File
	addr int
	buf  [2]byte
}

// OpenI2C opens the I2C bus device and selects the device at the address.
func OpenI2C(device string, addr int) (*I2C, error) {
	f, err := os.OpenFile(device, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("i2c: %w", err)
	}
	if err := unix.IoctlSetInt(int(f.Fd()), i2cSlave, addr); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("i2c: address %#02x: %w", addr, err)
	}
	return &I2C{dev: f, addr: addr}, nil
}

// Read implements the Bus interface. The CardKB returns a single byte for
// each request, which is zero if no key is pressed.
func (bus *I2C) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if _, err := bus.dev.Read(bus.buf[:1]); err != nil {
		return 0, fmt.Errorf("i2c: %w", err)
	}
	if bus.buf[0] == 0 {
		return 0, nil
	}
	p[0] = bus.buf[0]
	return 1, nil
}

func (bus *I2C) register(reg byte, n int) ([]byte, error) {
	bus.buf[0] = reg
	if _, err := bus.dev.Write(bus.buf[:1]); err != nil {
		return nil, fmt.Errorf("i2c: register %#02x: %w", reg, err)
	}
	if _, err := bus.dev.Read(bus.buf[:n]); err != nil {
		return nil, fmt.Errorf("i2c: register %#02x: %w", reg, err)
	}
	return bus.buf[:n], nil
}

// ReadEvents implements the EventBus interface for the BBQ10 register
// protocol.
func (bus *I2C) ReadEvents(events []KeyEvent) (int, error) {
	b, err := bus.register(bbq10RegKey, 1)
	if err != nil {
		return 0, err
	}
	count := min(int(b[0]&bbq10KeyCountMask), len(events))

	for i := range count {
		b, err := bus.register(bbq10RegFIFO, 2)
		if err != nil {
			return i, err
		}
		events[i] = KeyEvent{State: KeyState(b[0]), Key: b[1]}
	}

	return count, nil
}

// Close implements the input.Closer interface.
func (bus *I2C) Close() error {
	return bus.dev.Close()
}
