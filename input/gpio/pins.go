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

package gpio

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"

	"github.com/panelpipe/panelpipe/logger"
)

// Level is a Pin whose level is set by software. The zero value is high,
// meaning released.
type Level struct {
	low atomic.Bool
}

// NewLevel returns a Level that is high, meaning released.
func NewLevel() *Level {
	return &Level{}
}

// High implements the Pin interface.
func (l *Level) High() bool {
	return !l.low.Load()
}

// Set the pin level.
func (l *Level) Set(high bool) {
	l.low.Store(!high)
}

// Press sets the pin low.
func (l *Level) Press() {
	l.low.Store(true)
}

// Release sets the pin high.
func (l *Level) Release() {
	l.low.Store(false)
}

// PinFunc allows an ordinary function to be used as a Pin.
type PinFunc func() bool

// High implements the Pin interface.
func (f PinFunc) High() bool {
	return f()
}

// SysfsRoot is the location of the GPIO sysfs interface.
const SysfsRoot = "/sys/class/gpio"

// Sysfs is a Pin read through the Linux GPIO sysfs interface. The pin must
// already be exported and configured as an input.
type Sysfs struct {
	number int
	value  *os.File
	buf    [2]byte

	// a failed read is reported once and the pin then reads as high
	failed bool
}

// OpenSysfs opens the value file of the numbered pin under root. If root is
// empty then SysfsRoot is used.
func OpenSysfs(root string, number int) (*Sysfs, error) {
	if root == "" {
		root = SysfsRoot
	}
	path := filepath.Join(root, "gpio"+strconv.Itoa(number), "value")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gpio: %w", err)
	}
	return &Sysfs{number: number, value: f}, nil
}

// High implements the Pin interface.
func (p *Sysfs) High() bool {
	n, err := p.value.ReadAt(p.buf[:], 0)
	if n == 0 {
		if !p.failed {
			p.failed = true
			logger.Logf(logger.Allow, "input", "gpio%d: %v", p.number, err)
		}
		return true
	}
	p.failed = false
	return p.buf[0] != '0'
}

// Close implements the input.Closer interface.
func (p *Sysfs) Close() error {
	return p.value.Close()
}

// Numbers assigns a sysfs pin number to each button. A negative number means
// the button is not connected.
type Numbers struct {
	Up, Down, Left, Right int
	Select, Start         int
	A, B, X, Y            int
}

// DefaultNumbers are the pins of the handheld with a d-pad on separate pins.
var DefaultNumbers = Numbers{
	Up:     35,
	Down:   34,
	Left:   33,
	Right:  32,
	Select: 27,
	Start:  39,
	A:      13,
	B:      25,
	X:      14,
	Y:      26,
}

// OpenSysfsPins opens every connected pin in the Numbers. If any pin fails to
// open then the pins already opened are closed.
func OpenSysfsPins(root string, n Numbers) (Pins, error) {
	var pins Pins
	var opened []*Sysfs

	for _, a := range []struct {
		number int
		pin    *Pin
	}{
		{n.Up, &pins.Up},
		{n.Down, &pins.Down},
		{n.Left, &pins.Left},
		{n.Right, &pins.Right},
		{n.Select, &pins.Select},
		{n.Start, &pins.Start},
		{n.A, &pins.A},
		{n.B, &pins.B},
		{n.X, &pins.X},
		{n.Y, &pins.Y},
	} {
		if a.number < 0 {
			continue
		}
		p, err := OpenSysfs(root, a.number)
		if err != nil {
			for _, o := range opened {
				_ = o.Close()
			}
			return Pins{}, err
		}
		opened = append(opened, p)
		*a.pin = p
	}

	return pins, nil
}
