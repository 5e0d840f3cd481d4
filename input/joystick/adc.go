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

package joystick

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
)

// Fixed is an ADC whose values are set by software. It can be shared between
// goroutines.
type Fixed struct {
	x atomic.Int32
	y atomic.Int32
}

// NewFixed returns a Fixed ADC with both axes at the centre.
func NewFixed(center int) *Fixed {
	f := &Fixed{}
	f.Set(center, center)
	return f
}

// Set the value of both axes.
func (f *Fixed) Set(x, y int) {
	f.x.Store(int32(x))
	f.y.Store(int32(y))
}

// SetAxis sets the value of a single axis.
func (f *Fixed) SetAxis(axis Axis, v int) {
	switch axis {
	case AxisX:
		f.x.Store(int32(v))
	case AxisY:
		f.y.Store(int32(v))
	}
}

// Read implements the ADC interface.
func (f *Fixed) Read(axis Axis) (int, error) {
	switch axis {
	case AxisX:
		return int(f.x.Load()), nil
	case AxisY:
		return int(f.y.Load()), nil
	}
	return 0, fmt.Errorf("joystick: %v", axis)
}

// IIO is an ADC read through the Linux industrial I/O sysfs interface.
type IIO struct {
	files [2]*os.File
	buf   [16]byte
}

// OpenIIO opens the raw value files of the two channels of an IIO device. The
// device path is normally of the form /sys/bus/iio/devices/iio:device0.
func OpenIIO(device string, channelX, channelY int) (*IIO, error) {
	adc := &IIO{}
	for i, ch := range []int{channelX, channelY} {
		f, err := os.Open(filepath.Join(device, "in_voltage"+strconv.Itoa(ch)+"_raw"))
		if err != nil {
			_ = adc.Close()
			return nil, fmt.Errorf("joystick: %w", err)
		}
		adc.files[i] = f
	}
	return adc, nil
}

// Read implements the ADC interface.
func (adc *IIO) Read(axis Axis) (int, error) {
	if axis != AxisX && axis != AxisY {
		return 0, fmt.Errorf("joystick: %v", axis)
	}
	n, err := adc.files[axis].ReadAt(adc.buf[:], 0)
	if n == 0 {
		return 0, fmt.Errorf("joystick: %v axis: %w", axis, err)
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(adc.buf[:n])))
	if err != nil {
		return 0, fmt.Errorf("joystick: %v axis: %w", axis, err)
	}
	return v, nil
}

// Close implements the input.Closer interface.
func (adc *IIO) Close() error {
	var err error
	for _, f := range adc.files {
		if f != nil {
			if e := f.Close(); e != nil && err == nil {
				err = e
			}
		}
	}
	return err
}
