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

package scaler

import (
	"fmt"

	"github.com/panelpipe/panelpipe/display"
)

// LUT holds the nearest-neighbour coordinate mapping from destination to
// source. It is built once and is read-only afterwards, so it can be shared
// between goroutines without synchronisation.
type LUT struct {
	SrcWidth   int
	SrcHeight  int
	DestWidth  int
	DestHeight int

	// the source column for each destination column and the source row for
	// each destination row
	XMap []int
	YMap []int
}

// NewLUT creates the coordinate mapping for the source and destination
// dimensions. A zero or negative dimension is a configuration error.
func NewLUT(srcWidth, srcHeight, destWidth, destHeight int) (*LUT, error) {
	if srcWidth <= 0 || srcHeight <= 0 {
		return nil, fmt.Errorf("scaler: invalid source dimensions %dx%d: %w", srcWidth, srcHeight, display.ErrConfiguration)
	}
	if destWidth <= 0 || destHeight <= 0 {
		return nil, fmt.Errorf("scaler: invalid destination dimensions %dx%d: %w", destWidth, destHeight, display.ErrConfiguration)
	}

	return &LUT{
		SrcWidth:   srcWidth,
		SrcHeight:  srcHeight,
		DestWidth:  destWidth,
		DestHeight: destHeight,
		XMap:       buildMap(srcWidth, destWidth),
		YMap:       buildMap(srcHeight, destHeight),
	}, nil
}

// the mapping is the integer ratio dest*src/dest. the result is always less
// than src for dest < destDim but the clamp makes the bound obvious
func buildMap(srcDim, destDim int) []int {
	m := make([]int, destDim)
	for d := range m {
		s := d * srcDim / destDim
		m[d] = min(max(s, 0), srcDim-1)
	}
	return m
}

func (l *LUT) String() string {
	return fmt.Sprintf("%dx%d -> %dx%d", l.SrcWidth, l.SrcHeight, l.DestWidth, l.DestHeight)
}
