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

package digest

import (
	"crypto/sha1"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/panelpipe/panelpipe/display"
)

// ErrTooLarge is returned when a transfer is larger than the panel.
var ErrTooLarge = errors.New("digest: transfer larger than panel")

// the chained digest followed by the position and size of the transfer
const headerLen = sha1.Size + 8

// Sink is a display.Sink that passes every call to another sink and keeps a
// digest of the pixels that were successfully transferred. Pixels are
// digested in the order they were sent on the bus.
//
// Note that the use of sha1 is fine for this application because this is not
// a cryptographic task.
type Sink struct {
	display.Sink

	crit      sync.Mutex
	digest    [sha1.Size]byte
	data      []byte
	transfers int
}

// NewSink is the preferred method of initialisation for the Sink type.
func NewSink(sink display.Sink) *Sink {
	w, h := sink.Size()
	return &Sink{
		Sink: sink,
		data: make([]byte, headerLen+w*h*2),
	}
}

// Transfer implements the display.Sink interface. A failed transfer does not
// change the digest.
func (dig *Sink) Transfer(pix []uint16, w, h, x, y int) error {
	if err := dig.Sink.Transfer(pix, w, h, x, y); err != nil {
		return err
	}

	dig.crit.Lock()
	defer dig.crit.Unlock()

	n := w * h
	if n*2 > len(dig.data)-headerLen || n > len(pix) {
		return fmt.Errorf("%w: %dx%d", ErrTooLarge, w, h)
	}

	// chain fingerprints by copying the value of the last fingerprint to the
	// head of the data
	copy(dig.data, dig.digest[:])

	b := dig.data[sha1.Size:]
	binary.BigEndian.PutUint16(b[0:], uint16(x))
	binary.BigEndian.PutUint16(b[2:], uint16(y))
	binary.BigEndian.PutUint16(b[4:], uint16(w))
	binary.BigEndian.PutUint16(b[6:], uint16(h))

	b = dig.data[headerLen:]
	for i, v := range pix[:n] {
		binary.BigEndian.PutUint16(b[i*2:], v)
	}

	dig.digest = sha1.Sum(dig.data[:headerLen+n*2])
	dig.transfers++

	return nil
}

// Hash implements the Digest interface.
func (dig *Sink) Hash() string {
	dig.crit.Lock()
	defer dig.crit.Unlock()
	return fmt.Sprintf("%x", dig.digest)
}

// ResetDigest implements the Digest interface.
func (dig *Sink) ResetDigest() {
	dig.crit.Lock()
	defer dig.crit.Unlock()
	clear(dig.digest[:])
	dig.transfers = 0
}

// Transfers returns the number of transfers included in the digest.
func (dig *Sink) Transfers() int {
	dig.crit.Lock()
	defer dig.crit.Unlock()
	return dig.transfers
}
