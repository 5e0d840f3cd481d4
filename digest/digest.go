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

// Package digest fingerprints the images sent to a panel. The fingerprint of
// each transfer is chained with the fingerprint of the previous transfer so
// the final value describes the entire sequence of images.
//
// Comparing fingerprints is the simplest way of checking that a change to
// the pipeline has not changed what reaches the panel.
package digest

// Digest implementations calculate a fingerprint of the data they have seen.
type Digest interface {
	Hash() string
	ResetDigest()
}
