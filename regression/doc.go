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

// Package regression facilitates the regression testing of the display
// pipeline. By recording a digest of everything a pipeline sends to the panel
// we can compare the output of the pipeline before and after a change.
//
// Regression entries are kept in a database file. An entry describes the
// panel, the present mode, the scale mode and the testcard pattern, along
// with the number of frames to run and an optional macro script that drives
// the input of the testcard. When an entry is added the pipeline is run and
// the digest recorded. When the regression tests are run the pipeline is run
// again and the digest compared.
//
// Frames are never dropped during a regression run, whatever the present
// mode, so the digest does not depend on the speed of the machine.
package regression
