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

package digest_test

import (
	"strings"
	"testing"

	"github.com/panelpipe/panelpipe/digest"
	"github.com/panelpipe/panelpipe/display"
	"github.com/panelpipe/panelpipe/display/specification"
	"github.com/panelpipe/panelpipe/emulation"
	"github.com/panelpipe/panelpipe/emulation/testcard"
	"github.com/panelpipe/panelpipe/pipeline"
	"github.com/panelpipe/panelpipe/sinks/headless"
	"github.com/panelpipe/panelpipe/test"
)

var zero = strings.Repeat("0", 40)

func TestSink(t *testing.T) {
	hs := headless.NewSink(4, 2, false)
	dig := digest.NewSink(hs)
	test.ExpectImplements[display.Sink](t, dig)
	test.ExpectImplements[digest.Digest](t, dig)
	test.ExpectEquality(t, dig.Hash(), zero)

	// transfers before Init() fail and are not digested
	pix := []uint16{1, 2, 3, 4, 5, 6, 7, 8}
	test.ExpectFailure(t, dig.Transfer(pix, 4, 2, 0, 0))
	test.ExpectEquality(t, dig.Hash(), zero)

	test.DemandSuccess(t, dig.Init())
	test.ExpectSuccess(t, dig.Transfer(pix, 4, 2, 0, 0))
	first := dig.Hash()
	test.ExpectInequality(t, first, zero)
	test.ExpectEquality(t, dig.Transfers(), 1)
	test.ExpectEquality(t, hs.Transfers(), 1)

	// the same transfer again changes the digest because digests are chained
	test.ExpectSuccess(t, dig.Transfer(pix, 4, 2, 0, 0))
	test.ExpectInequality(t, dig.Hash(), first)

	dig.ResetDigest()
	test.ExpectEquality(t, dig.Hash(), zero)
	test.ExpectEquality(t, dig.Transfers(), 0)
	test.ExpectSuccess(t, dig.Transfer(pix, 4, 2, 0, 0))
	test.ExpectEquality(t, dig.Hash(), first)

	// the position of the transfer is part of the digest
	dig.ResetDigest()
	test.ExpectSuccess(t, dig.Transfer(pix[:4], 4, 1, 0, 1))
	test.ExpectInequality(t, dig.Hash(), first)
}

// digest of the frames presented by a pipeline in direct mode
func run(t *testing.T, pattern string, swap bool, frames int) string {
	t.Helper()

	panel := specification.PanelILI9341
	cfg := pipeline.DefaultConfig(panel)
	cfg.Mode = display.DirectBlocking
	cfg.Swap = swap

	dig := digest.NewSink(headless.NewSink(panel.Width, panel.Height, swap))
	pl, err := pipeline.NewPipeline(cfg, dig, specification.PaletteNES, nil)
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, pl.Start())

	engine := testcard.NewEngine(0)
	test.DemandSuccess(t, engine.SetFeature(emulation.ReqSetPattern, pattern))

	for range frames {
		engine.Step(0)
		test.DemandSuccess(t, pl.OnFrameReady(engine.Frame()))
	}

	return dig.Hash()
}

func TestPipelineDigest(t *testing.T) {
	bars := run(t, "bars", false, 3)
	test.ExpectEquality(t, run(t, "bars", false, 3), bars)
	test.ExpectInequality(t, run(t, "bars", false, 2), bars)
	test.ExpectInequality(t, run(t, "grid", false, 3), bars)
	test.ExpectInequality(t, run(t, "bars", true, 3), bars)
}
