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

package performance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/panelpipe/panelpipe/digest"
	"github.com/panelpipe/panelpipe/display"
	"github.com/panelpipe/panelpipe/display/specification"
	"github.com/panelpipe/panelpipe/emulation/testcard"
	"github.com/panelpipe/panelpipe/input"
	"github.com/panelpipe/panelpipe/logger"
	"github.com/panelpipe/panelpipe/pipeline"
	"github.com/panelpipe/panelpipe/sinks/headless"
)

// CheckConfig describes the pipeline measured by Check().
type CheckConfig struct {
	Panel   specification.Panel
	Mode    display.PresentMode
	Overlay bool

	// time taken by every transfer to the headless sink
	Latency time.Duration

	// rate of the testcard engine. zero or less is uncapped
	Rate float32

	// the pipeline runs for the leadtime before the measurement starts
	Leadtime time.Duration
	Duration time.Duration

	// keep a digest of every transfer to the panel
	Digest bool
}

// DefaultCheckConfig returns the CheckConfig used by the PERFORMANCE mode
// when no other values are given.
func DefaultCheckConfig() CheckConfig {
	return CheckConfig{
		Panel:    specification.PanelILI9488,
		Mode:     display.DoubleBufferedAsync,
		Rate:     specification.FramesPerSecond,
		Leadtime: 2 * time.Second,
		Duration: 5 * time.Second,
	}
}

// Result of a performance check. Counts cover the measurement period only.
type Result struct {
	Elapsed        time.Duration
	Produced       uint64
	Presented      uint64
	Dropped        uint64
	TransferErrors uint64

	ProducedFPS  float64
	PresentedFPS float64

	// presented rate as a percentage of the requested rate. zero if the rate
	// is uncapped
	Accuracy float64

	// digest of every transfer, including those made during the leadtime.
	// empty if CheckConfig.Digest is false
	Digest string
}

// DropRatio is the proportion of produced frames that were not presented.
func (r Result) DropRatio() float64 {
	if r.Produced == 0 {
		return 0
	}
	return float64(r.Dropped) / float64(r.Produced)
}

func (r Result) String() string {
	s := fmt.Sprintf("%.2f fps presented (%d frames in %.2f seconds)", r.PresentedFPS, r.Presented, r.Elapsed.Seconds())
	if r.Accuracy > 0 {
		s = fmt.Sprintf("%s %.1f%%", s, r.Accuracy)
	}
	s = fmt.Sprintf("%s\n%.2f fps produced, %d dropped (%.1f%%), %d transfer errors",
		s, r.ProducedFPS, r.Dropped, r.DropRatio()*100, r.TransferErrors)
	if r.Digest != "" {
		s = fmt.Sprintf("%s\ndigest %s", s, r.Digest)
	}
	return s
}

// sentinel error used when a goroutine ends before the measurement is over.
var errEndedEarly = errors.New("performance: pipeline ended early")

// Check the performance of the pipeline by running the testcard engine into
// a headless sink. The result is written to the output and returned.
func Check(output io.Writer, profile Profile, cfg CheckConfig) (Result, error) {
	var res Result

	sink := headless.NewSink(cfg.Panel.Width, cfg.Panel.Height, cfg.Panel.SwapBytes)
	sink.SetLatency(cfg.Latency)

	pcfg := pipeline.DefaultConfig(cfg.Panel)
	pcfg.Mode = cfg.Mode
	pcfg.Overlay = cfg.Overlay

	var panelSink display.Sink = sink
	var dig *digest.Sink
	if cfg.Digest {
		dig = digest.NewSink(sink)
		panelSink = dig
	}

	pl, err := pipeline.NewPipeline(pcfg, panelSink, specification.PaletteNES, nil)
	if err != nil {
		return res, fmt.Errorf("performance: %w", err)
	}
	if err := pl.Start(); err != nil {
		return res, fmt.Errorf("performance: %w", err)
	}

	engine := testcard.NewEngine(cfg.Rate)
	state := input.NewState()

	runner := func() error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		done := make(chan error, 2)
		go func() {
			done <- pl.Run(ctx)
		}()
		go func() {
			done <- engine.Run(ctx, pl, state)
		}()

		// wait for the period of time while checking that neither goroutine
		// has ended
		wait := func(d time.Duration) error {
			select {
			case <-time.After(d):
				return nil
			case err := <-done:
				cancel()
				<-done
				if err != nil {
					return err
				}
				return errEndedEarly
			}
		}

		if err := wait(cfg.Leadtime); err != nil {
			return err
		}

		produced := pl.Produced()
		presented := pl.Presented()
		dropped := pl.Stats().Dropped()
		errs := pl.TransferErrors()
		start := time.Now()

		if err := wait(cfg.Duration); err != nil {
			return err
		}

		res.Elapsed = time.Since(start)
		res.Produced = pl.Produced() - produced
		res.Presented = pl.Presented() - presented
		res.Dropped = pl.Stats().Dropped() - dropped
		res.TransferErrors = pl.TransferErrors() - errs

		cancel()
		for range 2 {
			if err := <-done; err != nil {
				return err
			}
		}

		return nil
	}

	logger.Logf(logger.Allow, "performance", "checking %v for %v", pl, cfg.Duration)

	err = RunProfiler(profile, "performance", runner)
	if err != nil {
		return res, fmt.Errorf("performance: %w", err)
	}

	if dig != nil {
		res.Digest = dig.Hash()
	}

	res.ProducedFPS, _ = CalcFPS(res.Produced, res.Elapsed.Seconds(), 0)
	res.PresentedFPS, res.Accuracy = CalcFPS(res.Presented, res.Elapsed.Seconds(), float64(cfg.Rate))

	if output != nil {
		if _, err := fmt.Fprintln(output, res); err != nil {
			return res, fmt.Errorf("performance: %w", err)
		}
	}

	return res, nil
}
