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

// Package telemetry reports the performance of a running pipeline once a
// second. Output is styled with lipgloss when it is written to a terminal and
// is plain text otherwise.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/panelpipe/panelpipe/display/framebuffer"
	"golang.org/x/term"
)

// Source of the values reported. The pipeline.Pipeline type is the only
// likely implementation.
type Source interface {
	FPS() float32
	Produced() uint64
	Stats() framebuffer.Stats
	TransferErrors() uint64
}

// Sample is a single report.
type Sample struct {
	// measured rate of frames reaching the panel
	Presented float32

	// rate of frames produced since the previous sample
	Produced float32

	// totals since the pipeline started
	Dropped        uint64
	TransferErrors uint64
}

// Interval is the time between reports made by Run().
const Interval = time.Second

type styles struct {
	label lipgloss.Style
	value lipgloss.Style
	warn  lipgloss.Style
}

// Reporter writes samples to an io.Writer.
type Reporter struct {
	src    Source
	out    io.Writer
	styled bool
	styles styles

	prevProduced uint64
	prevTime     time.Time
}

// NewReporter is the preferred method of initialisation for the Reporter
// type. Output is styled if the writer is a terminal.
func NewReporter(src Source, out io.Writer) *Reporter {
	r := &Reporter{
		src: src,
		out: out,
		styles: styles{
			label: lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(8)),
			value: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(2)),
			warn:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(3)),
		},
	}
	if f, ok := out.(*os.File); ok {
		r.styled = term.IsTerminal(int(f.Fd()))
	}
	return r
}

// SetStyled forces styling on or off.
func (r *Reporter) SetStyled(styled bool) {
	r.styled = styled
}

// Sample the source. The rate of production is measured from the time of the
// previous call.
func (r *Reporter) Sample(now time.Time) Sample {
	produced := r.src.Produced()
	s := Sample{
		Presented:      r.src.FPS(),
		Dropped:        r.src.Stats().Dropped(),
		TransferErrors: r.src.TransferErrors(),
	}
	if !r.prevTime.IsZero() {
		if d := now.Sub(r.prevTime).Seconds(); d > 0 {
			s.Produced = float32(float64(produced-r.prevProduced) / d)
		}
	}
	r.prevProduced = produced
	r.prevTime = now
	return s
}

// Format a sample as a single line of text, without a newline.
func (r *Reporter) Format(s Sample) string {
	if !r.styled {
		return fmt.Sprintf("presented %.1f fps  produced %.1f fps  dropped %d  transfer errors %d",
			s.Presented, s.Produced, s.Dropped, s.TransferErrors)
	}

	errs := r.styles.value
	if s.TransferErrors > 0 {
		errs = r.styles.warn
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		r.styles.label.Render("presented "),
		r.styles.value.Render(fmt.Sprintf("%.1f fps", s.Presented)),
		r.styles.label.Render("  produced "),
		r.styles.value.Render(fmt.Sprintf("%.1f fps", s.Produced)),
		r.styles.label.Render("  dropped "),
		r.styles.value.Render(fmt.Sprintf("%d", s.Dropped)),
		r.styles.label.Render("  transfer errors "),
		errs.Render(fmt.Sprintf("%d", s.TransferErrors)),
	)
}

// Report samples the source and writes the formatted sample.
func (r *Reporter) Report(now time.Time) error {
	_, err := fmt.Fprintln(r.out, r.Format(r.Sample(now)))
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	return nil
}

// Run reports every Interval until the context is cancelled.
func (r *Reporter) Run(ctx context.Context) error {
	r.Sample(time.Now())

	tck := time.NewTicker(Interval)
	defer tck.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-tck.C:
			if err := r.Report(now); err != nil {
				return err
			}
		}
	}
}
