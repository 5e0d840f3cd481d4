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

package logger

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Colorizer applies basic coloring rules to logging output. The tag of each
// entry is highlighted and entries with an error tag are drawn in red.
//
// Colorizer expects one or more complete log entries per call to Write(), as
// produced by the Write(), Tail() and SetEcho() functions.
type Colorizer struct {
	out    io.Writer
	tag    lipgloss.Style
	detail lipgloss.Style
	err    lipgloss.Style
}

// NewColorizer is the preferred method if initialisation for the Colorizer type.
func NewColorizer(out io.Writer) Colorizer {
	return Colorizer{
		out:    out,
		tag:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(6)),
		detail: lipgloss.NewStyle(),
		err:    lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(1)),
	}
}

// Write implements the io.Writer interface.
func (c Colorizer) Write(p []byte) (int, error) {
	var s strings.Builder

	for _, l := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		tag, detail, ok := strings.Cut(l, ": ")
		if !ok {
			s.WriteString(c.detail.Render(l))
			s.WriteString("\n")
			continue
		}

		s.WriteString(c.tag.Render(tag))
		s.WriteString(": ")
		if strings.Contains(tag, "error") || strings.HasPrefix(detail, "error") {
			s.WriteString(c.err.Render(detail))
		} else {
			s.WriteString(c.detail.Render(detail))
		}
		s.WriteString("\n")
	}

	_, err := io.WriteString(c.out, s.String())
	if err != nil {
		return 0, err
	}

	// report the number of bytes consumed rather than the number of bytes
	// written, which includes the styling
	return len(p), nil
}
