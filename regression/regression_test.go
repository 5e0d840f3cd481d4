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

package regression_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/panelpipe/panelpipe/display"
	"github.com/panelpipe/panelpipe/pipeline"
	"github.com/panelpipe/panelpipe/regression"
	"github.com/panelpipe/panelpipe/test"
)

func add(t *testing.T, dbPath string, mode display.PresentMode, macro string) {
	t.Helper()
	reg, err := regression.NewPanelRegression("ili9341", mode, pipeline.Aspect, "grid", 5)
	test.DemandSuccess(t, err)
	reg.Macro = macro
	test.DemandSuccess(t, regression.RegressAdd(&strings.Builder{}, dbPath, reg))
}

func TestNewPanelRegression(t *testing.T) {
	_, err := regression.NewPanelRegression("vga", display.DirectBlocking, pipeline.Stretch, "bars", 1)
	test.ExpectFailure(t, err)
	_, err = regression.NewPanelRegression("ili9488", display.DirectBlocking, pipeline.Stretch, "stripes", 1)
	test.ExpectFailure(t, err)
	_, err = regression.NewPanelRegression("ili9488", display.DirectBlocking, pipeline.Stretch, "bars", 0)
	test.ExpectFailure(t, err)

	reg, err := regression.NewPanelRegression("ili9488", display.DirectBlocking, pipeline.Stretch, "bars", 1)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, reg.Panel, "ILI9488")
	test.ExpectEquality(t, reg.String(), "[panel] ILI9488 direct stretch bars frames=1")
}

func TestAddAndRun(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), regression.DefaultDBFile)

	add(t, dbPath, display.DirectBlocking, "")
	add(t, dbPath, display.DoubleBufferedAsync, "")

	var list strings.Builder
	test.DemandSuccess(t, regression.RegressList(&list, dbPath))
	test.ExpectSuccess(t, strings.Contains(list.String(), "000 [panel] ILI9341 direct aspect grid frames=5"))
	test.ExpectSuccess(t, strings.Contains(list.String(), "001 [panel] ILI9341 async aspect grid frames=5"))
	test.ExpectSuccess(t, strings.Contains(list.String(), "Total: 2"))

	var output strings.Builder
	summary, err := regression.RegressRun(&output, dbPath, true, false, nil)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, summary, regression.Summary{Succeed: 2})

	// running the same entry again produces the same digest
	summary, err = regression.RegressRun(&output, dbPath, true, false, []string{"1"})
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, summary, regression.Summary{Succeed: 1})

	_, err = regression.RegressRun(&output, dbPath, true, false, []string{"one"})
	test.ExpectFailure(t, err)
}

func TestDigestMismatch(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), regression.DefaultDBFile)

	data := "000,panel,ILI9341,direct,stretch,bars,2,,,0000000000000000000000000000000000000000\n"
	test.DemandSuccess(t, os.WriteFile(dbPath, []byte(data), 0o600))

	var output strings.Builder
	summary, err := regression.RegressRun(&output, dbPath, true, false, nil)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, summary, regression.Summary{Fail: 1})
	test.ExpectSuccess(t, strings.Contains(output.String(), "digest mismatch"))
}

func TestMalformedEntry(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), regression.DefaultDBFile)

	data := "000,panel,ILI9341,direct,stretch,bars\n"
	test.DemandSuccess(t, os.WriteFile(dbPath, []byte(data), 0o600))

	_, err := regression.RegressRun(&strings.Builder{}, dbPath, false, false, nil)
	test.ExpectFailure(t, err)
}

func TestMacroEntry(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, regression.DefaultDBFile)

	script := filepath.Join(dir, "cursor.macro")
	test.DemandSuccess(t, os.WriteFile(script, []byte("panelpipemacro\nv1\nPRESS right down\nWAIT 3\nPATTERN bars\n"), 0o600))

	add(t, dbPath, display.DirectBlocking, script)
	add(t, dbPath, display.DirectBlocking, "")

	var list strings.Builder
	test.DemandSuccess(t, regression.RegressList(&list, dbPath))
	test.ExpectSuccess(t, strings.Contains(list.String(), "macro=cursor.macro"))

	summary, err := regression.RegressRun(&strings.Builder{}, dbPath, false, false, nil)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, summary, regression.Summary{Succeed: 2})

	// a missing macro is an error when the entry is run
	test.DemandSuccess(t, os.Remove(script))
	summary, err = regression.RegressRun(&strings.Builder{}, dbPath, false, false, []string{"0"})
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, summary, regression.Summary{Error: 1})
}

func TestDelete(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), regression.DefaultDBFile)
	add(t, dbPath, display.DirectBlocking, "")
	add(t, dbPath, display.DirectBlocking, "")

	var output strings.Builder

	// declined
	test.DemandSuccess(t, regression.RegressDelete(&output, strings.NewReader("n\n"), dbPath, "0"))

	test.DemandSuccess(t, regression.RegressDelete(&output, strings.NewReader("y\n"), dbPath, "1"))
	test.ExpectSuccess(t, strings.Contains(output.String(), "deleted test #1"))

	test.ExpectFailure(t, regression.RegressDelete(&output, strings.NewReader("y\n"), dbPath, "1"))
	test.ExpectFailure(t, regression.RegressDelete(&output, strings.NewReader("y\n"), dbPath, "x"))

	var list strings.Builder
	test.DemandSuccess(t, regression.RegressList(&list, dbPath))
	test.ExpectSuccess(t, strings.Contains(list.String(), "Total: 1"))
}

func TestParseKeys(t *testing.T) {
	test.ExpectEquality(t, strings.Join(regression.ParseKeys(" 1, 2,,3 "), ":"), "1:2:3")
	test.ExpectEquality(t, len(regression.ParseKeys("")), 0)
}
