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

package paths_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/panelpipe/panelpipe/paths"
	"github.com/panelpipe/panelpipe/test"
)

func TestPaths(t *testing.T) {
	// run the test from a temporary directory containing the base resource
	// path so that the result is predictable
	wd, err := os.Getwd()
	test.DemandSuccess(t, err)
	tmp := t.TempDir()
	test.DemandSuccess(t, os.Chdir(tmp))
	defer os.Chdir(wd)
	test.DemandSuccess(t, os.Mkdir(".panelpipe", 0o700))

	test.ExpectEquality(t, paths.ResourcePath("foo/bar", "baz"), filepath.Join(".panelpipe", "foo", "bar", "baz"))
	test.ExpectEquality(t, paths.ResourcePath("foo/bar", ""), filepath.Join(".panelpipe", "foo", "bar"))
	test.ExpectEquality(t, paths.ResourcePath("", "baz"), filepath.Join(".panelpipe", "baz"))
	test.ExpectEquality(t, paths.ResourcePath("", ""), ".panelpipe")

	test.ExpectSuccess(t, paths.MakeResourceDir("profiles", "cpu.profile"))
	_, err = os.Stat(filepath.Join(".panelpipe", "profiles"))
	test.ExpectSuccess(t, err)
}

func TestUniqueFilename(t *testing.T) {
	fn := paths.UniqueFilename("cpu", "async")
	test.ExpectSuccess(t, strings.HasPrefix(fn, "cpu_async_"))

	fn = paths.UniqueFilename("cpu", "  ")
	test.ExpectSuccess(t, strings.HasPrefix(fn, "cpu_2"))
}
