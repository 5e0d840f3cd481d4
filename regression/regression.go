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

package regression

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/panelpipe/panelpipe/database"
)

// DefaultDBFile is the name of the regression database in the resource
// directory.
const DefaultDBFile = "regressionDB"

// clears the current line of a terminal
const clearLine = "\033[2K"

// Regressor is the generic entry type in the regression database.
type Regressor interface {
	database.Entry

	// perform the regression test for the regression type. the newRegression
	// flag indicates that the regression is being added to the database and
	// that the result should be recorded rather than compared
	//
	// message is the string that is to be printed during the regression
	regress(newRegression bool, output io.Writer, message string) (bool, string, error)
}

func initDBSession(db *database.Session) error {
	return db.RegisterEntryType(panelEntryType, deserialisePanelEntry)
}

// RegressList displays all entries in the database.
func RegressList(output io.Writer, dbPath string) error {
	db, err := database.StartSession(dbPath, database.ActivityReading, initDBSession)
	if err != nil {
		return fmt.Errorf("regression: %w", err)
	}
	defer db.EndSession(false)

	return db.List(output)
}

// RegressAdd adds a new regression handler to the database.
func RegressAdd(output io.Writer, dbPath string, reg Regressor) error {
	db, err := database.StartSession(dbPath, database.ActivityCreating, initDBSession)
	if err != nil {
		return fmt.Errorf("regression: %w", err)
	}

	msg := fmt.Sprintf("adding: %s", reg)
	_, _, err = reg.regress(true, output, msg)
	if err != nil {
		_ = db.EndSession(false)
		return fmt.Errorf("regression: %w", err)
	}

	fmt.Fprint(output, clearLine)

	key, err := db.Add(reg)
	if err != nil {
		_ = db.EndSession(false)
		return fmt.Errorf("regression: %w", err)
	}

	fmt.Fprintf(output, "\radded: %03d %s\n", key, reg)

	return db.EndSession(true)
}

// RegressDelete removes a regression entry from the database. The user is
// asked to confirm the deletion.
func RegressDelete(output io.Writer, confirmation io.Reader, dbPath string, key string) error {
	v, err := strconv.Atoi(key)
	if err != nil {
		return fmt.Errorf("regression: invalid key [%s]", key)
	}

	db, err := database.StartSession(dbPath, database.ActivityModifying, initDBSession)
	if err != nil {
		return fmt.Errorf("regression: %w", err)
	}

	ent, err := db.Get(v)
	if err != nil {
		_ = db.EndSession(false)
		return fmt.Errorf("regression: %w", err)
	}

	fmt.Fprintf(output, "%s\ndelete? (y/n): ", ent)

	confirm := make([]byte, 32)
	n, err := confirmation.Read(confirm)
	if err != nil && !errors.Is(err, io.EOF) {
		_ = db.EndSession(false)
		return fmt.Errorf("regression: %w", err)
	}

	if n == 0 || (confirm[0] != 'y' && confirm[0] != 'Y') {
		return db.EndSession(false)
	}

	if err := db.Delete(v); err != nil {
		_ = db.EndSession(false)
		return fmt.Errorf("regression: %w", err)
	}

	fmt.Fprintf(output, "deleted test #%s from regression database\n", key)

	return db.EndSession(true)
}

// Summary of a regression run.
type Summary struct {
	Succeed int
	Fail    int
	Error   int
}

func (s Summary) String() string {
	var e string
	if s.Error > 0 {
		e = " [with errors]"
	}
	return fmt.Sprintf("regression tests: %d succeed, %d fail%s", s.Succeed, s.Fail, e)
}

// RegressRun runs the regression tests in the database. If keys is not empty
// then only those entries are run.
func RegressRun(output io.Writer, dbPath string, verbose bool, failOnError bool, keys []string) (Summary, error) {
	var summary Summary

	db, err := database.StartSession(dbPath, database.ActivityReading, initDBSession)
	if err != nil {
		return summary, fmt.Errorf("regression: %w", err)
	}
	defer db.EndSession(false)

	keysV := make([]int, 0, len(keys))
	for _, k := range keys {
		v, err := strconv.Atoi(k)
		if err != nil {
			return summary, fmt.Errorf("regression: invalid key [%s]", k)
		}
		keysV = append(keysV, v)
	}

	onSelect := func(key int, ent database.Entry) (bool, error) {
		// database entry should also satisfy Regressor interface
		reg, ok := ent.(Regressor)
		if !ok {
			return false, fmt.Errorf("regression: database entry does not satisfy Regressor interface")
		}

		// message does not have a trailing newline
		msg := fmt.Sprintf("running: %03d %s", key, reg)
		ok, fail, err := reg.regress(false, output, msg)

		// once regress() has completed we clear the line ready for the
		// completion message
		fmt.Fprint(output, clearLine)

		switch {
		case err != nil:
			summary.Error++
			fmt.Fprintf(output, "\r  ERROR: %03d %s\n", key, reg)
			if verbose {
				fmt.Fprintf(output, "  ^^ %s\n", err)
			}
			if failOnError {
				return false, nil
			}

		case !ok:
			summary.Fail++
			fmt.Fprintf(output, "\rfailure: %03d %s\n", key, reg)
			if verbose && fail != "" {
				fmt.Fprintf(output, "  ^^ %s\n", fail)
			}

		default:
			summary.Succeed++
			fmt.Fprintf(output, "\rsucceed: %03d %s\n", key, reg)
		}

		return true, nil
	}

	err = db.SelectKeys(onSelect, keysV...)
	if err != nil && !errors.Is(err, database.ErrEmpty) {
		return summary, fmt.Errorf("regression: %w", err)
	}

	fmt.Fprintln(output, summary)

	return summary, nil
}

// ParseKeys splits a comma separated list of keys.
func ParseKeys(s string) []string {
	var keys []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
