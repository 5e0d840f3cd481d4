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

package database_test

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/panelpipe/panelpipe/database"
	"github.com/panelpipe/panelpipe/test"
)

type note struct {
	text    string
	cleaned *int
}

func (n note) EntryType() string {
	return "note"
}

func (n note) String() string {
	return n.text
}

func (n note) Serialise() (database.SerialisedEntry, error) {
	return database.SerialisedEntry{n.text}, nil
}

func (n note) CleanUp() error {
	if n.cleaned != nil {
		*n.cleaned++
	}
	return nil
}

func initSession(db *database.Session) error {
	return db.RegisterEntryType("note", func(fields []string) (database.Entry, error) {
		if len(fields) != 1 {
			return nil, fmt.Errorf("note: wrong number of fields")
		}
		return note{text: fields[0]}, nil
	})
}

func TestSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db")

	// reading a database that does not exist is an error
	_, err := database.StartSession(path, database.ActivityReading, initSession)
	test.ExpectFailure(t, err)

	db, err := database.StartSession(path, database.ActivityCreating, initSession)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, db.NumEntries(), 0)

	key, err := db.Add(note{text: "hello, world"})
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, key, 0)
	key, err = db.Add(note{text: "second"})
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, key, 1)
	test.DemandSuccess(t, db.EndSession(true))

	db, err = database.StartSession(path, database.ActivityReading, initSession)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, db.NumEntries(), 2)

	ent, err := db.Get(0)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, ent.String(), "hello, world")

	_, err = db.Add(note{text: "third"})
	test.ExpectSuccess(t, errors.Is(err, database.ErrReadOnly))

	w := &strings.Builder{}
	test.ExpectSuccess(t, db.List(w))
	test.ExpectEquality(t, w.String(), "000 hello, world\n001 second\nTotal: 2\n")
}

func TestDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db")

	var cleaned int

	db, err := database.StartSession(path, database.ActivityCreating, initSession)
	test.DemandSuccess(t, err)
	for _, s := range []string{"a", "b", "c"} {
		_, err := db.Add(note{text: s, cleaned: &cleaned})
		test.DemandSuccess(t, err)
	}

	test.ExpectSuccess(t, db.Delete(1))
	test.ExpectEquality(t, cleaned, 1)
	test.ExpectSuccess(t, errors.Is(db.Delete(1), database.ErrKey))

	// the spare key is reused
	key, err := db.Add(note{text: "d"})
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, key, 1)
	test.DemandSuccess(t, db.EndSession(true))

	db, err = database.StartSession(path, database.ActivityModifying, initSession)
	test.DemandSuccess(t, err)

	var seen []string
	err = db.SelectKeys(func(key int, ent database.Entry) (bool, error) {
		seen = append(seen, ent.String())
		return true, nil
	})
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, strings.Join(seen, ""), "adc")

	seen = seen[:0]
	err = db.SelectKeys(func(key int, ent database.Entry) (bool, error) {
		seen = append(seen, ent.String())
		return false, nil
	}, 2, 0)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, strings.Join(seen, ""), "a")

	err = db.SelectKeys(func(int, database.Entry) (bool, error) { return true, nil }, 7)
	test.ExpectSuccess(t, errors.Is(err, database.ErrKey))
}

func TestUnknownType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db")

	db, err := database.StartSession(path, database.ActivityCreating, initSession)
	test.DemandSuccess(t, err)
	_, err = db.Add(note{text: "a"})
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, db.EndSession(true))

	_, err = database.StartSession(path, database.ActivityReading, func(*database.Session) error { return nil })
	test.ExpectSuccess(t, errors.Is(err, database.ErrUnknownType))

	_, err = database.StartSession(path, database.ActivityReading, func(db *database.Session) error {
		if err := initSession(db); err != nil {
			return err
		}
		return initSession(db)
	})
	test.ExpectSuccess(t, errors.Is(err, database.ErrDuplicateType))
}
