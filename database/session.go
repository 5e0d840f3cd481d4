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

package database

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Sentinel errors returned by the database package.
var (
	ErrDuplicateType = errors.New("database: duplicate entry type")
	ErrUnknownType   = errors.New("database: unknown entry type")
	ErrKey           = errors.New("database: key not available")
	ErrFull          = errors.New("database: maximum entries exceeded")
	ErrReadOnly      = errors.New("database: session is read only")
	ErrEmpty         = errors.New("database: select empty")
)

// Activity is used to specify the type of activity that will be performed
// during the database session.
type Activity int

// List of valid Activity values. The order is important: a higher value
// implies the permissions of the lower values.
const (
	ActivityReading Activity = iota
	ActivityModifying
	ActivityCreating
)

const maxEntries = 1000

// the number of fields that precede the fields of every entry
const (
	leaderFieldKey int = iota
	leaderFieldID
	numLeaderFields
)

// Session keeps track of a database session.
type Session struct {
	path     string
	activity Activity

	entries    map[int]Entry
	entryTypes map[string]deserialiser
}

// StartSession starts/initialises a new DB session. The init function is
// called before the database file is read.
func StartSession(path string, activity Activity, init func(*Session) error) (*Session, error) {
	db := &Session{
		path:       path,
		activity:   activity,
		entries:    make(map[int]Entry),
		entryTypes: make(map[string]deserialiser),
	}

	if err := init(db); err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && activity == ActivityCreating {
			return db, nil
		}
		return nil, fmt.Errorf("database: %w", err)
	}
	defer f.Close()

	if err := db.readEntries(f); err != nil {
		return nil, err
	}

	return db, nil
}

func (db *Session) readEntries(r io.Reader) error {
	rd := csv.NewReader(r)
	rd.FieldsPerRecord = -1

	for {
		rec, err := rd.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}

		if len(rec) < numLeaderFields {
			return fmt.Errorf("database: malformed entry: %v", rec)
		}

		key, err := strconv.Atoi(rec[leaderFieldKey])
		if err != nil {
			return fmt.Errorf("database: invalid key %q", rec[leaderFieldKey])
		}
		if _, ok := db.entries[key]; ok {
			return fmt.Errorf("database: duplicate key %d", key)
		}

		des, ok := db.entryTypes[rec[leaderFieldID]]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownType, rec[leaderFieldID])
		}

		ent, err := des(rec[numLeaderFields:])
		if err != nil {
			return fmt.Errorf("database: entry %d: %w", key, err)
		}

		db.entries[key] = ent
	}
}

// EndSession closes the database session. If commitChanges is true and the
// session was started with an activity that allows modification then the
// database file is rewritten.
func (db *Session) EndSession(commitChanges bool) error {
	if !commitChanges || db.activity == ActivityReading {
		return nil
	}

	f, err := os.Create(db.path)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}

	wr := csv.NewWriter(f)
	for _, key := range db.SortedKeyList() {
		ent := db.entries[key]
		fields, err := ent.Serialise()
		if err != nil {
			_ = f.Close()
			return fmt.Errorf("database: %w", err)
		}
		rec := append([]string{fmt.Sprintf("%03d", key), ent.EntryType()}, fields...)
		if err := wr.Write(rec); err != nil {
			_ = f.Close()
			return fmt.Errorf("database: %w", err)
		}
	}
	wr.Flush()

	if err := wr.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("database: %w", err)
	}

	return f.Close()
}
