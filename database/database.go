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
	"fmt"
	"io"
	"slices"
	"sort"
)

// NumEntries returns the number of entries in the database.
func (db Session) NumEntries() int {
	return len(db.entries)
}

// SortedKeyList returns a sorted list of database keys.
func (db Session) SortedKeyList() []int {
	keyList := make([]int, 0, len(db.entries))
	for k := range db.entries {
		keyList = append(keyList, k)
	}
	sort.Ints(keyList)
	return keyList
}

// List the entries in key order.
func (db Session) List(output io.Writer) error {
	if db.NumEntries() == 0 {
		_, err := fmt.Fprintln(output, "database is empty")
		return err
	}

	for _, key := range db.SortedKeyList() {
		if _, err := fmt.Fprintf(output, "%03d %s\n", key, db.entries[key]); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(output, "Total: %d\n", db.NumEntries())
	return err
}

// Get returns the entry with the specified key.
func (db Session) Get(key int) (Entry, error) {
	ent, ok := db.entries[key]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrKey, key)
	}
	return ent, nil
}

// Add an entry to the db. Returns the key of the new entry.
func (db *Session) Add(ent Entry) (int, error) {
	if db.activity < ActivityModifying {
		return 0, ErrReadOnly
	}
	if _, ok := db.entryTypes[ent.EntryType()]; !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownType, ent.EntryType())
	}

	// find spare key
	var key int
	for key = 0; key < maxEntries; key++ {
		if _, ok := db.entries[key]; !ok {
			break
		}
	}

	if key == maxEntries {
		return 0, fmt.Errorf("%w (max %d)", ErrFull, maxEntries)
	}

	db.entries[key] = ent

	return key, nil
}

// Delete deletes an entry with the specified key from the database.
func (db *Session) Delete(key int) error {
	if db.activity < ActivityModifying {
		return ErrReadOnly
	}

	ent, ok := db.entries[key]
	if !ok {
		return fmt.Errorf("%w: %d", ErrKey, key)
	}

	if err := ent.CleanUp(); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	delete(db.entries, key)

	return nil
}

// SelectKeys calls the onSelect function for every entry in the list of keys,
// in key order. If the list of keys is empty then every entry is selected.
// Selection stops if onSelect returns false or an error.
func (db Session) SelectKeys(onSelect func(key int, ent Entry) (bool, error), keys ...int) error {
	keyList := slices.Clone(keys)
	if len(keyList) == 0 {
		keyList = db.SortedKeyList()
	}
	sort.Ints(keyList)

	if len(keyList) == 0 {
		return ErrEmpty
	}

	for _, key := range keyList {
		ent, ok := db.entries[key]
		if !ok {
			return fmt.Errorf("%w: %d", ErrKey, key)
		}
		cont, err := onSelect(key, ent)
		if err != nil {
			return err
		}
		if !cont {
			break
		}
	}

	return nil
}
