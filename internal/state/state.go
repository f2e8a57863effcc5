// Package state provides a journaled write overlay over a storage.DB.
//
// Reads fall through to the backing store; writes stay in memory until
// Commit flushes them in a single atomic batch. Snapshot and RevertTo let
// a caller undo a partially applied operation.
package state

import (
	"errors"
	"fmt"
	"sort"

	"github.com/teut-network/teutledger/internal/storage"
)

type journalEntry struct {
	key     string
	prev    []byte
	hadPrev bool
}

// State is a mutable view of ledger state. It is not safe for concurrent use.
type State struct {
	db      storage.DB
	dirty   map[string][]byte // nil value marks a deletion
	journal []journalEntry
}

// New creates an overlay on top of db.
func New(db storage.DB) *State {
	return &State{
		db:    db,
		dirty: make(map[string][]byte),
	}
}

// Get returns the value at key, or nil if the key is absent.
func (s *State) Get(key []byte) ([]byte, error) {
	if v, ok := s.dirty[string(key)]; ok {
		return v, nil
	}
	v, err := s.db.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("state get: %w", err)
	}
	return v, nil
}

// Has reports whether key holds a value.
func (s *State) Has(key []byte) (bool, error) {
	v, err := s.Get(key)
	if err != nil {
		return false, err
	}
	return v != nil, nil
}

// Put sets key to value. An empty value deletes the key.
func (s *State) Put(key, value []byte) {
	if len(value) == 0 {
		s.Delete(key)
		return
	}
	cpy := make([]byte, len(value))
	copy(cpy, value)
	s.set(string(key), cpy)
}

// Delete removes key.
func (s *State) Delete(key []byte) {
	s.set(string(key), nil)
}

func (s *State) set(key string, value []byte) {
	prev, ok := s.dirty[key]
	s.journal = append(s.journal, journalEntry{key: key, prev: prev, hadPrev: ok})
	s.dirty[key] = value
}

// Snapshot returns a revision that RevertTo can roll back to.
func (s *State) Snapshot() int {
	return len(s.journal)
}

// RevertTo undoes every write made after the given snapshot.
func (s *State) RevertTo(rev int) {
	if rev < 0 {
		rev = 0
	}
	for i := len(s.journal) - 1; i >= rev; i-- {
		e := s.journal[i]
		if e.hadPrev {
			s.dirty[e.key] = e.prev
		} else {
			delete(s.dirty, e.key)
		}
	}
	if rev < len(s.journal) {
		s.journal = s.journal[:rev]
	}
}

// Pending returns the number of keys that Commit would write.
func (s *State) Pending() int {
	return len(s.dirty)
}

// Commit writes all pending changes to the backing store atomically and
// resets the overlay.
func (s *State) Commit() error {
	if len(s.dirty) == 0 {
		return nil
	}
	keys := make([]string, 0, len(s.dirty))
	for k := range s.dirty {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b := storage.NewBatch(s.db)
	for _, k := range keys {
		v := s.dirty[k]
		var err error
		if v == nil {
			err = b.Delete([]byte(k))
		} else {
			err = b.Put([]byte(k), v)
		}
		if err != nil {
			return fmt.Errorf("state commit: %w", err)
		}
	}
	if err := b.Commit(); err != nil {
		return fmt.Errorf("state commit: %w", err)
	}
	s.Discard()
	return nil
}

// Discard drops all pending changes.
func (s *State) Discard() {
	s.dirty = make(map[string][]byte)
	s.journal = nil
}
