package roster

import (
	"sort"
	"sync"

	"github.com/jakechorley/team-roster/pkg/core/model"
)

// Store holds the two parallel views of roster entries: the last
// server-confirmed state, updated only by the sync stream, and the dirty
// overlay of local optimistic edits. Dirty always shadows synced on reads.
//
// The store is safe for concurrent use: the watch stream delivers
// authoritative snapshots from its own goroutine while the edit path runs
// on another.
type Store struct {
	mu     sync.RWMutex
	synced map[string]*model.RosterEntry
	dirty  map[string]*model.RosterEntry
}

// NewStore creates an empty entry store.
func NewStore() *Store {
	return &Store{
		synced: make(map[string]*model.RosterEntry),
		dirty:  make(map[string]*model.RosterEntry),
	}
}

// Resolve returns a copy of the entry visible for the date
// (dirty over synced), and whether any entry exists.
func (s *Store) Resolve(date string) (*model.RosterEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if entry, ok := s.dirty[date]; ok {
		return entry.Clone(), true
	}
	if entry, ok := s.synced[date]; ok {
		return entry.Clone(), true
	}
	return nil, false
}

// ResolveForEdit returns a deep copy of the visible entry for the date, or
// a fresh empty entry when none exists. Entries are created lazily on
// first edit.
func (s *Store) ResolveForEdit(date string) *model.RosterEntry {
	entry, ok := s.Resolve(date)
	if !ok {
		return model.NewRosterEntry()
	}
	return entry
}

// Stage records an edited entry in the dirty overlay.
func (s *Store) Stage(date string, entry *model.RosterEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty[date] = entry
}

// ApplySnapshot records an authoritative entry from the sync stream. A
// dirty edit for the same date keeps shadowing it until saved or
// discarded.
func (s *Store) ApplySnapshot(date string, entry *model.RosterEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.synced[date] = entry.Clone()
}

// RemoveSynced drops the authoritative entry for a date (document deleted
// upstream).
func (s *Store) RemoveSynced(date string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.synced, date)
}

// DirtyDates returns the dates with unsaved edits, sorted ascending.
func (s *Store) DirtyDates() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dates := make([]string, 0, len(s.dirty))
	for date := range s.dirty {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

// DirtyEntries returns copies of all unsaved edits keyed by date.
func (s *Store) DirtyEntries() map[string]*model.RosterEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make(map[string]*model.RosterEntry, len(s.dirty))
	for date, entry := range s.dirty {
		entries[date] = entry.Clone()
	}
	return entries
}

// DirtyCount returns the number of unsaved entries.
func (s *Store) DirtyCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.dirty)
}

// Commit merges all dirty entries into the synced view and clears the
// overlay, after a successful bulk save.
func (s *Store) Commit() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for date, entry := range s.dirty {
		s.synced[date] = entry
	}
	s.dirty = make(map[string]*model.RosterEntry)
}

// Discard drops all unsaved edits, reverting every read to the last
// synced state.
func (s *Store) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = make(map[string]*model.RosterEntry)
}
