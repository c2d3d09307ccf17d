// Package db provides typed repositories over the document store: roster
// entries keyed by ISO date, team/position metadata as singleton documents,
// and users keyed by auth UID.
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jakechorley/team-roster/pkg/core/model"
	"github.com/jakechorley/team-roster/pkg/docstore"
)

// Collection and document IDs forming the de facto schema.
const (
	CollectionEntries = "rosterEntries"
	CollectionMeta    = "meta"
	CollectionUsers   = "users"

	DocTeams = "teams"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = docstore.ErrNotFound

// DB provides roster persistence over a document store.
type DB struct {
	store docstore.Store
}

// New creates a DB over the given document store.
func New(store docstore.Store) *DB {
	return &DB{store: store}
}

// Store exposes the underlying document store for utilities that need raw
// access, like the date migration.
func (d *DB) Store() docstore.Store {
	return d.store
}

// GetEntry fetches the roster entry for a date.
func (d *DB) GetEntry(ctx context.Context, date string) (*model.RosterEntry, error) {
	data, err := d.store.Get(ctx, CollectionEntries, date)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get entry %s: %w", date, err)
	}

	var entry model.RosterEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to decode entry %s: %w", date, err)
	}
	return &entry, nil
}

// ListEntries fetches all roster entries keyed by date.
func (d *DB) ListEntries(ctx context.Context) (map[string]*model.RosterEntry, error) {
	docs, err := d.store.List(ctx, CollectionEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	entries := make(map[string]*model.RosterEntry, len(docs))
	for date, data := range docs {
		var entry model.RosterEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			return nil, fmt.Errorf("failed to decode entry %s: %w", date, err)
		}
		entries[date] = &entry
	}
	return entries, nil
}

// SaveEntry overwrites the whole entry document for a date. UpdatedAt is
// stamped on save.
func (d *DB) SaveEntry(ctx context.Context, date string, entry *model.RosterEntry) error {
	data, err := marshalEntry(entry)
	if err != nil {
		return fmt.Errorf("failed to encode entry %s: %w", date, err)
	}

	if err := d.store.Set(ctx, CollectionEntries, date, data); err != nil {
		return fmt.Errorf("failed to save entry %s: %w", date, err)
	}
	return nil
}

// SaveEntries writes all entries as full-document overwrites, batched and
// chunked to the store's per-batch operation cap.
func (d *DB) SaveEntries(ctx context.Context, entries map[string]*model.RosterEntry) error {
	dates := make([]string, 0, len(entries))
	for date := range entries {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	ops := make([]docstore.Op, 0, len(dates))
	for _, date := range dates {
		data, err := marshalEntry(entries[date])
		if err != nil {
			return fmt.Errorf("failed to encode entry %s: %w", date, err)
		}
		ops = append(ops, docstore.Op{
			Kind:       docstore.OpSet,
			Collection: CollectionEntries,
			ID:         date,
			Data:       data,
		})
	}

	for start := 0; start < len(ops); start += docstore.MaxBatchOps {
		end := min(start+docstore.MaxBatchOps, len(ops))
		if err := d.store.ApplyBatch(ctx, ops[start:end]); err != nil {
			return fmt.Errorf("failed to apply entry batch: %w", err)
		}
	}
	return nil
}

// EntryEvent is one change on the entry collection.
type EntryEvent struct {
	Date    string
	Entry   *model.RosterEntry
	Deleted bool
}

// WatchEntries streams entry changes until ctx is cancelled. Documents
// that fail to decode are dropped from the stream.
func (d *DB) WatchEntries(ctx context.Context) (<-chan EntryEvent, error) {
	raw, err := d.store.Watch(ctx, CollectionEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to watch entries: %w", err)
	}

	events := make(chan EntryEvent)
	go func() {
		defer close(events)
		for event := range raw {
			if event.Deleted {
				events <- EntryEvent{Date: event.ID, Deleted: true}
				continue
			}

			var entry model.RosterEntry
			if err := json.Unmarshal(event.Data, &entry); err != nil {
				continue
			}
			events <- EntryEvent{Date: event.ID, Entry: &entry}
		}
	}()
	return events, nil
}

func marshalEntry(entry *model.RosterEntry) ([]byte, error) {
	stamped := entry.Clone()
	stamped.UpdatedAt = time.Now().UTC()
	return json.Marshal(stamped)
}
