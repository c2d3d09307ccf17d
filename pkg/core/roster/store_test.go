package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/team-roster/pkg/core/model"
)

func TestStore_DirtyShadowsSynced(t *testing.T) {
	store := NewStore()

	synced := model.NewRosterEntry()
	synced.EventName = "synced"
	store.ApplySnapshot("2025-06-01", synced)

	entry, ok := store.Resolve("2025-06-01")
	require.True(t, ok)
	assert.Equal(t, "synced", entry.EventName)

	dirty := model.NewRosterEntry()
	dirty.EventName = "edited"
	store.Stage("2025-06-01", dirty)

	entry, ok = store.Resolve("2025-06-01")
	require.True(t, ok)
	assert.Equal(t, "edited", entry.EventName)
}

func TestStore_SnapshotDoesNotClobberDirty(t *testing.T) {
	store := NewStore()

	dirty := model.NewRosterEntry()
	dirty.EventName = "edited"
	store.Stage("2025-06-01", dirty)

	// A concurrent other-client edit arrives via the stream.
	remote := model.NewRosterEntry()
	remote.EventName = "remote"
	store.ApplySnapshot("2025-06-01", remote)

	entry, ok := store.Resolve("2025-06-01")
	require.True(t, ok)
	assert.Equal(t, "edited", entry.EventName)
}

func TestStore_DiscardRevertsToSynced(t *testing.T) {
	store := NewStore()

	synced := model.NewRosterEntry()
	synced.EventName = "synced"
	store.ApplySnapshot("2025-06-01", synced)

	dirty := model.NewRosterEntry()
	dirty.EventName = "edited"
	store.Stage("2025-06-01", dirty)
	store.Stage("2025-06-08", model.NewRosterEntry())

	store.Discard()

	entry, ok := store.Resolve("2025-06-01")
	require.True(t, ok)
	assert.Equal(t, "synced", entry.EventName)

	// A date that only existed as a dirty edit reverts to absent.
	_, ok = store.Resolve("2025-06-08")
	assert.False(t, ok)
	assert.Zero(t, store.DirtyCount())
}

func TestStore_CommitMergesDirtyIntoSynced(t *testing.T) {
	store := NewStore()

	dirty := model.NewRosterEntry()
	dirty.EventName = "edited"
	store.Stage("2025-06-01", dirty)

	store.Commit()

	assert.Zero(t, store.DirtyCount())
	entry, ok := store.Resolve("2025-06-01")
	require.True(t, ok)
	assert.Equal(t, "edited", entry.EventName)
}

func TestStore_ResolveForEditNeverAliases(t *testing.T) {
	store := NewStore()

	synced := model.NewRosterEntry()
	synced.Teams["Worship"] = model.TeamAssignments{"a@x.com": {"Vocals"}}
	store.ApplySnapshot("2025-06-01", synced)

	clone := store.ResolveForEdit("2025-06-01")
	clone.Teams["Worship"]["a@x.com"] = []string{"Drums"}
	clone.EventName = "mutated"

	// The synced view is unchanged until the clone is staged.
	entry, ok := store.Resolve("2025-06-01")
	require.True(t, ok)
	assert.Equal(t, []string{"Vocals"}, entry.Assignments("Worship", "a@x.com"))
	assert.Empty(t, entry.EventName)
}

func TestStore_ResolveForEditCreatesLazily(t *testing.T) {
	store := NewStore()

	entry := store.ResolveForEdit("2025-06-01")
	require.NotNil(t, entry)
	assert.Empty(t, entry.Teams)

	// Resolving without staging still reports no entry.
	_, ok := store.Resolve("2025-06-01")
	assert.False(t, ok)
}

func TestStore_RemoveSynced(t *testing.T) {
	store := NewStore()
	store.ApplySnapshot("2025-06-01", model.NewRosterEntry())

	store.RemoveSynced("2025-06-01")

	_, ok := store.Resolve("2025-06-01")
	assert.False(t, ok)
}

func TestStore_DirtyDatesSorted(t *testing.T) {
	store := NewStore()
	store.Stage("2025-06-08", model.NewRosterEntry())
	store.Stage("2025-06-01", model.NewRosterEntry())

	assert.Equal(t, []string{"2025-06-01", "2025-06-08"}, store.DirtyDates())
}
