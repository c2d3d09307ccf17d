package roster

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/team-roster/pkg/core/model"
)

// mockSyncer records staged entries instead of persisting them.
type mockSyncer struct {
	mu       sync.Mutex
	enqueued []string
	saved    map[string]*model.RosterEntry
	saveErr  error
}

func (m *mockSyncer) Enqueue(date string, entry *model.RosterEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enqueued = append(m.enqueued, date)
}

func (m *mockSyncer) SaveAll(ctx context.Context, entries map[string]*model.RosterEntry) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = entries
	return nil
}

func newTestEditor() (*Editor, *Store, *mockSyncer) {
	store := NewStore()
	syncer := &mockSyncer{}
	return NewEditor(store, syncer, zap.NewNop()), store, syncer
}

func TestEditor_CycleStagesAndEnqueues(t *testing.T) {
	ed, store, syncer := newTestEditor()

	require.NoError(t, ed.CycleAssignment(worshipTeam(), "2025-06-01", "a@x.com", "Vocals"))

	entry, ok := store.Resolve("2025-06-01")
	require.True(t, ok)
	assert.Equal(t, []string{"Vocals"}, entry.Assignments("Worship", "a@x.com"))
	assert.Equal(t, []string{"2025-06-01"}, syncer.enqueued)
}

func TestEditor_CycleScenarioVocalsGroup(t *testing.T) {
	// Worship has maxConflict 1 and group Vocals=[Vocals, BackupVocals].
	ed, store, _ := newTestEditor()
	team := worshipTeam()

	require.NoError(t, ed.CycleAssignment(team, "2025-06-01", "a@x.com", "Vocals"))
	entry, _ := store.Resolve("2025-06-01")
	assert.Equal(t, []string{"Vocals"}, entry.Assignments("Worship", "a@x.com"))

	require.NoError(t, ed.CycleAssignment(team, "2025-06-01", "a@x.com", "Vocals"))
	entry, _ = store.Resolve("2025-06-01")
	assert.Equal(t, []string{"BackupVocals"}, entry.Assignments("Worship", "a@x.com"))

	require.NoError(t, ed.CycleAssignment(team, "2025-06-01", "a@x.com", "Vocals"))
	entry, _ = store.Resolve("2025-06-01")
	assert.NotContains(t, entry.Teams, "Worship")
}

func TestEditor_CycleRejectionStagesNothing(t *testing.T) {
	ed, store, syncer := newTestEditor()

	synced := model.NewRosterEntry()
	synced.Absence["a@x.com"] = model.AbsenceRecord{}
	store.ApplySnapshot("2025-06-01", synced)

	err := ed.CycleAssignment(worshipTeam(), "2025-06-01", "a@x.com", "Vocals")
	assert.ErrorIs(t, err, ErrAbsentConflict)
	assert.Zero(t, store.DirtyCount())
	assert.Empty(t, syncer.enqueued)
}

func TestEditor_MarkAbsentRequiresConfirmation(t *testing.T) {
	ed, store, _ := newTestEditor()

	synced := model.NewRosterEntry()
	synced.Teams["Worship"] = model.TeamAssignments{"b@x.com": {"Vocals"}}
	synced.Teams["Band"] = model.TeamAssignments{"b@x.com": {"Drums"}}
	store.ApplySnapshot("2025-06-01", synced)

	err := ed.MarkAbsent("2025-06-01", "b@x.com", "away", false)

	var confirmErr *ConfirmationRequiredError
	require.ErrorAs(t, err, &confirmErr)
	require.Len(t, confirmErr.Conflicts, 2)
	assert.Equal(t, "Band: Drums", confirmErr.Conflicts[0].String())
	assert.Equal(t, "Worship: Vocals", confirmErr.Conflicts[1].String())

	// Declining is a full cancel - nothing staged.
	assert.Zero(t, store.DirtyCount())

	// Confirming applies the destructive toggle across both teams.
	require.NoError(t, ed.MarkAbsent("2025-06-01", "b@x.com", "away", true))
	entry, _ := store.Resolve("2025-06-01")
	assert.NotContains(t, entry.Teams, "Worship")
	assert.NotContains(t, entry.Teams, "Band")
	assert.Equal(t, "away", entry.Absence["b@x.com"].Reason)
}

func TestEditor_MarkAbsentWithoutConflictsNeedsNoConfirmation(t *testing.T) {
	ed, store, _ := newTestEditor()

	require.NoError(t, ed.MarkAbsent("2025-06-01", "a@x.com", "holiday", false))

	entry, ok := store.Resolve("2025-06-01")
	require.True(t, ok)
	assert.Equal(t, "holiday", entry.Absence["a@x.com"].Reason)
}

func TestEditor_MarkPresent(t *testing.T) {
	ed, store, _ := newTestEditor()
	require.NoError(t, ed.MarkAbsent("2025-06-01", "a@x.com", "holiday", false))

	require.NoError(t, ed.MarkPresent("2025-06-01", "a@x.com"))

	entry, _ := store.Resolve("2025-06-01")
	assert.NotContains(t, entry.Absence, "a@x.com")
}

func TestEditor_UpdateAbsenceReason(t *testing.T) {
	ed, store, _ := newTestEditor()

	err := ed.UpdateAbsenceReason("2025-06-01", "a@x.com", "travel")
	assert.ErrorIs(t, err, ErrNotAbsent)

	require.NoError(t, ed.MarkAbsent("2025-06-01", "a@x.com", "", false))
	require.NoError(t, ed.UpdateAbsenceReason("2025-06-01", "a@x.com", "travel"))

	entry, _ := store.Resolve("2025-06-01")
	assert.Equal(t, "travel", entry.Absence["a@x.com"].Reason)
}

func TestEditor_SetEventName(t *testing.T) {
	ed, store, _ := newTestEditor()

	require.NoError(t, ed.SetEventName("2025-06-01", "Pentecost"))

	entry, _ := store.Resolve("2025-06-01")
	assert.Equal(t, "Pentecost", entry.EventName)
}

func TestEditor_SaveCommitsOnSuccess(t *testing.T) {
	ed, store, syncer := newTestEditor()
	require.NoError(t, ed.SetEventName("2025-06-01", "Pentecost"))

	require.NoError(t, ed.Save(context.Background()))

	assert.Zero(t, store.DirtyCount())
	require.Contains(t, syncer.saved, "2025-06-01")
	assert.Equal(t, "Pentecost", syncer.saved["2025-06-01"].EventName)
}

func TestEditor_SaveKeepsDirtyOnFailure(t *testing.T) {
	ed, store, syncer := newTestEditor()
	syncer.saveErr = errors.New("backend unavailable")
	require.NoError(t, ed.SetEventName("2025-06-01", "Pentecost"))

	err := ed.Save(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, store.DirtyCount())
}

func TestEditor_SaveWithNothingDirtyIsNoOp(t *testing.T) {
	ed, _, syncer := newTestEditor()
	require.NoError(t, ed.Save(context.Background()))
	assert.Nil(t, syncer.saved)
}

func TestEditor_DiscardReverts(t *testing.T) {
	ed, store, _ := newTestEditor()
	require.NoError(t, ed.SetEventName("2025-06-01", "Pentecost"))

	ed.Discard()

	_, ok := store.Resolve("2025-06-01")
	assert.False(t, ok)
}
