package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/team-roster/pkg/core/model"
)

func entryWithTwoTeamAssignments() *model.RosterEntry {
	entry := model.NewRosterEntry()
	entry.Teams["Worship"] = model.TeamAssignments{
		"b@x.com": {"Vocals"},
		"c@x.com": {"Drums"},
	}
	entry.Teams["Band"] = model.TeamAssignments{
		"b@x.com": {"Drums"},
	}
	return entry
}

func TestAssignmentConflicts_ListsEveryTeamSorted(t *testing.T) {
	entry := entryWithTwoTeamAssignments()

	conflicts := AssignmentConflicts(entry, "b@x.com")
	require.Len(t, conflicts, 2)
	assert.Equal(t, TeamConflict{Team: "Band", Positions: []string{"Drums"}}, conflicts[0])
	assert.Equal(t, TeamConflict{Team: "Worship", Positions: []string{"Vocals"}}, conflicts[1])
}

func TestAssignmentConflicts_NoneForUnassignedUser(t *testing.T) {
	entry := entryWithTwoTeamAssignments()
	assert.Empty(t, AssignmentConflicts(entry, "a@x.com"))
	assert.Empty(t, AssignmentConflicts(nil, "a@x.com"))
}

func TestMarkAbsent_ClearsAssignmentsInEveryTeam(t *testing.T) {
	entry := entryWithTwoTeamAssignments()

	MarkAbsent(entry, "b@x.com", "away")

	assert.Equal(t, model.AbsenceRecord{Reason: "away"}, entry.Absence["b@x.com"])
	assert.NotContains(t, entry.Teams["Worship"], "b@x.com")
	// Band had only this user, so the team map drops out entirely.
	assert.NotContains(t, entry.Teams, "Band")
	// Other users are untouched.
	assert.Equal(t, []string{"Drums"}, entry.Assignments("Worship", "c@x.com"))
}

func TestMarkAbsent_EmptyReasonKeepsStoredReason(t *testing.T) {
	entry := model.NewRosterEntry()
	entry.Absence["b@x.com"] = model.AbsenceRecord{Reason: "illness"}

	MarkAbsent(entry, "b@x.com", "")
	assert.Equal(t, "illness", entry.Absence["b@x.com"].Reason)
}

func TestMarkPresent_DoesNotRestoreAssignments(t *testing.T) {
	entry := entryWithTwoTeamAssignments()
	MarkAbsent(entry, "b@x.com", "away")

	MarkPresent(entry, "b@x.com")

	assert.NotContains(t, entry.Absence, "b@x.com")
	assert.NotContains(t, entry.Teams["Worship"], "b@x.com")
	assert.NotContains(t, entry.Teams, "Band")
}

func TestUpdateAbsenceReason(t *testing.T) {
	entry := model.NewRosterEntry()

	err := UpdateAbsenceReason(entry, "b@x.com", "late flight")
	assert.ErrorIs(t, err, ErrNotAbsent)

	entry.Absence["b@x.com"] = model.AbsenceRecord{Reason: "travel"}
	require.NoError(t, UpdateAbsenceReason(entry, "b@x.com", "late flight"))
	assert.Equal(t, "late flight", entry.Absence["b@x.com"].Reason)
}
