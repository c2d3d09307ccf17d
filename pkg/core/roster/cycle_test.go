package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/team-roster/pkg/core/model"
)

func worshipTeam() model.Team {
	return model.Team{
		Name: "Worship",
		Positions: []model.Position{
			{Name: "Vocals"},
			{Name: "BackupVocals", ParentID: "Vocals"},
			{Name: "Drums"},
		},
		MaxConflict:  1,
		AllowAbsence: true,
	}
}

func TestCycleAssignment_ClickThroughGroup(t *testing.T) {
	team := worshipTeam()
	group := []string{"Vocals", "BackupVocals"}
	entry := model.NewRosterEntry()

	// First click assigns the group head.
	require.NoError(t, CycleAssignment(entry, team, "a@x.com", group))
	assert.Equal(t, []string{"Vocals"}, entry.Assignments("Worship", "a@x.com"))

	// Second click moves to the child; list length stays 1.
	require.NoError(t, CycleAssignment(entry, team, "a@x.com", group))
	assert.Equal(t, []string{"BackupVocals"}, entry.Assignments("Worship", "a@x.com"))

	// Third click unassigns and removes the user key entirely.
	require.NoError(t, CycleAssignment(entry, team, "a@x.com", group))
	assert.Nil(t, entry.Assignments("Worship", "a@x.com"))
	assert.NotContains(t, entry.Teams, "Worship")
}

func TestCycleAssignment_CycleClosure(t *testing.T) {
	// len(group)+1 clicks always return to the unassigned state.
	groups := [][]string{
		{"Vocals"},
		{"Vocals", "BackupVocals"},
		{"Vocals", "BackupVocals", "HarmonyVocals"},
	}

	team := worshipTeam()
	for _, group := range groups {
		entry := model.NewRosterEntry()
		for i := 0; i <= len(group); i++ {
			require.NoError(t, CycleAssignment(entry, team, "a@x.com", group))
		}
		assert.Empty(t, entry.Assignments("Worship", "a@x.com"),
			"group of %d should close after %d clicks", len(group), len(group)+1)
	}
}

func TestCycleAssignment_AbsentUserRejected(t *testing.T) {
	team := worshipTeam()
	entry := model.NewRosterEntry()
	entry.Absence["a@x.com"] = model.AbsenceRecord{Reason: "holiday"}

	err := CycleAssignment(entry, team, "a@x.com", []string{"Vocals"})
	assert.ErrorIs(t, err, ErrAbsentConflict)

	// No mutation applied.
	assert.Empty(t, entry.Teams)
	assert.Equal(t, model.AbsenceRecord{Reason: "holiday"}, entry.Absence["a@x.com"])
}

func TestCycleAssignment_UnassigningAbsentUserAllowed(t *testing.T) {
	// Cycling off the last group member needs no absence check - the
	// transition to none only removes an assignment.
	team := worshipTeam()
	entry := model.NewRosterEntry()
	entry.Teams["Worship"] = model.TeamAssignments{"a@x.com": {"Vocals"}}
	entry.Absence["a@x.com"] = model.AbsenceRecord{}

	err := CycleAssignment(entry, team, "a@x.com", []string{"Vocals"})
	require.NoError(t, err)
	assert.NotContains(t, entry.Teams, "Worship")
}

func TestCycleAssignment_MaxConflictRejected(t *testing.T) {
	team := worshipTeam() // maxConflict 1
	entry := model.NewRosterEntry()
	entry.Teams["Worship"] = model.TeamAssignments{"a@x.com": {"Drums"}}

	err := CycleAssignment(entry, team, "a@x.com", []string{"Vocals", "BackupVocals"})
	assert.ErrorIs(t, err, ErrMaxConflictExceeded)
	assert.Equal(t, []string{"Drums"}, entry.Assignments("Worship", "a@x.com"))
}

func TestCycleAssignment_HigherMaxConflictAllowsSecondGroup(t *testing.T) {
	team := worshipTeam()
	team.MaxConflict = 2
	entry := model.NewRosterEntry()
	entry.Teams["Worship"] = model.TeamAssignments{"a@x.com": {"Drums"}}

	require.NoError(t, CycleAssignment(entry, team, "a@x.com", []string{"Vocals", "BackupVocals"}))
	assert.Equal(t, []string{"Drums", "Vocals"}, entry.Assignments("Worship", "a@x.com"))
}

func TestCycleAssignment_OtherAssignmentsCarriedForward(t *testing.T) {
	// Cycling within group B leaves a held position from group A alone,
	// including on the transition back to none.
	team := worshipTeam()
	team.MaxConflict = 2
	entry := model.NewRosterEntry()
	entry.Teams["Worship"] = model.TeamAssignments{"a@x.com": {"Drums", "BackupVocals"}}

	require.NoError(t, CycleAssignment(entry, team, "a@x.com", []string{"Vocals", "BackupVocals"}))
	assert.Equal(t, []string{"Drums"}, entry.Assignments("Worship", "a@x.com"))
}

func TestCycleAssignment_DefaultMaxConflictIsOne(t *testing.T) {
	team := model.Team{Name: "Band"} // MaxConflict unset
	entry := model.NewRosterEntry()
	entry.Teams["Band"] = model.TeamAssignments{"a@x.com": {"Drums"}}

	err := CycleAssignment(entry, team, "a@x.com", []string{"Keys"})
	assert.ErrorIs(t, err, ErrMaxConflictExceeded)
}

func TestCycleAssignment_EmptyGroupIsNoOp(t *testing.T) {
	entry := model.NewRosterEntry()
	require.NoError(t, CycleAssignment(entry, worshipTeam(), "a@x.com", nil))
	assert.Empty(t, entry.Teams)
}

func TestCycleAssignment_CustomLabelIdentifier(t *testing.T) {
	// Custom position types cycle arbitrary labels, not user emails.
	team := worshipTeam()
	entry := model.NewRosterEntry()

	require.NoError(t, CycleAssignment(entry, team, "Guest Speaker", []string{"Vocals"}))
	assert.Equal(t, []string{"Vocals"}, entry.Assignments("Worship", "Guest Speaker"))
}
