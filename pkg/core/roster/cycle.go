package roster

import (
	"slices"

	"github.com/jakechorley/team-roster/pkg/core/model"
)

// CycleAssignment advances a user's assignment within a position group on
// the given entry, implementing the click-to-cycle rule:
//
//	none -> group[0] -> group[1] -> ... -> group[last] -> none
//
// Assignments outside the group are carried forward untouched, so a user
// can hold a position in one group while cycling within another.
//
// The entry is mutated in place - callers pass a clone, never shared state.
// Validation failures (ErrAbsentConflict, ErrMaxConflictExceeded) are
// detected before any mutation is applied.
func CycleAssignment(entry *model.RosterEntry, team model.Team, user string, group []string) error {
	if len(group) == 0 {
		return nil
	}

	current := entry.Assignments(team.Name, user)

	// At most one group member is present, by invariant.
	currentIndex := -1
	for i, name := range group {
		if slices.Contains(current, name) {
			currentIndex = i
			break
		}
	}

	var next string
	switch {
	case currentIndex == -1:
		next = group[0]
	case currentIndex == len(group)-1:
		next = "" // cycle closes back to unassigned
	default:
		next = group[currentIndex+1]
	}

	kept := make([]string, 0, len(current))
	for _, name := range current {
		if !slices.Contains(group, name) {
			kept = append(kept, name)
		}
	}

	if next != "" {
		if entry.IsAbsent(user) {
			return ErrAbsentConflict
		}
		if len(kept) >= team.EffectiveMaxConflict() {
			return ErrMaxConflictExceeded
		}
		kept = append(kept, next)
	}

	writeAssignments(entry, team.Name, user, kept)
	return nil
}

// writeAssignments stores the user's assignment list sparsely: empty lists
// remove the user key, and a team with no assignees drops out entirely.
func writeAssignments(entry *model.RosterEntry, team, user string, assignments []string) {
	if len(assignments) == 0 {
		delete(entry.Teams[team], user)
		if len(entry.Teams[team]) == 0 {
			delete(entry.Teams, team)
		}
		return
	}

	if entry.Teams == nil {
		entry.Teams = make(map[string]model.TeamAssignments)
	}
	if entry.Teams[team] == nil {
		entry.Teams[team] = make(model.TeamAssignments)
	}
	entry.Teams[team][user] = assignments
}
