package roster

import (
	"sort"

	"github.com/jakechorley/team-roster/pkg/core/model"
)

// AssignmentConflicts lists every team where the user holds at least one
// position on the entry, sorted by team name so confirmation prompts are
// stable. An empty result means marking the user absent is non-destructive.
func AssignmentConflicts(entry *model.RosterEntry, user string) []TeamConflict {
	if entry == nil {
		return nil
	}

	var conflicts []TeamConflict
	for team, assignments := range entry.Teams {
		if positions := assignments[user]; len(positions) > 0 {
			conflicts = append(conflicts, TeamConflict{
				Team:      team,
				Positions: append([]string(nil), positions...),
			})
		}
	}

	sort.Slice(conflicts, func(i, j int) bool {
		return conflicts[i].Team < conflicts[j].Team
	})

	return conflicts
}

// MarkAbsent records the absence and clears the user's assignments from
// every team on the entry. An empty reason keeps any previously stored one.
// The entry is mutated in place - callers pass a clone.
func MarkAbsent(entry *model.RosterEntry, user, reason string) {
	if reason == "" {
		if existing, ok := entry.Absence[user]; ok {
			reason = existing.Reason
		}
	}

	if entry.Absence == nil {
		entry.Absence = make(map[string]model.AbsenceRecord)
	}
	entry.Absence[user] = model.AbsenceRecord{Reason: reason}

	for team, assignments := range entry.Teams {
		delete(assignments, user)
		if len(assignments) == 0 {
			delete(entry.Teams, team)
		}
	}
}

// MarkPresent removes the absence record. Assignments cleared when the user
// was marked absent are not restored.
func MarkPresent(entry *model.RosterEntry, user string) {
	delete(entry.Absence, user)
}

// UpdateAbsenceReason edits the stored reason in place. It is only valid
// while the user is marked absent.
func UpdateAbsenceReason(entry *model.RosterEntry, user, reason string) error {
	if !entry.IsAbsent(user) {
		return ErrNotAbsent
	}
	entry.Absence[user] = model.AbsenceRecord{Reason: reason}
	return nil
}
