package roster

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/team-roster/pkg/core/model"
	"github.com/jakechorley/team-roster/pkg/core/positions"
)

// EntrySyncer receives staged entries for remote persistence. Enqueue is
// the optimistic per-click path and must not block the caller; SaveAll is
// the bulk save of every dirty entry.
type EntrySyncer interface {
	Enqueue(date string, entry *model.RosterEntry)
	SaveAll(ctx context.Context, entries map[string]*model.RosterEntry) error
}

// Editor applies roster edits as commands against the entry store: each
// operation clones the visible entry, mutates the clone, stages it as
// dirty and hands it to the syncer. Validation failures leave both views
// untouched.
type Editor struct {
	store  *Store
	syncer EntrySyncer
	logger *zap.Logger
}

// NewEditor creates an editor over the given store and syncer.
func NewEditor(store *Store, syncer EntrySyncer, logger *zap.Logger) *Editor {
	return &Editor{
		store:  store,
		syncer: syncer,
		logger: logger,
	}
}

// CycleAssignment advances the user's assignment for the clicked position's
// group on the given team and date.
func (ed *Editor) CycleAssignment(team model.Team, date, user, position string) error {
	group := positions.Group(team.Positions, position)

	entry := ed.store.ResolveForEdit(date)
	if err := CycleAssignment(entry, team, user, group); err != nil {
		ed.logger.Warn("Assignment cycle rejected",
			zap.String("date", date),
			zap.String("team", team.Name),
			zap.String("user", user),
			zap.String("position", position),
			zap.Error(err))
		return err
	}

	ed.logger.Debug("Assignment cycled",
		zap.String("date", date),
		zap.String("team", team.Name),
		zap.String("user", user),
		zap.Strings("group", group))

	ed.stage(date, entry)
	return nil
}

// MarkAbsent records an absence for the user on the date. When the user
// holds assignments and confirmed is false, a ConfirmationRequiredError
// listing every affected team is returned and nothing is changed; the
// caller retries with confirmed set after the user accepts.
func (ed *Editor) MarkAbsent(date, user, reason string, confirmed bool) error {
	entry := ed.store.ResolveForEdit(date)

	conflicts := AssignmentConflicts(entry, user)
	if len(conflicts) > 0 && !confirmed {
		return &ConfirmationRequiredError{Date: date, User: user, Conflicts: conflicts}
	}

	MarkAbsent(entry, user, reason)

	ed.logger.Info("User marked absent",
		zap.String("date", date),
		zap.String("user", user),
		zap.Int("cleared_teams", len(conflicts)))

	ed.stage(date, entry)
	return nil
}

// MarkPresent removes the user's absence record for the date. Previously
// cleared assignments are not restored.
func (ed *Editor) MarkPresent(date, user string) error {
	entry := ed.store.ResolveForEdit(date)
	MarkPresent(entry, user)

	ed.logger.Info("User marked present",
		zap.String("date", date),
		zap.String("user", user))

	ed.stage(date, entry)
	return nil
}

// UpdateAbsenceReason edits the reason on an existing absence record.
func (ed *Editor) UpdateAbsenceReason(date, user, reason string) error {
	entry := ed.store.ResolveForEdit(date)
	if err := UpdateAbsenceReason(entry, user, reason); err != nil {
		return err
	}

	ed.stage(date, entry)
	return nil
}

// SetEventName sets the free-text label for the date.
func (ed *Editor) SetEventName(date, name string) error {
	entry := ed.store.ResolveForEdit(date)
	entry.EventName = name

	ed.stage(date, entry)
	return nil
}

// Save persists every dirty entry in one batch and, on success, merges
// them into the synced view.
func (ed *Editor) Save(ctx context.Context) error {
	entries := ed.store.DirtyEntries()
	if len(entries) == 0 {
		return nil
	}

	ed.logger.Info("Saving dirty entries", zap.Int("count", len(entries)))

	if err := ed.syncer.SaveAll(ctx, entries); err != nil {
		return fmt.Errorf("failed to save roster entries: %w", err)
	}

	ed.store.Commit()
	return nil
}

// Discard drops all unsaved edits.
func (ed *Editor) Discard() {
	count := ed.store.DirtyCount()
	ed.store.Discard()
	ed.logger.Info("Discarded unsaved edits", zap.Int("count", count))
}

// stage records the clone as dirty and schedules its remote write. The
// write carries the complete entry, not a delta.
func (ed *Editor) stage(date string, entry *model.RosterEntry) {
	ed.store.Stage(date, entry)
	ed.syncer.Enqueue(date, entry.Clone())
}
