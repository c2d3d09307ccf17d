package roster

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAbsentConflict is returned when an assignment is attempted for a user
// already marked absent on that date. The operation aborts with no mutation.
var ErrAbsentConflict = errors.New("user is marked absent for this date")

// ErrMaxConflictExceeded is returned when an assignment would push a user
// past the team's concurrent-assignment cap. The operation aborts with no
// mutation.
var ErrMaxConflictExceeded = errors.New("team assignment limit reached")

// ErrNotAbsent is returned when an absence reason edit is attempted for a
// user who is not marked absent.
var ErrNotAbsent = errors.New("user is not marked absent for this date")

// TeamConflict names the positions a user holds in one team, used to build
// the confirmation prompt before a destructive absence toggle.
type TeamConflict struct {
	Team      string
	Positions []string
}

func (c TeamConflict) String() string {
	return fmt.Sprintf("%s: %s", c.Team, strings.Join(c.Positions, ", "))
}

// ConfirmationRequiredError is not a failure: marking the user absent would
// clear existing assignments, and the caller must confirm before the
// mutation is applied. Nothing has been changed when this is returned.
type ConfirmationRequiredError struct {
	Date      string
	User      string
	Conflicts []TeamConflict
}

func (e *ConfirmationRequiredError) Error() string {
	parts := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		parts = append(parts, c.String())
	}
	return fmt.Sprintf("marking %s absent on %s clears assignments (%s); confirmation required",
		e.User, e.Date, strings.Join(parts, "; "))
}
