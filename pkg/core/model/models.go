package model

import "time"

// DateFormat is the canonical key format for roster entries (ISO date)
const DateFormat = "2006-01-02"

// AbsenceRecord marks a user as unavailable on a date.
// A user with an absence record must not hold any assignment that date.
type AbsenceRecord struct {
	Reason string `json:"reason"`
}

// TeamAssignments maps a user identifier (email, or an arbitrary label for
// custom position types) to the ordered list of position names they hold
// within one team on one date. Absence of a key means "no assignment" -
// the map is kept sparse, empty lists are never stored.
type TeamAssignments map[string][]string

// RosterEntry is the roster document for a single calendar date.
type RosterEntry struct {
	Teams     map[string]TeamAssignments `json:"teams,omitempty"`
	Absence   map[string]AbsenceRecord   `json:"absence,omitempty"`
	EventName string                     `json:"eventName,omitempty"`
	UpdatedAt time.Time                  `json:"updatedAt,omitempty"`
}

// NewRosterEntry returns an empty entry ready for mutation.
// Entries are created lazily on first edit for a date.
func NewRosterEntry() *RosterEntry {
	return &RosterEntry{
		Teams:   make(map[string]TeamAssignments),
		Absence: make(map[string]AbsenceRecord),
	}
}

// Clone returns a deep copy of the entry. Mutation paths always clone first
// so a staged dirty entry never aliases the last-synced entry.
func (e *RosterEntry) Clone() *RosterEntry {
	if e == nil {
		return NewRosterEntry()
	}

	clone := &RosterEntry{
		Teams:     make(map[string]TeamAssignments, len(e.Teams)),
		Absence:   make(map[string]AbsenceRecord, len(e.Absence)),
		EventName: e.EventName,
		UpdatedAt: e.UpdatedAt,
	}

	for team, assignments := range e.Teams {
		copied := make(TeamAssignments, len(assignments))
		for user, positions := range assignments {
			copied[user] = append([]string(nil), positions...)
		}
		clone.Teams[team] = copied
	}

	for user, record := range e.Absence {
		clone.Absence[user] = record
	}

	return clone
}

// Assignments returns the positions held by user within team, or nil.
func (e *RosterEntry) Assignments(team, user string) []string {
	if e == nil || e.Teams == nil {
		return nil
	}
	return e.Teams[team][user]
}

// IsAbsent reports whether user has an absence record on this entry.
func (e *RosterEntry) IsAbsent(user string) bool {
	if e == nil || e.Absence == nil {
		return false
	}
	_, ok := e.Absence[user]
	return ok
}

// Position represents a role that can be assigned within a team.
// Positions form a two-level hierarchy: a position without a parent is a
// group head, positions whose ParentID equals that name are its children.
// Grandchildren are not supported.
type Position struct {
	Name         string   `json:"name"`
	Emoji        string   `json:"emoji,omitempty"`
	Colour       string   `json:"colour,omitempty"`
	ParentID     string   `json:"parentId,omitempty"`
	SortByGender bool     `json:"sortByGender,omitempty"`
	IsCustom     bool     `json:"isCustom,omitempty"`
	CustomLabels []string `json:"customLabels,omitempty"`
}

// Team represents a schedulable team.
type Team struct {
	Name          string     `json:"name"`
	Emoji         string     `json:"emoji,omitempty"`
	Positions     []Position `json:"positions"`
	PreferredDays []string   `json:"preferredDays"`
	MaxConflict   int        `json:"maxConflict"`
	AllowAbsence  bool       `json:"allowAbsence"`
}

// EffectiveMaxConflict returns the team's concurrent-assignment cap,
// defaulting to 1 when unset.
func (t Team) EffectiveMaxConflict() int {
	if t.MaxConflict <= 0 {
		return 1
	}
	return t.MaxConflict
}

// Weekdays parses PreferredDays into time.Weekday values, skipping any
// names that do not parse.
func (t Team) Weekdays() []time.Weekday {
	days := make([]time.Weekday, 0, len(t.PreferredDays))
	for _, name := range t.PreferredDays {
		if day, ok := ParseWeekday(name); ok {
			days = append(days, day)
		}
	}
	return days
}

var weekdayNames = map[string]time.Weekday{
	"Sunday":    time.Sunday,
	"Monday":    time.Monday,
	"Tuesday":   time.Tuesday,
	"Wednesday": time.Wednesday,
	"Thursday":  time.Thursday,
	"Friday":    time.Friday,
	"Saturday":  time.Saturday,
}

// ParseWeekday converts a day name ("Monday") to a time.Weekday.
func ParseWeekday(name string) (time.Weekday, bool) {
	day, ok := weekdayNames[name]
	return day, ok
}

// AppUser represents an application user. The roster identifier for
// assignments and absence is always Email, never the auth UID.
type AppUser struct {
	Name          string              `json:"name"`
	Email         string              `json:"email"`
	Teams         []string            `json:"teams,omitempty"`
	TeamPositions map[string][]string `json:"teamPositions,omitempty"`
	IsActive      bool                `json:"isActive"`
	IsApproved    bool                `json:"isApproved"`
	IsAdmin       bool                `json:"isAdmin"`
	Gender        string              `json:"gender,omitempty"`
}
