package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jakechorley/team-roster/pkg/core/model"
	"github.com/jakechorley/team-roster/pkg/core/positions"
	"github.com/jakechorley/team-roster/pkg/core/roster"
	"github.com/jakechorley/team-roster/pkg/db"
)

// rosterHandler groups roster entry HTTP handlers.
type rosterHandler struct {
	editor *roster.Editor
	store  *roster.Store
	db     *db.DB
	logger *zap.Logger
}

func newRosterHandler(editor *roster.Editor, store *roster.Store, database *db.DB, logger *zap.Logger) *rosterHandler {
	return &rosterHandler{
		editor: editor,
		store:  store,
		db:     database,
		logger: logger,
	}
}

type entryResponse struct {
	Date  string             `json:"date"`
	Entry *model.RosterEntry `json:"entry"`
	Dirty bool               `json:"dirty"`
}

// GetEntry handles GET /api/v1/roster/{date}. Reads resolve through the
// dirty overlay, so unsaved edits are visible.
func (h *rosterHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}

	entry, found := h.store.Resolve(date)
	if !found {
		writeError(w, http.StatusNotFound, "entry_not_found", "no roster entry for "+date)
		return
	}

	dirty := false
	for _, d := range h.store.DirtyDates() {
		if d == date {
			dirty = true
			break
		}
	}

	writeJSON(w, http.StatusOK, entryResponse{Date: date, Entry: entry, Dirty: dirty})
}

type cycleRequest struct {
	Team     string `json:"team"`
	User     string `json:"user"`
	Position string `json:"position"`
}

// CycleAssignment handles POST /api/v1/roster/{date}/cycle.
func (h *rosterHandler) CycleAssignment(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}

	var req cycleRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}
	if req.Team == "" || req.User == "" || req.Position == "" {
		writeError(w, http.StatusBadRequest, "missing_fields", "team, user and position are required")
		return
	}

	team, err := h.db.GetTeam(r.Context(), req.Team)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "team_not_found", "unknown team "+req.Team)
			return
		}
		h.logger.Error("Failed to load team", zap.String("team", req.Team), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to load team")
		return
	}

	if _, ok := positions.Find(team.Positions, req.Position); !ok {
		writeError(w, http.StatusNotFound, "position_not_found",
			fmt.Sprintf("team %s has no position %s", req.Team, req.Position))
		return
	}

	if err := h.editor.CycleAssignment(team, date, req.User, req.Position); err != nil {
		h.writeEditError(w, err)
		return
	}

	h.writeResolved(w, date)
}

type absenceRequest struct {
	Absent  bool   `json:"absent"`
	Reason  string `json:"reason"`
	Confirm bool   `json:"confirm"`
}

// SetAbsence handles PUT /api/v1/roster/{date}/absence/{user}. Marking a
// user absent while they hold assignments returns 409 with the conflict
// list until the client retries with confirm set.
func (h *rosterHandler) SetAbsence(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	user := chi.URLParam(r, "user")

	var req absenceRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}

	var err error
	if req.Absent {
		err = h.editor.MarkAbsent(date, user, req.Reason, req.Confirm)
	} else {
		err = h.editor.MarkPresent(date, user)
	}
	if err != nil {
		h.writeEditError(w, err)
		return
	}

	h.writeResolved(w, date)
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

// UpdateAbsenceReason handles PUT /api/v1/roster/{date}/absence/{user}/reason.
func (h *rosterHandler) UpdateAbsenceReason(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	user := chi.URLParam(r, "user")

	var req reasonRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}

	if err := h.editor.UpdateAbsenceReason(date, user, req.Reason); err != nil {
		h.writeEditError(w, err)
		return
	}

	h.writeResolved(w, date)
}

type eventRequest struct {
	EventName string `json:"eventName"`
}

// SetEventName handles PUT /api/v1/roster/{date}/event.
func (h *rosterHandler) SetEventName(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}

	var req eventRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}

	if err := h.editor.SetEventName(date, req.EventName); err != nil {
		h.writeEditError(w, err)
		return
	}

	h.writeResolved(w, date)
}

// Save handles POST /api/v1/roster/save - bulk save of all dirty entries.
func (h *rosterHandler) Save(w http.ResponseWriter, r *http.Request) {
	saved := h.store.DirtyDates()
	if err := h.editor.Save(r.Context()); err != nil {
		h.logger.Error("Bulk save failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "save_failed", "failed to save roster entries")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"saved": saved})
}

// Discard handles POST /api/v1/roster/discard.
func (h *rosterHandler) Discard(w http.ResponseWriter, r *http.Request) {
	discarded := h.store.DirtyDates()
	h.editor.Discard()
	writeJSON(w, http.StatusOK, map[string]interface{}{"discarded": discarded})
}

// writeEditError maps core editing errors onto HTTP responses.
func (h *rosterHandler) writeEditError(w http.ResponseWriter, err error) {
	var confirmErr *roster.ConfirmationRequiredError
	switch {
	case errors.As(err, &confirmErr):
		conflicts := make([]teamConflict, 0, len(confirmErr.Conflicts))
		for _, c := range confirmErr.Conflicts {
			conflicts = append(conflicts, teamConflict{Team: c.Team, Positions: c.Positions})
		}
		writeJSON(w, http.StatusConflict, errorEnvelope{Error: errorDetail{
			Code:      "confirmation_required",
			Message:   confirmErr.Error(),
			Conflicts: conflicts,
		}})
	case errors.Is(err, roster.ErrAbsentConflict):
		writeError(w, http.StatusConflict, "absent_conflict", "user is marked absent for this date")
	case errors.Is(err, roster.ErrMaxConflictExceeded):
		writeError(w, http.StatusConflict, "max_conflict_exceeded", "team assignment limit reached")
	case errors.Is(err, roster.ErrNotAbsent):
		writeError(w, http.StatusConflict, "not_absent", "user is not marked absent for this date")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to apply edit")
	}
}

// writeResolved returns the entry as now visible through the dirty overlay.
func (h *rosterHandler) writeResolved(w http.ResponseWriter, date string) {
	entry, _ := h.store.Resolve(date)
	writeJSON(w, http.StatusOK, entryResponse{Date: date, Entry: entry, Dirty: true})
}

// dateParam extracts and validates the {date} route parameter.
func dateParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	date := chi.URLParam(r, "date")
	if _, err := time.Parse(model.DateFormat, date); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "date must be formatted YYYY-MM-DD")
		return "", false
	}
	return date, true
}
