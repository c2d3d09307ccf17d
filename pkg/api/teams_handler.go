package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jakechorley/team-roster/pkg/core/dates"
	"github.com/jakechorley/team-roster/pkg/core/model"
	"github.com/jakechorley/team-roster/pkg/db"
)

// teamsHandler serves team metadata and roster date generation.
type teamsHandler struct {
	db *db.DB
}

func newTeamsHandler(database *db.DB) *teamsHandler {
	return &teamsHandler{db: database}
}

type teamsResponse struct {
	Teams []model.Team `json:"teams"`
}

// ListTeams handles GET /api/v1/teams.
func (h *teamsHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.db.GetTeams(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to load teams")
		return
	}
	if teams == nil {
		teams = []model.Team{}
	}
	writeJSON(w, http.StatusOK, teamsResponse{Teams: teams})
}

type datesResponse struct {
	Team  string   `json:"team"`
	Dates []string `json:"dates"`
}

// ListDates handles GET /api/v1/teams/{name}/dates.
//
// Query parameters select the page:
//
//	(none)          upcoming dates from today through year end
//	year=2027       every matching date in that calendar year
//	before=DATE     earlier dates for backward pagination,
//	count=N         with an optional page size
func (h *teamsHandler) ListDates(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	team, err := h.db.GetTeam(r.Context(), name)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "team_not_found", "unknown team "+name)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to load team")
		return
	}

	days := team.Weekdays()
	query := r.URL.Query()

	var result []string
	switch {
	case query.Get("before") != "":
		before, err := time.Parse(model.DateFormat, query.Get("before"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "before must be formatted YYYY-MM-DD")
			return
		}
		count := 0
		if raw := query.Get("count"); raw != "" {
			count, err = strconv.Atoi(raw)
			if err != nil || count < 1 {
				writeError(w, http.StatusBadRequest, "invalid_count", "count must be a positive integer")
				return
			}
		}
		result = dates.Previous(days, before, count)

	case query.Get("year") != "":
		year, err := strconv.Atoi(query.Get("year"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_year", "year must be an integer")
			return
		}
		result, err = dates.ForYear(days, year)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", "failed to generate dates")
			return
		}

	default:
		result, err = dates.Upcoming(days, time.Now())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", "failed to generate dates")
			return
		}
	}

	if result == nil {
		result = []string{}
	}
	writeJSON(w, http.StatusOK, datesResponse{Team: team.Name, Dates: result})
}
