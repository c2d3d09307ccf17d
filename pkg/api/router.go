// Package api exposes the roster editing surface over HTTP.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/jakechorley/team-roster/pkg/core/roster"
	"github.com/jakechorley/team-roster/pkg/db"
	"github.com/jakechorley/team-roster/pkg/metrics"
)

// RouterDeps holds all dependencies for the API router.
type RouterDeps struct {
	Editor  *roster.Editor
	Store   *roster.Store
	DB      *db.DB
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// NewRouter builds the chi router with all routes and middleware.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(requestLogger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(instrumentRequests(deps.Metrics))
	}

	rosterH := newRosterHandler(deps.Editor, deps.Store, deps.DB, deps.Logger)
	teamsH := newTeamsHandler(deps.DB)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Route("/api/v1", func(ar chi.Router) {
		ar.Get("/teams", teamsH.ListTeams)
		ar.Get("/teams/{name}/dates", teamsH.ListDates)

		ar.Get("/roster/{date}", rosterH.GetEntry)
		ar.Post("/roster/{date}/cycle", rosterH.CycleAssignment)
		ar.Put("/roster/{date}/absence/{user}", rosterH.SetAbsence)
		ar.Put("/roster/{date}/absence/{user}/reason", rosterH.UpdateAbsenceReason)
		ar.Put("/roster/{date}/event", rosterH.SetEventName)

		ar.Post("/roster/save", rosterH.Save)
		ar.Post("/roster/discard", rosterH.Discard)
	})

	return r
}
