package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wildtrace/wildtrace-api/internal/auth"
	"github.com/wildtrace/wildtrace-api/internal/infrastructure/database"
	"github.com/wildtrace/wildtrace-api/internal/infrastructure/mqtt"
	"github.com/wildtrace/wildtrace-api/internal/observation"
	"github.com/wildtrace/wildtrace-api/internal/query"
	"github.com/wildtrace/wildtrace-api/internal/sighting"
	"github.com/wildtrace/wildtrace-api/internal/validation"
)

const entityObservation = "field_observation"

// handleCreateObservation records a field observation for the caller.
// The client may supply the id so offline-captured records keep it.
func (s *Server) handleCreateObservation(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	ctx := r.Context()

	var req observation.CreateRequest
	if err := validation.DecodeJSON(r.Body, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var obs *observation.Detail
	err := s.db.WithConn(ctx, func(conn database.Conn) error {
		var err error
		obs, err = observation.NewSQLiteRepository(conn).Create(ctx, id.Subject, req)
		return err
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.notify(ctx, entityObservation, mqtt.ActionCreated, obs.ID, id.Subject)
	writeData(w, http.StatusCreated, obs)
}

// handleGetObservation returns a field observation with its sightings.
func (s *Server) handleGetObservation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	obsID, err := validation.PathUUID(chi.URLParam(r, "id"), "id")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var obs *observation.Detail
	err = s.db.WithConn(ctx, func(conn database.Conn) error {
		var err error
		obs, err = observation.NewSQLiteRepository(conn).GetByID(ctx, obsID)
		return err
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, obs)
}

// handleListUserObservations returns one page of a user's field observations.
func (s *Server) handleListUserObservations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := validation.RequiredPath(chi.URLParam(r, "userId"), "userId")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	lp, err := validation.ParseListParams(r.URL.Query())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	p := observation.ListParams{UserID: userID, Page: lp.Page, SortBy: lp.SortBy, Order: lp.Order}

	var res query.Result[observation.FieldObservation]
	err = s.db.WithConn(ctx, func(conn database.Conn) error {
		var err error
		res, err = observation.NewSQLiteRepository(conn).ListByUser(ctx, p)
		return err
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writePage(w, p.Page, res)
}

// handleDeleteObservation removes one of the caller's field observations.
func (s *Server) handleDeleteObservation(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	ctx := r.Context()
	obsID, err := validation.PathUUID(chi.URLParam(r, "id"), "id")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	err = s.db.WithConn(ctx, func(conn database.Conn) error {
		return observation.NewSQLiteRepository(conn).Delete(ctx, obsID, id.Subject)
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.notify(ctx, entityObservation, mqtt.ActionDeleted, obsID, id.Subject)
	writeNoContent(w)
}

// handleAddObservationSighting appends a sighting to one of the caller's
// field observations.
func (s *Server) handleAddObservationSighting(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	ctx := r.Context()
	obsID, err := validation.PathUUID(chi.URLParam(r, "id"), "id")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var in sighting.Input
	if err := validation.DecodeJSON(r.Body, &in); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var added *observation.Sighting
	err = s.db.WithConn(ctx, func(conn database.Conn) error {
		var err error
		added, err = observation.NewSQLiteRepository(conn).AddSighting(ctx, obsID, id.Subject, in)
		return err
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.notify(ctx, entityObservation, mqtt.ActionUpdated, obsID, id.Subject)
	writeData(w, http.StatusCreated, added)
}
