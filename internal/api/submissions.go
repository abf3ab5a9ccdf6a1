package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wildtrace/wildtrace-api/internal/auth"
	"github.com/wildtrace/wildtrace-api/internal/infrastructure/database"
	"github.com/wildtrace/wildtrace-api/internal/infrastructure/mqtt"
	"github.com/wildtrace/wildtrace-api/internal/query"
	"github.com/wildtrace/wildtrace-api/internal/sighting"
	"github.com/wildtrace/wildtrace-api/internal/submission"
	"github.com/wildtrace/wildtrace-api/internal/validation"
)

const entitySubmission = "submission"

// handleCreateSubmission stores a submission for the caller.
func (s *Server) handleCreateSubmission(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	ctx := r.Context()

	var req submission.CreateRequest
	if err := validation.DecodeJSON(r.Body, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var sub *submission.Detail
	err := s.db.WithConn(ctx, func(conn database.Conn) error {
		var err error
		sub, err = submission.NewSQLiteRepository(conn).Create(ctx, id.Subject, req)
		return err
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.notify(ctx, entitySubmission, mqtt.ActionCreated, sub.ID, id.Subject)
	writeData(w, http.StatusCreated, sub)
}

// handleGetSubmission returns a submission with its sightings.
func (s *Server) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subID, err := validation.PathUUID(chi.URLParam(r, "id"), "id")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var sub *submission.Detail
	err = s.db.WithConn(ctx, func(conn database.Conn) error {
		var err error
		sub, err = submission.NewSQLiteRepository(conn).GetByID(ctx, subID)
		return err
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, sub)
}

// handleListUserSubmissions returns one page of a user's submissions.
func (s *Server) handleListUserSubmissions(w http.ResponseWriter, r *http.Request) {
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
	p := submission.ListParams{UserID: userID, Page: lp.Page, SortBy: lp.SortBy, Order: lp.Order}

	var res query.Result[submission.Submission]
	err = s.db.WithConn(ctx, func(conn database.Conn) error {
		var err error
		res, err = submission.NewSQLiteRepository(conn).ListByUser(ctx, p)
		return err
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writePage(w, p.Page, res)
}

// handleDeleteSubmission removes one of the caller's submissions.
func (s *Server) handleDeleteSubmission(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	ctx := r.Context()
	subID, err := validation.PathUUID(chi.URLParam(r, "id"), "id")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	err = s.db.WithConn(ctx, func(conn database.Conn) error {
		return submission.NewSQLiteRepository(conn).Delete(ctx, subID, id.Subject)
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.notify(ctx, entitySubmission, mqtt.ActionDeleted, subID, id.Subject)
	writeNoContent(w)
}

// handleAddSubmissionSighting appends a sighting to one of the caller's submissions.
func (s *Server) handleAddSubmissionSighting(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	ctx := r.Context()
	subID, err := validation.PathUUID(chi.URLParam(r, "id"), "id")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var in sighting.Input
	if err := validation.DecodeJSON(r.Body, &in); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var added *submission.Sighting
	err = s.db.WithConn(ctx, func(conn database.Conn) error {
		var err error
		added, err = submission.NewSQLiteRepository(conn).AddSighting(ctx, subID, id.Subject, in)
		return err
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.notify(ctx, entitySubmission, mqtt.ActionUpdated, subID, id.Subject)
	writeData(w, http.StatusCreated, added)
}
