package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wildtrace/wildtrace-api/internal/auth"
	"github.com/wildtrace/wildtrace-api/internal/infrastructure/database"
	"github.com/wildtrace/wildtrace-api/internal/infrastructure/mqtt"
	"github.com/wildtrace/wildtrace-api/internal/project"
	"github.com/wildtrace/wildtrace-api/internal/query"
	"github.com/wildtrace/wildtrace-api/internal/validation"
)

const entityProject = "project"

// handleListProjects returns all projects with their devices.
//
// Query parameters:
//   - title: substring match on the project title
//   - page, limit, sortBy, order
func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	values := r.URL.Query()

	lp, err := validation.ParseListParams(values)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	p := project.ListParams{
		Title:  validation.OptionalString(values, "title"),
		Page:   lp.Page,
		SortBy: lp.SortBy,
		Order:  lp.Order,
	}

	var res query.Result[project.Project]
	err = s.db.WithConn(ctx, func(conn database.Conn) error {
		var err error
		res, err = project.NewSQLiteRepository(conn).List(ctx, p)
		return err
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writePage(w, p.Page, res)
}

// handleGetProject returns a single project.
func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID, err := validation.PathID(chi.URLParam(r, "id"), "id")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var p *project.Project
	err = s.db.WithConn(ctx, func(conn database.Conn) error {
		var err error
		p, err = project.NewSQLiteRepository(conn).GetByID(ctx, projectID)
		return err
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

// handleCreateProject creates a project, optionally assigning devices.
func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	ctx := r.Context()

	var req project.CreateRequest
	if err := validation.DecodeJSON(r.Body, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var p *project.Project
	err := s.db.WithConn(ctx, func(conn database.Conn) error {
		var err error
		p, err = project.NewSQLiteRepository(conn).Create(ctx, req)
		return err
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.notify(ctx, entityProject, mqtt.ActionCreated, strconv.FormatInt(p.ID, 10), id.Subject)
	writeData(w, http.StatusCreated, p)
}

// handleUpdateProject applies a partial update to a project.
func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	ctx := r.Context()
	projectID, err := validation.PathID(chi.URLParam(r, "id"), "id")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var req project.UpdateRequest
	if err := validation.DecodeJSON(r.Body, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var p *project.Project
	err = s.db.WithConn(ctx, func(conn database.Conn) error {
		var err error
		p, err = project.NewSQLiteRepository(conn).Update(ctx, projectID, req)
		return err
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.notify(ctx, entityProject, mqtt.ActionUpdated, strconv.FormatInt(projectID, 10), id.Subject)
	writeData(w, http.StatusOK, p)
}

// handleDeleteProject removes a project and its device assignments.
func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	ctx := r.Context()
	projectID, err := validation.PathID(chi.URLParam(r, "id"), "id")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	err = s.db.WithConn(ctx, func(conn database.Conn) error {
		return project.NewSQLiteRepository(conn).Delete(ctx, projectID)
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.notify(ctx, entityProject, mqtt.ActionDeleted, strconv.FormatInt(projectID, 10), id.Subject)
	writeNoContent(w)
}
