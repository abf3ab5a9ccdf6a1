package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware())
	if s.secCfg.RateLimit.Enabled {
		r.Use(s.rateLimitMiddleware())
	}
	r.Use(s.bodySizeLimitMiddleware)
	r.Use(s.metricsMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrCategoryValidation, "Method not allowed")
	})

	// Probes and monitoring (no auth required)
	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.handler())

	r.Get("/me", s.requireAuth(s.handleMe))

	// Device endpoints
	r.Route("/devices", func(r chi.Router) {
		r.Get("/", s.handleListDevices)
		r.Get("/user/{userId}", s.handleListUserDevices)
		r.Get("/{id}", s.handleGetDevice)
	})
	r.Route("/my", func(r chi.Router) {
		r.Get("/devices", s.requireAuth(s.handleListMyDevices))
		r.Post("/device", s.requireAuth(s.handleCreateDevice))
		r.Delete("/devices/{id}", s.requireAuth(s.handleDeleteDevice))
	})

	// Event endpoints
	r.Get("/event/{id}", s.handleGetEvent)
	r.Get("/device/{deviceName}", s.handleListDeviceEvents)
	r.Route("/events", func(r chi.Router) {
		r.Get("/", s.handleListEvents)
		r.Get("/user/{userId}", s.handleListUserEvents)
		r.Delete("/{id}", s.requireAuth(s.handleDeleteEvent))
		r.Patch("/{id}/verify", s.requireAuth(s.handleVerifyEvent))
	})

	// Project endpoints
	r.Route("/projects", func(r chi.Router) {
		r.Get("/", s.handleListProjects)
		r.Post("/", s.requireAuth(s.handleCreateProject))

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetProject)
			r.Put("/", s.requireAuth(s.handleUpdateProject))
			r.Delete("/", s.requireAuth(s.handleDeleteProject))
		})
	})

	// Submission endpoints
	r.Route("/submissions", func(r chi.Router) {
		r.Post("/", s.requireAuth(s.handleCreateSubmission))
		r.Get("/user/{userId}", s.handleListUserSubmissions)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSubmission)
			r.Delete("/", s.requireAuth(s.handleDeleteSubmission))
			r.Post("/sightings", s.requireAuth(s.handleAddSubmissionSighting))
		})
	})

	// Field observation endpoints
	r.Route("/field-observations", func(r chi.Router) {
		r.Post("/", s.requireAuth(s.handleCreateObservation))
		r.Get("/user/{userId}", s.handleListUserObservations)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetObservation)
			r.Delete("/", s.requireAuth(s.handleDeleteObservation))
			r.Post("/sightings", s.requireAuth(s.handleAddObservationSighting))
		})
	})

	// Uploaded media
	r.Get("/images/uploads/{fileId}", s.handleGetImage)

	return r
}
