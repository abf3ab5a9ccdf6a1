package api

import (
	"context"
	"net/http"
	"time"

	"github.com/wildtrace/wildtrace-api/internal/auth"
)

// healthCheckTimeout bounds the dependency checks behind /health.
const healthCheckTimeout = 3 * time.Second

// Component states reported by /health.
const (
	statusOK           = "ok"
	statusDegraded     = "degraded"
	statusUnavailable  = "unavailable"
	statusDisabled     = "disabled"
	statusConnected    = "connected"
	statusDisconnected = "disconnected"
)

// healthResponse is the body of GET /health.
type healthResponse struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	MQTT      string    `json:"mqtt"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// meResponse is the body of GET /me.
type meResponse struct {
	Message string `json:"message"`
	User    meUser `json:"user"`
}

type meUser struct {
	Sub   string  `json:"sub"`
	Email *string `json:"email"`
}

// handleRoot is the liveness probe. It never touches the database.
func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "alive",
		"timestamp": s.now().UTC(),
	})
}

// handleHealth reports database and broker connectivity. A failing
// database answers 503; a disconnected broker only degrades the status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	resp := healthResponse{
		Status:    statusOK,
		Database:  statusOK,
		MQTT:      statusDisabled,
		Version:   s.version,
		Timestamp: s.now().UTC(),
	}
	status := http.StatusOK

	if err := s.db.HealthCheck(ctx); err != nil {
		s.logger.Warn("database health check failed", "error", err)
		resp.Database = statusUnavailable
		resp.Status = statusUnavailable
		status = http.StatusServiceUnavailable
	}

	if s.mqtt != nil {
		if err := s.mqtt.HealthCheck(ctx); err != nil {
			resp.MQTT = statusDisconnected
			if resp.Status == statusOK {
				resp.Status = statusDegraded
			}
		} else {
			resp.MQTT = statusConnected
		}
	}

	writeJSON(w, status, resp)
}

// handleMe returns the authenticated caller.
func (s *Server) handleMe(w http.ResponseWriter, _ *http.Request, id auth.Identity) {
	var email *string
	if id.Email != "" {
		email = &id.Email
	}
	writeJSON(w, http.StatusOK, meResponse{
		Message: "You are authenticated!",
		User:    meUser{Sub: id.Subject, Email: email},
	})
}
