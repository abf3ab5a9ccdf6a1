package api

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/wildtrace/wildtrace-api/internal/auth"
	"github.com/wildtrace/wildtrace-api/internal/blob"
	"github.com/wildtrace/wildtrace-api/internal/device"
	"github.com/wildtrace/wildtrace-api/internal/event"
	"github.com/wildtrace/wildtrace-api/internal/observation"
	"github.com/wildtrace/wildtrace-api/internal/project"
	"github.com/wildtrace/wildtrace-api/internal/query"
	"github.com/wildtrace/wildtrace-api/internal/submission"
	"github.com/wildtrace/wildtrace-api/internal/validation"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// Error categories.
const (
	ErrCategoryValidation      = "Validation error"
	ErrCategoryUnauthorized    = "Unauthorized"
	ErrCategoryForbidden       = "Forbidden"
	ErrCategoryNotFound        = "Not found"
	ErrCategoryConflict        = "Conflict"
	ErrCategoryTooManyRequests = "Too many requests"
	ErrCategoryConfiguration   = "Configuration error"
	ErrCategoryInternal        = "Internal server error"
)

// dataResponse wraps a single resource.
type dataResponse struct {
	Data any `json:"data"`
}

// pageResponse wraps one page of a listing.
type pageResponse struct {
	Data       any              `json:"data"`
	Pagination query.Pagination `json:"pagination"`
}

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeData writes {data: v}.
func writeData(w http.ResponseWriter, status int, v any) {
	writeJSON(w, status, dataResponse{Data: v})
}

// writePage writes one page of a listing with its pagination block.
func writePage[T any](w http.ResponseWriter, page query.Page, res query.Result[T]) {
	items := res.Items
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, pageResponse{
		Data:       items,
		Pagination: query.NewPagination(page, res.TotalCount),
	})
}

// writeNoContent writes an empty 204 response.
func writeNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, category, details string) {
	writeJSON(w, status, errorResponse{
		Error:   category,
		Details: details,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, details string) {
	writeError(w, http.StatusBadRequest, ErrCategoryValidation, details)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, details string) {
	writeError(w, http.StatusNotFound, ErrCategoryNotFound, details)
}

// writeUnauthorized writes a 401 error response.
func writeUnauthorized(w http.ResponseWriter, details string) {
	writeError(w, http.StatusUnauthorized, ErrCategoryUnauthorized, details)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, details string) {
	writeError(w, http.StatusInternalServerError, ErrCategoryInternal, details)
}

// notFoundDetails maps each not-found sentinel to its client message.
var notFoundDetails = []struct {
	err     error
	details string
}{
	{device.ErrDeviceNotFound, "Device not found"},
	{event.ErrEventNotFound, "Event not found"},
	{project.ErrProjectNotFound, "Project not found"},
	{observation.ErrObservationNotFound, "Field observation not found"},
	{submission.ErrSubmissionNotFound, "Submission not found"},
	{blob.ErrNotFound, "Image not found"},
}

// writeServiceError maps an error returned by a repository or validator to
// the response envelope. Anything unrecognised is logged and reported as 500
// with its message.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.RequestValidationError
	if errors.As(err, &verr) {
		writeBadRequest(w, verr.Error())
		return
	}

	for _, nf := range notFoundDetails {
		if errors.Is(err, nf.err) {
			writeNotFound(w, nf.details)
			return
		}
	}

	switch {
	case errors.Is(err, project.ErrUnknownDevice):
		writeBadRequest(w, err.Error())
	case errors.Is(err, device.ErrSerialExists):
		writeError(w, http.StatusConflict, ErrCategoryConflict, "A device with this serial is already registered")
	case errors.Is(err, observation.ErrObservationExists):
		writeError(w, http.StatusConflict, ErrCategoryConflict, "A field observation with this id already exists")
	case errors.Is(err, auth.ErrNotConfigured):
		s.logger.Error("token verification is not configured",
			"path", r.URL.Path,
			"request_id", r.Context().Value(ctxKeyRequestID),
		)
		writeError(w, http.StatusInternalServerError, ErrCategoryConfiguration, "Authentication is not configured")
	default:
		s.logger.Error("request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", r.Context().Value(ctxKeyRequestID),
		)
		writeInternalError(w, err.Error())
	}
}
