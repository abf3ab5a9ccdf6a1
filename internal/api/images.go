package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wildtrace/wildtrace-api/internal/blob"
	"github.com/wildtrace/wildtrace-api/internal/validation"
)

// Cache lifetimes for served images.
const (
	imageCacheControl    = "public, max-age=86400"
	imageCDNCacheControl = "max-age=604800"
)

// uploadsPrefix is the key prefix of user uploads in the object store.
const uploadsPrefix = "uploads/"

// handleGetImage streams an uploaded image from the object store.
// Range and conditional (If-None-Match) requests are handled by
// http.ServeContent.
func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	if s.blobs == nil {
		w.Header().Set("Cache-Control", "no-store")
		writeError(w, http.StatusInternalServerError, ErrCategoryConfiguration, "Image storage is not configured")
		return
	}

	fileID, err := validation.RequiredPath(chi.URLParam(r, "fileId"), "fileId")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	obj, err := s.blobs.Open(r.Context(), uploadsPrefix+fileID)
	if err != nil {
		w.Header().Set("Cache-Control", "no-store")
		switch {
		case errors.Is(err, blob.ErrNotFound), errors.Is(err, blob.ErrInvalidKey):
			writeNotFound(w, "Image not found")
		default:
			s.logger.Error("failed to fetch image",
				"error", err,
				"file_id", fileID,
				"request_id", r.Context().Value(ctxKeyRequestID),
			)
			writeInternalError(w, "Failed to fetch image")
		}
		return
	}
	defer obj.Close() //nolint:errcheck // read-only file

	h := w.Header()
	h.Set("Content-Type", obj.ContentType)
	h.Set("ETag", obj.ETag)
	h.Set("Cache-Control", imageCacheControl)
	h.Set("CDN-Cache-Control", imageCDNCacheControl)

	http.ServeContent(w, r, obj.Key, obj.ModTime, obj)
}
