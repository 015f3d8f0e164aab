package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/tokeley/researchlog/internal/repo"
)

// ErrMessageInternal is the generic message for 500 responses. Do not expose internal details to clients.
const ErrMessageInternal = "internal server error"

// JSONError sends a JSON error response with a single "error" field.
func JSONError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

// JSONValidationError sends a JSON error response with "error" and optional "fields" for field-level details.
// status is typically http.StatusBadRequest (400).
func JSONValidationError(w http.ResponseWriter, message string, fields map[string]string, status int) {
	out := map[string]interface{}{"error": message}
	if len(fields) > 0 {
		out["fields"] = fields
	}
	writeJSON(w, status, out)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// internalError logs err with the request context and answers with an opaque 500.
func internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	slog.Error(op,
		"request_id", chimw.GetReqID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
		"stack", string(debug.Stack()))
	JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
}

// storeError maps repo.ErrNotFound to 404 with notFoundMsg and anything else to 500.
func storeError(w http.ResponseWriter, r *http.Request, op string, err error, notFoundMsg string) {
	if errors.Is(err, repo.ErrNotFound) {
		JSONError(w, notFoundMsg, http.StatusNotFound)
		return
	}
	internalError(w, r, op, err)
}
