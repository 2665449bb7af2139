package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ternarybob/clarity/internal/common"
)

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// WriteErrorHint writes an error JSON response with a remediation hint.
func WriteErrorHint(w http.ResponseWriter, statusCode int, message, hint string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"error": message,
		"hint":  hint,
	})
}

// WriteServiceError maps a service error to its HTTP status using the
// shared error categories: validation 400, not found 404, no usable
// output 422, unavailable 503, anything else 500.
func WriteServiceError(w http.ResponseWriter, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrNoOutput):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, common.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}
	return WriteError(w, status, err.Error())
}

// PathSegment returns the nth path segment after the given prefix, or
// "" when absent. PathSegment("/api/projects/proj_1", "/api/projects/", 0)
// yields "proj_1".
func PathSegment(path, prefix string, n int) string {
	rest := strings.TrimPrefix(path, prefix)
	if rest == path {
		return ""
	}
	segments := strings.Split(strings.Trim(rest, "/"), "/")
	if n >= len(segments) {
		return ""
	}
	return segments[n]
}

// DecodeJSON decodes a request body into dst, translating failures into
// validation errors.
func DecodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return common.ValidationError("invalid JSON body: %s", err.Error())
	}
	return nil
}
