package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	appErrors "github.com/Novip1906/tasks-http/internal/errors"
	"github.com/Novip1906/tasks-http/internal/storage"
)

var errInvalidBody = errors.New("invalid request body")

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeServiceError maps a service or storage error onto its status code
// and public message.
func writeServiceError(w http.ResponseWriter, err error) {
	status, message := classify(err)
	writeError(w, status, message)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, errInvalidBody):
		return http.StatusBadRequest, msgInvalidBody
	case errors.Is(err, appErrors.ErrMissingFields):
		return http.StatusBadRequest, msgMissingFields
	case errors.Is(err, appErrors.ErrEmptyTitle):
		return http.StatusBadRequest, msgTitleRequired
	case errors.Is(err, appErrors.ErrEmptyQuery):
		return http.StatusBadRequest, msgQueryRequired
	case errors.Is(err, appErrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, msgInvalidCredentials
	case errors.Is(err, storage.ErrTaskNotFound):
		return http.StatusNotFound, msgTaskNotFound
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// decodeJSON reads a JSON object into dst. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errInvalidBody
	}
	return nil
}

// NotFound answers unmatched routes and unmatched methods.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, msgRouteNotFound)
}
