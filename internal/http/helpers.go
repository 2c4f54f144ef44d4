package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

// userHeader carries the acting user's ID; authentication itself lives in
// front of this service.
const userHeader = "X-User-ID"

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain sentinels onto HTTP status codes. Anything
// unrecognized is a 500 with a generic body; the detail stays in the logs.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, core.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, core.ErrConversion):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
	case errors.Is(err, core.ErrUnauthorized):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", core.ErrValidation, err)
	}
	return nil
}

// currentUser resolves the acting user from the X-User-ID header.
func (s *Server) currentUser(r *http.Request) (core.User, error) {
	raw := r.Header.Get(userHeader)
	if raw == "" {
		return core.User{}, fmt.Errorf("%w: missing %s header", core.ErrUnauthorized, userHeader)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return core.User{}, fmt.Errorf("%w: invalid %s header", core.ErrUnauthorized, userHeader)
	}
	user, err := s.users.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.User{}, fmt.Errorf("%w: unknown user", core.ErrUnauthorized)
		}
		return core.User{}, err
	}
	return user, nil
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid id %q", core.ErrValidation, r.PathValue("id"))
	}
	return id, nil
}
