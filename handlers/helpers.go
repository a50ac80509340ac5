package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/mthuyet/trello-app/services"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// respondError maps the service error taxonomy onto HTTP statuses. Unknown
// errors are logged and surfaced as a generic failure so no internal detail
// leaks to clients.
func respondError(w http.ResponseWriter, err error) {
	var (
		validationErr *services.ValidationError
		notFoundErr   *services.NotFoundError
		permissionErr *services.PermissionError
		conflictErr   *services.ConflictError
	)

	switch {
	case errors.As(err, &validationErr):
		respondJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": validationErr.Message})
	case errors.As(err, &notFoundErr):
		respondJSON(w, http.StatusNotFound, map[string]string{"message": notFoundErr.Error()})
	case errors.As(err, &permissionErr):
		respondJSON(w, http.StatusForbidden, map[string]string{"message": permissionErr.Message})
	case errors.As(err, &conflictErr):
		respondJSON(w, http.StatusConflict, map[string]string{"message": conflictErr.Message})
	default:
		log.Printf("Internal error: %v", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"message": "Server error"})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request format"})
		return false
	}
	return true
}
