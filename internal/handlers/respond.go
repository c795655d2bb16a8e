package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"typier/internal/engine"
	"typier/internal/service"
	"typier/internal/texts"
	"typier/internal/validation"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	respondJSON(w, status, map[string]string{"error": userMsg})
}

// respondServiceError maps known service errors onto HTTP statuses; anything
// unrecognized is a 500
func respondServiceError(w http.ResponseWriter, err error, logMsg string) {
	var validationErr *validation.ValidationError

	switch {
	case errors.As(err, &validationErr):
		respondWithError(w, http.StatusBadRequest, validationErr.Error(), "", nil)
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrLayoutNotFound):
		respondWithError(w, http.StatusNotFound, err.Error(), "", nil)
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrLayoutTaken):
		respondWithError(w, http.StatusConflict, err.Error(), "", nil)
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrLoginRequired):
		respondWithError(w, http.StatusUnauthorized, err.Error(), "", nil)
	case errors.Is(err, service.ErrNotLayoutOwner),
		errors.Is(err, service.ErrLayoutProtected):
		respondWithError(w, http.StatusForbidden, err.Error(), "", nil)
	case errors.Is(err, engine.ErrSessionNotActive),
		errors.Is(err, engine.ErrInvalidStateTransition):
		respondWithError(w, http.StatusConflict, err.Error(), "", nil)
	case errors.Is(err, texts.ErrContentUnavailable):
		respondWithError(w, http.StatusUnprocessableEntity, err.Error(), "", nil)
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error", logMsg, err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON body", "", nil)
		return false
	}
	return true
}
