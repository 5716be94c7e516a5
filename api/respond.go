package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ahmed-hamed0/sani3y.com/pkg/models"
)

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", "err", err)
	}
}

// writeDomainError maps the sentinel errors shared with the services to
// HTTP statuses; anything else is a 500 with a generic message.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, models.ErrNotAllowed):
		http.Error(w, "not allowed", http.StatusForbidden)
	case errors.Is(err, models.ErrAlreadyApplied):
		http.Error(w, "already applied to this job", http.StatusConflict)
	case errors.Is(err, models.ErrInvalidState):
		http.Error(w, "invalid state for this operation", http.StatusConflict)
	case errors.Is(err, models.ErrSelfReview):
		http.Error(w, "cannot review yourself", http.StatusBadRequest)
	default:
		logger.Error("internal error", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
