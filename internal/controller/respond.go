package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	appErrors "github.com/unclebandit/lifecycle-messaging/internal/errors"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var tenantNotFound *appErrors.ErrTenantNotFound
	var templateNotFound *appErrors.ErrTemplateNotFound

	switch {
	case errors.As(err, &tenantNotFound), errors.As(err, &templateNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, appErrors.ErrInvalidDay), errors.Is(err, appErrors.ErrInvalidTemplate):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, appErrors.ErrAlreadySent), errors.Is(err, appErrors.ErrTenantExcluded):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
