package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrymomot/tenantgate"
	"github.com/dmitrymomot/tenantgate/pkg/hostname"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusForError maps package sentinels onto stable HTTP status codes so
// clients can branch on status instead of parsing messages.
func statusForError(err error) int {
	switch {
	case errors.Is(err, tenantgate.ErrTenantNotFound):
		return http.StatusNotFound
	case errors.Is(err, tenantgate.ErrVerificationInProgress),
		errors.Is(err, tenantgate.ErrStatusConflict),
		errors.Is(err, tenantgate.ErrDomainTaken),
		errors.Is(err, tenantgate.ErrSlugTaken):
		return http.StatusConflict
	case errors.Is(err, tenantgate.ErrNoDomainConfigured),
		errors.Is(err, tenantgate.ErrDomainReserved),
		errors.Is(err, hostname.ErrEmptyDomain),
		errors.Is(err, hostname.ErrDomainTooLong),
		errors.Is(err, hostname.ErrInvalidDomain):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage keeps internal failure detail out of responses.
func publicMessage(err error, status int) string {
	if status == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}

func writeDomainError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	writeError(w, status, publicMessage(err, status))
}
