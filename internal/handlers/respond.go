package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	svc "github.com/lespetitsreves/lprds/internal/services"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// decodeJSON binds and validates a request body. Validation failures are the
// "client-side validation" error class: 400 with the field message.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// serviceErr maps service sentinels onto HTTP statuses; anything unexpected is
// logged and reported as a plain database error.
func serviceErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, svc.ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound):
		writeErr(w, http.StatusNotFound, "not found")
	case errors.Is(err, svc.ErrRoleNotAllowed):
		writeErr(w, http.StatusForbidden, "role not allowed")
	case errors.Is(err, svc.ErrAlreadyValidated):
		writeErr(w, http.StatusConflict, "report already validated")
	case errors.Is(err, svc.ErrNotSubmitted):
		writeErr(w, http.StatusConflict, "report not awaiting review")
	case errors.Is(err, svc.ErrCapacityExceeded):
		writeErr(w, http.StatusConflict, "group capacity exceeded")
	case errors.Is(err, svc.ErrInvalidScanType) || errors.Is(err, svc.ErrBadQRPayload):
		writeErr(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("handler: %v", err)
		writeErr(w, http.StatusInternalServerError, "database error")
	}
}

func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
