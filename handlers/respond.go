package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"timeclock/logging"
	"timeclock/timesheet"
)

const (
	ErrCodeInvalidPayload = "invalid_payload"
	ErrCodeValidation     = "validation_error"
	ErrCodeUnauthorized   = "unauthorized"
	ErrCodeForbidden      = "forbidden"
	ErrCodeNotFound       = "not_found"
	ErrCodeConflict       = "conflict"
	ErrCodeInternal       = "internal_server_error"
)

var validate = validator.New()

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, code, message string, devErrs ...error) {
	respondJSON(w, status, errorResponse{Code: code, Message: message})

	fields := logrus.Fields{"status": status, "code": code}
	if len(devErrs) > 0 && devErrs[0] != nil {
		fields["error"] = devErrs[0].Error()
	}
	logging.Logger.WithFields(fields).Warn(message)
}

// respondServiceError maps service-layer failures onto the error envelope:
// validation problems are the caller's fault, everything else is a 500.
func respondServiceError(w http.ResponseWriter, err error) {
	var ve *timesheet.ValidationError
	if errors.As(err, &ve) {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, ve.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Operation failed", err)
}

// decodeAndValidate parses the JSON body into dst and runs struct
// validation. It writes the error response itself and reports success.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidPayload, "Malformed JSON body", err)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return false
	}
	return true
}
