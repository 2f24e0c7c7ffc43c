// Package httpapi writes the JSON bodies of the operational endpoints.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/iota-uz/garage/pkg/sequence"
)

const (
	CodeInternal         = "INTERNAL_SERVER_ERROR"
	CodeBadRequest       = "BAD_REQUEST"
	CodeNotFound         = "NOT_FOUND"
	CodeLockTimeout      = "LOCK_TIMEOUT"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
)

// ErrorEnvelope is the body of every error response.
type ErrorEnvelope struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Meta    map[string]string `json:"meta,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, code, message string, meta map[string]string) error {
	return WriteJSON(w, status, &ErrorEnvelope{
		Code:    code,
		Message: message,
		Meta:    meta,
	})
}

// StatusFor maps sequence failures to a status and code. Both sequence
// failures are transient, so they answer 503 and the client may retry.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, sequence.ErrLockTimeout):
		return http.StatusServiceUnavailable, CodeLockTimeout
	case errors.Is(err, sequence.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, CodeStoreUnavailable
	case errors.Is(err, sequence.ErrInvalidKey):
		return http.StatusBadRequest, CodeBadRequest
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// WriteFailure writes err with the status from StatusFor. Internal errors
// are reported without their message.
func WriteFailure(w http.ResponseWriter, err error) error {
	status, code := StatusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = http.StatusText(status)
	}
	return WriteError(w, status, code, message, nil)
}
