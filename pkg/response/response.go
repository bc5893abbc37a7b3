// Package response provides the JSON envelope every handler writes,
// plus the mapping from domain errors to HTTP statuses.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tradelink/backend/internal/domain"
)

// Response is the standard API envelope.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo contains error details.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JSON sends a JSON response.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{
		Success: status >= 200 && status < 300,
		Data:    data,
	})
}

// Error sends an error response.
func Error(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{
		Success: false,
		Error:   &ErrorInfo{Code: code, Message: message},
	})
}

func OK(w http.ResponseWriter, data interface{})      { JSON(w, http.StatusOK, data) }
func Created(w http.ResponseWriter, data interface{}) { JSON(w, http.StatusCreated, data) }

func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, "VALIDATION_ERROR", message)
}

func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, "FORBIDDEN", message)
}

func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, "NOT_FOUND", message)
}

func Conflict(w http.ResponseWriter, message string) {
	Error(w, http.StatusConflict, "CONFLICT", message)
}

func InvalidState(w http.ResponseWriter, message string) {
	Error(w, http.StatusConflict, "INVALID_STATE", message)
}

func InternalError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, "PERSISTENCE_ERROR", message)
}

// DomainError maps a domain error onto the envelope. Unrecognized
// errors are reported as persistence failures without leaking the
// underlying message.
func DomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		BadRequest(w, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		Forbidden(w, err.Error())
	case errors.Is(err, domain.ErrInvalidState):
		InvalidState(w, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		Conflict(w, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrTokenRevoked):
		Unauthorized(w, err.Error())
	default:
		InternalError(w, "operation failed")
	}
}
