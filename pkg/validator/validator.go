// Package validator holds request-level input checks shared by the
// HTTP handlers.
package validator

import (
	"net/mail"
	"strings"
)

// ValidationError represents a single failed check.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Field+": "+e.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, ValidationError{Field: field, Message: message})
}

// ValidateEmail validates an email address.
func ValidateEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

// ValidateName checks display name length bounds.
func ValidateName(name string) bool {
	name = strings.TrimSpace(name)
	return len(name) >= 2 && len(name) <= 100
}

// SanitizeEmail normalizes an email address.
func SanitizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
