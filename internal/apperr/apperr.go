package apperr

import (
	"fmt"
	"net/http"
)

// APIError is a domain error carrying the HTTP status it should be
// translated to at the handler boundary. Fields holds per-field
// validation messages when the error is a validation failure.
type APIError struct {
	HTTPCode int
	Message  string
	Fields   map[string]string
}

func (e *APIError) Error() string {
	return e.Message
}

// NewErrValidation reports one or more invalid input fields.
func NewErrValidation(fields map[string]string) *APIError {
	return &APIError{
		HTTPCode: http.StatusBadRequest,
		Message:  "validation failed",
		Fields:   fields,
	}
}

// NewErrUnauthenticated reports a missing or invalid bearer token.
func NewErrUnauthenticated(message string) *APIError {
	return &APIError{HTTPCode: http.StatusUnauthorized, Message: message}
}

// NewErrInvalidCredentials reports a failed email/password check.
func NewErrInvalidCredentials() *APIError {
	return &APIError{HTTPCode: http.StatusUnauthorized, Message: "invalid credentials"}
}

// NewErrInvalidAdminCode reports a wrong admin registration code.
func NewErrInvalidAdminCode() *APIError {
	return &APIError{HTTPCode: http.StatusUnauthorized, Message: "invalid admin registration code"}
}

// NewErrForbidden reports an authenticated caller without access.
func NewErrForbidden(message string) *APIError {
	return &APIError{HTTPCode: http.StatusForbidden, Message: message}
}

// NewErrNotFound reports a missing resource.
func NewErrNotFound(resource string) *APIError {
	return &APIError{HTTPCode: http.StatusNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

// NewErrEmailIsTaken reports a duplicate registration email.
func NewErrEmailIsTaken(email string) *APIError {
	return &APIError{HTTPCode: http.StatusBadRequest, Message: fmt.Sprintf("email %s is already taken", email)}
}

// NewErrInvalidID reports a malformed resource identifier.
func NewErrInvalidID(id string) *APIError {
	return &APIError{HTTPCode: http.StatusBadRequest, Message: fmt.Sprintf("invalid id %q", id)}
}

// NewErrInvalidTransition reports a moderation action on a product that
// is no longer pending.
func NewErrInvalidTransition(from string) *APIError {
	return &APIError{HTTPCode: http.StatusBadRequest, Message: fmt.Sprintf("product is already %s", from)}
}
