// Package apierror describes flow outcomes that are reported to the client
// as a status code and a fixed message.
package apierror

import (
	"errors"
	"net/http"
)

// APIError is a client-visible failure. Message is safe to return as is;
// Err, when set, is only logged.
type APIError struct {
	HTTPCode int
	Message  string
	Err      error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// As extracts an APIError from err.
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func NewErrMissingRegistrationFields() *APIError {
	return &APIError{HTTPCode: http.StatusBadRequest, Message: "All fields are required"}
}

func NewErrPasswordsDoNotMatch() *APIError {
	return &APIError{HTTPCode: http.StatusBadRequest, Message: "Passwords do not match"}
}

func NewErrMissingCredentials() *APIError {
	return &APIError{HTTPCode: http.StatusBadRequest, Message: "Username and password are required"}
}

func NewErrPasswordTooLong(err error) *APIError {
	return &APIError{HTTPCode: http.StatusBadRequest, Message: "Password is too long", Err: err}
}

func NewErrInvalidBody(err error) *APIError {
	return &APIError{HTTPCode: http.StatusBadRequest, Message: "Invalid request body", Err: err}
}

func NewErrUserExists(err error) *APIError {
	return &APIError{HTTPCode: http.StatusConflict, Message: "Username or email already exists", Err: err}
}

// NewErrInvalidCredentials is shared by the unknown user and wrong password cases.
func NewErrInvalidCredentials() *APIError {
	return &APIError{HTTPCode: http.StatusUnauthorized, Message: "Invalid username or password"}
}

func NewErrUnauthorized() *APIError {
	return &APIError{HTTPCode: http.StatusUnauthorized, Message: "Unauthorized"}
}

func NewErrInvalidToken(err error) *APIError {
	return &APIError{HTTPCode: http.StatusUnauthorized, Message: "Invalid token", Err: err}
}

func NewErrMethodNotAllowed() *APIError {
	return &APIError{HTTPCode: http.StatusMethodNotAllowed, Message: "Method not allowed"}
}

func NewErrNotFound() *APIError {
	return &APIError{HTTPCode: http.StatusNotFound, Message: "Not found"}
}

// NewErrInternal hides err from the client behind a generic message.
func NewErrInternal(err error) *APIError {
	return &APIError{HTTPCode: http.StatusInternalServerError, Message: "Internal server error", Err: err}
}
