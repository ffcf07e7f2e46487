// Package apperr provides the structured error taxonomy for the playshare API.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a structured application error carrying a machine-stable code,
// a client-safe message and the HTTP status it maps to.
type Error struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	HTTPStatus int         `json:"-"`
	Details    interface{} `json:"details,omitempty"`
	Err        error       `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithError returns a copy of e wrapping err. The original predeclared value
// is left untouched so package-level errors stay comparable.
func (e *Error) WithError(err error) *Error {
	clone := *e
	clone.Err = err
	return &clone
}

// WithDetails returns a copy of e carrying additional client-visible details.
func (e *Error) WithDetails(details interface{}) *Error {
	clone := *e
	clone.Details = details
	return &clone
}

// WithMessage returns a copy of e with a different client-visible message.
func (e *Error) WithMessage(msg string) *Error {
	clone := *e
	clone.Message = msg
	return &clone
}

// New creates a new Error.
func New(code, message string, httpStatus int) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Error codes.
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeMissingField    = "MISSING_FIELD"
	CodeAuthRequired    = "AUTH_REQUIRED"
	CodeInvalidToken    = "INVALID_TOKEN"
	CodeAdminRequired   = "ADMIN_REQUIRED"
	CodeBadCredentials  = "INVALID_CREDENTIALS"
	CodeDuplicateUser   = "DUPLICATE_USER"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeDuplicateReview = "DUPLICATE_REVIEW"
	CodeDuplicateSong   = "DUPLICATE_SONG"
	CodeBadRange        = "BAD_RANGE"
	CodeMultiRange      = "MULTIRANGE_UNSUPPORTED"
	CodeInternal        = "SERVER_ERROR"
)

// Predeclared errors covering the API failure taxonomy.
var (
	ErrValidation   = New(CodeValidation, "Request body is not a valid object.", http.StatusBadRequest)
	ErrMissingField = New(CodeMissingField, "Required field missing.", http.StatusBadRequest)

	// A missing token is 403, an invalid one 401, matching the documented
	// API contract.
	ErrAuthRequired = New(CodeAuthRequired, "Auth token required.", http.StatusForbidden)
	ErrInvalidToken = New(CodeInvalidToken, "Invalid authentication token.", http.StatusUnauthorized)

	// Creating an admin account without holding the admin flag reports 401
	// per the documented API contract.
	ErrAdminRequired  = New(CodeAdminRequired, "Not authorized to create an admin account.", http.StatusUnauthorized)
	ErrBadCredentials = New(CodeBadCredentials, "Invalid authentication credentials.", http.StatusUnauthorized)
	ErrDuplicateUser  = New(CodeDuplicateUser, "A user with that email already exists.", http.StatusConflict)

	ErrForbidden = New(CodeForbidden, "Unauthorized to access the specified resource.", http.StatusForbidden)
	ErrNotFound  = New(CodeNotFound, "Resource not found.", http.StatusNotFound)

	// Duplicate review and membership report 403 per the API contract,
	// although semantically these are conflicts.
	ErrDuplicateReview = New(CodeDuplicateReview, "User has already posted a review of this playlist.", http.StatusForbidden)
	ErrDuplicateSong   = New(CodeDuplicateSong, "Song may only be added to a playlist once.", http.StatusForbidden)

	ErrBadRange   = New(CodeBadRange, "Invalid range.", http.StatusBadRequest)
	ErrMultiRange = New(CodeMultiRange, "Multipart ranges not supported.", http.StatusInternalServerError)

	ErrInternal = New(CodeInternal, "Internal server error. Please try again later.", http.StatusInternalServerError)
)

// IsError reports whether err carries the same code as target.
func IsError(err error, target *Error) bool {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Code == target.Code
}

// GetHTTPStatus returns the HTTP status for err, defaulting to 500 for
// errors outside the taxonomy.
func GetHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var appErr *Error
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	return appErr.HTTPStatus
}
