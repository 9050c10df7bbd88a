// Package auth implements the credential, session and authorization
// core: password and token lifecycle, the role/permission tables and
// the project-scoped access decision. It is transport-agnostic; the
// handler and middleware layers translate its errors to HTTP.
package auth

import (
	"fmt"
	"net/http"
)

// Kind classifies an error for transport mapping and retry guidance.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindAuthentication Kind = "authentication"
	KindAuthorization  Kind = "authorization"
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindRateLimit      Kind = "rate_limit"
	KindDatabase       Kind = "database"
)

// Machine-readable codes surfaced to clients. Codes are stable API;
// messages are not.
const (
	CodeMissingToken        = "MISSING_TOKEN"
	CodeInvalidToken        = "INVALID_TOKEN"
	CodeTokenExpired        = "TOKEN_EXPIRED"
	CodeUserNotFound        = "USER_NOT_FOUND"
	CodeAccountInactive     = "ACCOUNT_INACTIVE"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeEmailTaken          = "EMAIL_TAKEN"
	CodeSessionInvalid      = "SESSION_INVALID"
	CodeSessionExpired      = "SESSION_EXPIRED"
	CodeRoleRequired        = "ROLE_REQUIRED"
	CodePermissionRequired  = "PERMISSION_REQUIRED"
	CodeProjectNotFound     = "PROJECT_NOT_FOUND"
	CodeProjectAccessDenied = "PROJECT_ACCESS_DENIED"
	CodeRateLimited         = "RATE_LIMITED"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeDatabase            = "DATABASE_ERROR"
)

// Error is the structured failure every core operation returns. Err
// keeps the underlying cause for logs; it is never serialized.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Code, e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s (%s): %s", e.Code, e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a structured error with no underlying cause.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap builds a structured error around a lower-level cause, typically
// a storage failure that must not leak its driver-specific shape.
func Wrap(err error, kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

// HTTPStatus maps the error kind to the status the route layer should
// respond with.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
