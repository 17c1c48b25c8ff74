// Package apperror holds the error taxonomy shared by services and handlers.
// Every expected failure carries a Kind (mapped to an HTTP status) and a
// stable machine code that clients can branch on.
package apperror

import (
	"errors"
	"net/http"
	"time"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindTooManyRequests
)

type Error struct {
	Kind       Kind
	Code       string
	Message    string
	RetryAfter time.Duration
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches on code so copies carrying extra data (RetryAfter) still
// compare equal to the sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

var (
	ErrMissingFields          = New(KindValidation, "MISSING_FIELDS", "required fields are missing")
	ErrInvalidRequest         = New(KindValidation, "INVALID_REQUEST", "invalid request body")
	ErrInvalidUsername        = New(KindValidation, "INVALID_USERNAME", "username must be 3-20 letters, digits or underscores")
	ErrInvalidEmail           = New(KindValidation, "INVALID_EMAIL", "invalid email address")
	ErrPasswordTooShort       = New(KindValidation, "PASSWORD_TOO_SHORT", "password must be at least 6 characters")
	ErrInvalidCredentials     = New(KindValidation, "INVALID_CREDENTIALS", "invalid login or password")
	ErrNoFieldsToUpdate       = New(KindValidation, "NO_FIELDS_TO_UPDATE", "no fields to update")
	ErrInvalidCurrentPassword = New(KindValidation, "INVALID_CURRENT_PASSWORD", "current password is incorrect")
	ErrSamePassword           = New(KindValidation, "SAME_PASSWORD", "new password must differ from the current one")
	ErrInvalidResetToken      = New(KindValidation, "INVALID_RESET_TOKEN", "reset token is invalid or expired")
	ErrInvalidFileType        = New(KindValidation, "INVALID_FILE_TYPE", "file type is not allowed")
	ErrFileTooLarge           = New(KindValidation, "FILE_TOO_LARGE", "file is too large")
	ErrEmptyComment           = New(KindValidation, "EMPTY_COMMENT", "comment must not be empty")
	ErrSelfFollow             = New(KindValidation, "SELF_FOLLOW", "cannot follow yourself")
	ErrDefaultAlbumProtected  = New(KindValidation, "DEFAULT_ALBUM_PROTECTED", "the default album cannot be changed or deleted")
	ErrInvalidPrivacy         = New(KindValidation, "INVALID_PRIVACY_LEVEL", "privacy level must be public, private or friends")

	ErrUsernameExists = New(KindConflict, "USERNAME_EXISTS", "username already exists")
	ErrEmailExists    = New(KindConflict, "EMAIL_EXISTS", "email already exists")

	ErrNoToken      = New(KindUnauthenticated, "NO_TOKEN", "authentication required")
	ErrInvalidToken = New(KindUnauthenticated, "INVALID_TOKEN", "invalid or expired session")

	ErrForbidden = New(KindForbidden, "FORBIDDEN", "access denied")
	ErrNotFound  = New(KindNotFound, "NOT_FOUND", "resource not found")

	ErrTooManyAttempts = New(KindTooManyRequests, "TOO_MANY_ATTEMPTS", "too many failed login attempts, try again later")
	ErrRateLimited     = New(KindTooManyRequests, "RATE_LIMITED", "too many requests")

	ErrInternal = New(KindInternal, "INTERNAL_ERROR", "internal server error")
)

// TooManyAttempts returns a lockout error carrying the remaining lock time.
func TooManyAttempts(retryAfter time.Duration) *Error {
	e := *ErrTooManyAttempts
	e.RetryAfter = retryAfter
	return &e
}

// From extracts the taxonomy error from err. Unknown errors become ErrInternal
// and ok is false so callers can log them.
func From(err error) (appErr *Error, ok bool) {
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return ErrInternal, false
}
