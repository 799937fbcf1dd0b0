package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

// NotFound: board/thread/response absent.
type NotFound struct {
	What string
}

func (e *NotFound) Error() string {
	return fmt.Sprintf("%s not found", e.What)
}

// VerificationRequired carries the challenge site key so clients can render
// the captcha widget.
type VerificationRequired struct {
	SiteKey string
}

func (e *VerificationRequired) Error() string {
	return "verification required"
}

type ContentTooShort struct {
	Field string
	Min   int
}

func (e *ContentTooShort) Error() string {
	return fmt.Sprintf("%s must be at least %d characters", e.Field, e.Min)
}

type ContentTooLong struct {
	Field string
	Max   int
}

func (e *ContentTooLong) Error() string {
	return fmt.Sprintf("%s must be at most %d characters", e.Field, e.Max)
}

// PostRateLimit: the cooldown for this identity and action has not elapsed.
type PostRateLimit struct {
	Remaining int // seconds until the next post is allowed
}

func (e *PostRateLimit) Error() string {
	return fmt.Sprintf("rate limited, %d seconds remaining", e.Remaining)
}

// BackendError is a user-facing domain failure with a machine code
// (unknown emoji, reaction limit, response cap and the like).
type BackendError struct {
	Code    string
	Message string
}

func (e *BackendError) Error() string {
	return e.Message
}

// ErrAlreadyExists signals a unique constraint hit. The thread key allocator
// retries on it; everywhere else it surfaces as a conflict.
var ErrAlreadyExists = errors.New("already exists")

// StatusCode maps any error to the HTTP status both protocol surfaces use.
func StatusCode(err error) int {
	var (
		statusErr *ErrorWithStatusCode
		notFound  *NotFound
		verif     *VerificationRequired
		tooShort  *ContentTooShort
		tooLong   *ContentTooLong
		rateLimit *PostRateLimit
		backend   *BackendError
	)
	switch {
	case errors.As(err, &statusErr):
		return statusErr.StatusCode
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &verif):
		return http.StatusUnauthorized
	case errors.As(err, &tooShort):
		return http.StatusBadRequest
	case errors.As(err, &tooLong):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &rateLimit):
		return http.StatusTooManyRequests
	case errors.As(err, &backend):
		// user-facing, but still a server-side failure class
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Detail maps any error to the machine-readable detail code of the JSON API.
func Detail(err error) string {
	var (
		notFound  *NotFound
		verif     *VerificationRequired
		tooShort  *ContentTooShort
		tooLong   *ContentTooLong
		rateLimit *PostRateLimit
		backend   *BackendError
	)
	switch {
	case errors.As(err, &notFound):
		return "NOT_FOUND"
	case errors.As(err, &verif):
		return "VERIFICATION_REQUIRED"
	case errors.As(err, &tooShort):
		return "CONTENT_TOO_SHORT"
	case errors.As(err, &tooLong):
		return "CONTENT_TOO_LONG"
	case errors.As(err, &rateLimit):
		return "OTITUITE"
	case errors.As(err, &backend):
		return backend.Code
	default:
		return "INTERNAL_SERVER_ERROR"
	}
}
