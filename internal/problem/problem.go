// Package problem classifies failures and renders them as RFC 7807 problem
// envelopes carrying a correlation id and an observation timestamp.
package problem

import (
	"errors"
	"fmt"
	"net/http"
)

// TypeBaseURI prefixes every problem type URI.
const TypeBaseURI = "https://api.choretracker.com/errors/"

// Kind is the category of a failure.
type Kind string

// Failure categories
const (
	KindValidation     Kind = "validation-error"
	KindBusinessRule   Kind = "business-rule-error"
	KindNotFound       Kind = "not-found-error"
	KindAuthentication Kind = "authentication-error"
	KindAuthorization  Kind = "authorization-error"
	KindRateLimit      Kind = "rate-limit-error"
	KindInternal       Kind = "internal-error"
)

// TypeURI returns the stable URI identifying the category.
func (k Kind) TypeURI() string {
	return TypeBaseURI + string(k)
}

// Title returns the human-readable category title.
func (k Kind) Title() string {
	switch k {
	case KindValidation:
		return "Validation Error"
	case KindBusinessRule:
		return "Business Rule Violation"
	case KindNotFound:
		return "Not Found"
	case KindAuthentication:
		return "Authentication Error"
	case KindAuthorization:
		return "Authorization Error"
	case KindRateLimit:
		return "Rate Limit Exceeded"
	default:
		return "Internal Server Error"
	}
}

// Status returns the default HTTP status of the category.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindBusinessRule:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// GenericDetail is the only detail ever shown for unexpected failures.
const GenericDetail = "An unexpected error occurred"

// Error is a failure classified where it happened. Its fields are carried
// into the envelope unchanged.
type Error struct {
	Kind          Kind
	Title         string
	Status        int
	Detail        string
	CorrelationID string
	Err           error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithCorrelationID returns a copy bound to the given correlation id.
func (e *Error) WithCorrelationID(id string) *Error {
	cp := *e
	cp.CorrelationID = id
	return &cp
}

// New creates a classified error with the category's default title and status.
func New(kind Kind, detail string) *Error {
	return &Error{
		Kind:   kind,
		Title:  kind.Title(),
		Status: kind.Status(),
		Detail: detail,
	}
}

// Wrap creates a classified error whose detail is taken from cause.
func Wrap(kind Kind, cause error) *Error {
	e := New(kind, cause.Error())
	e.Err = cause
	return e
}

// Validation reports malformed or out-of-schema input (422).
func Validation(detail string) *Error {
	return New(KindValidation, detail)
}

// BusinessRule reports input that is well formed but invalid given current
// state (400), for example a duplicate email.
func BusinessRule(detail string) *Error {
	return New(KindBusinessRule, detail)
}

// NotFound reports a missing resource (404).
func NotFound(detail string) *Error {
	return New(KindNotFound, detail)
}

// Unauthenticated reports missing or invalid credentials (401).
func Unauthenticated(detail string) *Error {
	return New(KindAuthentication, detail)
}

// Forbidden reports an authenticated caller lacking permission (403).
func Forbidden(detail string) *Error {
	return New(KindAuthorization, detail)
}

// RateLimited reports a denied admission (429).
func RateLimited(detail string) *Error {
	return New(KindRateLimit, detail)
}

// Internal wraps an unexpected failure. The cause is kept for logging only.
func Internal(cause error) *Error {
	e := New(KindInternal, GenericDetail)
	e.Err = cause
	return e
}

// HTTPError is a framework-level failure identified only by status code,
// such as an unmatched route or a disallowed method.
type HTTPError struct {
	Status int
	Detail string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.Detail)
}

// NewHTTPError creates an HTTPError. An empty detail falls back to the
// standard status text.
func NewHTTPError(status int, detail string) *HTTPError {
	if detail == "" {
		detail = http.StatusText(status)
	}
	return &HTTPError{Status: status, Detail: detail}
}

// KindForStatus maps a bare status code to a category.
func KindForStatus(status int) Kind {
	switch status {
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusUnauthorized:
		return KindAuthentication
	case http.StatusForbidden:
		return KindAuthorization
	default:
		return KindInternal
	}
}

// As extracts a classified error from err's chain.
func As(err error) (*Error, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsKind reports whether err carries a classified error of the given kind.
func IsKind(err error, kind Kind) bool {
	pe, ok := As(err)
	return ok && pe.Kind == kind
}
