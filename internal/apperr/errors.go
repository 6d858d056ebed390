package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies a failure for the caller.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindPermissionDenied
	KindPersistence
	KindConnectivity
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindPermissionDenied:
		return "permission_denied"
	case KindPersistence:
		return "persistence"
	case KindConnectivity:
		return "connectivity"
	default:
		return "unknown"
	}
}

// Error is the application error carried from services up to the handlers.
// Message is always safe to show to the caller; Err holds the internal cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }

func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }

func PermissionDenied(msg string) *Error { return &Error{Kind: KindPermissionDenied, Message: msg} }

func Persistence(msg string, err error) *Error {
	return &Error{Kind: KindPersistence, Message: msg, Err: err}
}

func Connectivity(msg string, err error) *Error {
	return &Error{Kind: KindConnectivity, Message: msg, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps a kind onto the response status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindPermissionDenied:
		return http.StatusForbidden
	case KindConnectivity:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns what the caller may see. Persistence and unknown failures
// only expose their detail when debug is on.
func PublicMessage(err error, debug bool) string {
	var appErr *Error
	if !errors.As(err, &appErr) {
		if debug {
			return err.Error()
		}
		return "something went wrong"
	}
	switch appErr.Kind {
	case KindPersistence, KindUnknown:
		if debug {
			return appErr.Error()
		}
		return appErr.Message
	default:
		return appErr.Message
	}
}
