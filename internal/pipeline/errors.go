package pipeline

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a terminal pipeline failure.
type Kind string

const (
	KindAccessDenied        Kind = "access_denied"
	KindUnsupportedFormat   Kind = "unsupported_format"
	KindEmptyContent        Kind = "empty_content"
	KindUpstreamUnavailable Kind = "upstream_unavailable"
	KindStorageFailure      Kind = "storage_failure"
	KindNotFound            Kind = "not_found"
)

// ErrRateLimited tags a completion error caused by provider rate limiting.
// The retry loop backs off on a longer schedule when it sees this sentinel.
var ErrRateLimited = errors.New("rate limited")

// Error is a classified pipeline failure. The kind decides the HTTP status
// class reported to the caller; the wrapped error keeps the upstream cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus maps the failure kind to a status class: client errors for
// access/format/content problems, server errors for upstream/storage ones.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindAccessDenied:
		return http.StatusForbidden
	case KindUnsupportedFormat, KindEmptyContent, KindNotFound:
		return http.StatusBadRequest
	case KindUpstreamUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// E builds a classified error wrapping err (err may be nil).
func E(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the failure kind from err, or storage_failure if err is
// not a classified pipeline error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindStorageFailure
}

// StatusOf returns the HTTP status for err, defaulting to 500.
func StatusOf(err error) int {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.HTTPStatus()
	}
	return http.StatusInternalServerError
}
