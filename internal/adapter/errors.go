package adapter

import (
	"errors"
	"fmt"
)

var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrInternalServerError = errors.New("internal server error")
	ErrBadGateway          = errors.New("bad gateway")
	ErrServiceUnavailable  = errors.New("service unavailable")

	// ErrUnexpectedStatus covers non-2xx statuses without a dedicated
	// sentinel.
	ErrUnexpectedStatus = errors.New("unexpected status")

	// ErrTransport means no HTTP response was received (DNS, refused
	// connection, timeout, cancelled context).
	ErrTransport = errors.New("transport failure")
)

// StatusError is returned for every non-2xx response. It unwraps to the
// sentinel matching the status.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http %d: %s", e.Status, e.Unwrap())
	}
	return fmt.Sprintf("http %d: %s: %s", e.Status, e.Unwrap(), e.Body)
}

func (e *StatusError) Unwrap() error {
	return sentinelFor(e.Status)
}
