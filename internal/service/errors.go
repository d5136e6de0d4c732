package service

import "errors"

var (
	// ErrOffline aborts a dispatcher run before any record is touched.
	ErrOffline = errors.New("backend is offline")
	// ErrAuthMissing aborts a dispatcher run when no usable credential is
	// available.
	ErrAuthMissing = errors.New("no valid credential")

	// ErrMalformedRecord marks a local defect in a pending record. The record
	// stays queued and is never sent.
	ErrMalformedRecord = errors.New("malformed operation record")
	// ErrInvalidEndpoint marks a custom endpoint outside the allow-list.
	ErrInvalidEndpoint = errors.New("custom endpoint is not allowed")
	// ErrDependencyNotReady is how a 400 for a resource with references is
	// interpreted: a referenced entity is not known to the server yet.
	ErrDependencyNotReady = errors.New("dependency not ready")

	ErrInvalidOperation = errors.New("invalid operation")
	ErrEmptyToken       = errors.New("empty token")

	ErrVersionIsNotSpecified = errors.New("app version is not specified")
)
