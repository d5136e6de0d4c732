// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides transport-layer abstractions for communicating with
// the REST backend pending operations are replayed against.
//
// The primary abstraction is [ServerAdapter], which decouples the dispatcher
// from the underlying protocol. The package ships an HTTP/REST
// implementation ([NewHTTPServerAdapter]) built on resty.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic error
// handling (e.g. [ErrNotFound] for 404, [ErrUnauthorized] for 401). The exact
// status and body stay available through [StatusError].
package adapter

import (
	"context"

	"github.com/MKhiriev/go-outbox/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/server_adapter_mock.go -package=mock

// ServerAdapter defines transport-agnostic communication with the backend.
// Implementations are responsible for serialisation, authentication header
// management, and mapping transport-level errors to the sentinel values
// defined in this package.
type ServerAdapter interface {
	// SetToken stores the bearer token that will be attached to all subsequent
	// requests. An empty token removes the Authorization header.
	SetToken(token string)

	// Token returns the bearer token currently stored in the adapter, or an
	// empty string if no token has been set yet.
	Token() string

	// Send performs req and returns the server's answer. For any HTTP
	// response the returned [models.DispatchResponse] carries the status and
	// body; the error is nil for 2xx and a wrapped [StatusError] otherwise.
	// When no response was received the status is zero and the error wraps
	// [ErrTransport].
	Send(ctx context.Context, req models.DispatchRequest) (models.DispatchResponse, error)

	// Ping probes the backend health endpoint. Any HTTP response, whatever
	// its status, means the backend is reachable and yields nil. Only
	// transport failures are reported, wrapped in [ErrTransport].
	Ping(ctx context.Context) error
}
