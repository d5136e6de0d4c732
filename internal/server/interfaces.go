package server

import "context"

// Server defines the lifecycle of the control API transport.
//
// RunServer blocks until the server stops and returns nil after a graceful
// [Server.Shutdown].
type Server interface {
	RunServer() error

	// Shutdown stops accepting requests and waits for in-flight ones until
	// ctx expires.
	Shutdown(ctx context.Context) error
}
