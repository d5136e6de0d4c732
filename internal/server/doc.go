// Package server runs the local control API of the outbox agent and stops it
// gracefully on shutdown.
package server
