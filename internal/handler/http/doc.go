// Package http implements the local control API of the outbox agent.
//
// The host application uses it to enqueue mutations, hand over the bearer
// credential, report connectivity changes and inspect the queue. Request
// tracing, access logging and compression are applied here before requests
// reach the service layer.
package http
