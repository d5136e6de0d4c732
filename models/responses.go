package models

import "time"

// EnqueueRequest is the body of POST /api/outbox/operations.
type EnqueueRequest struct {
	Type           OperationType `json:"type"`
	Resource       string        `json:"resource"`
	Payload        Payload       `json:"payload"`
	CustomEndpoint string        `json:"customEndpoint,omitempty"`
}

// OperationsResponse lists pending operations.
type OperationsResponse struct {
	Operations []Operation `json:"operations"`
	Length     int         `json:"length"`
}

// StatusResponse describes the outbox state for diagnostics.
type StatusResponse struct {
	Online        bool       `json:"online"`
	Authenticated bool       `json:"authenticated"`
	Draining      bool       `json:"draining"`
	Pending       int        `json:"pending"`
	LastRun       *RunReport `json:"last_run,omitempty"`
}

// ConnectivityRequest lets the host application report a network change.
type ConnectivityRequest struct {
	Online bool `json:"online"`
}

// CredentialsRequest hands a bearer token to the outbox.
type CredentialsRequest struct {
	Token string `json:"token"`
}

// Session is the persisted credential used to authenticate dispatch calls.
type Session struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}
