package service

import (
	"context"
	"time"

	"github.com/MKhiriev/go-outbox/models"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/client_service_mock.go -package=mock

// OutboxService is the producer-facing entry point of the outbox.
type OutboxService interface {
	// Enqueue validates req, assigns the record identifier (and a temporary
	// entity identifier for a CREATE without one), persists the record and,
	// when the backend is reachable, requests a sync run.
	// The stored record is returned. Enqueue never waits for the server.
	Enqueue(ctx context.Context, req models.EnqueueRequest) (models.Operation, error)

	// Pending returns every queued record in insertion order.
	Pending(ctx context.Context) ([]models.Operation, error)

	// Status reports connectivity, credential presence, queue length and
	// the outcome of the last dispatcher run.
	Status(ctx context.Context) (models.StatusResponse, error)
}

// Dispatcher drains the operation store against the backend.
type Dispatcher interface {
	// Run performs one pass over a snapshot of the store. It returns
	// [ErrOffline] or [ErrAuthMissing] without touching any record when the
	// preconditions are not met. Per-record failures never surface as an
	// error; they are counted in the returned report.
	Run(ctx context.Context) (models.RunReport, error)

	// LastReport returns the report of the most recent completed run.
	LastReport() (models.RunReport, bool)

	// Draining reports whether a run is in progress.
	Draining() bool
}

// SyncTrigger decides when the dispatcher runs.
type SyncTrigger interface {
	// Start requests a run when the backend is already reachable and a
	// credential is present.
	Start(ctx context.Context)

	// TriggerSync requests a run without blocking. Requests made while a
	// run is pending are coalesced.
	TriggerSync()

	// Run consumes run requests until ctx is cancelled.
	Run(ctx context.Context) error
}

// ConnectivitySignal tracks whether the backend is reachable.
type ConnectivitySignal interface {
	IsOnline() bool

	// OnChange registers fn to be called with the new state on every
	// transition. Callbacks run synchronously on the goroutine that observed
	// the change and must not block.
	OnChange(fn func(online bool))

	// SetOnline records an explicit report from the host application.
	SetOnline(online bool)

	// Run probes the backend periodically until ctx is cancelled.
	Run(ctx context.Context) error
}

// CredentialProvider hands out the bearer token used for dispatch.
type CredentialProvider interface {
	// Token returns the stored token, or an empty string when none is stored
	// or the stored token has expired.
	Token(ctx context.Context) (string, error)

	// SetToken stores token, replacing the previous one.
	SetToken(ctx context.Context, token string) error

	// ClearToken forgets the stored token.
	ClearToken(ctx context.Context) error
}

// EntityMirror is an external read cache that may still hold an entity under
// its temporary identifier.
type EntityMirror interface {
	// PatchEntry replaces the entry cached under tempID with entity, the
	// representation the server returned for the confirmed CREATE.
	PatchEntry(ctx context.Context, tempID string, entity models.Payload) error
}

// IdentifierResolver owns the temporary-to-real identifier table.
type IdentifierResolver interface {
	// Load refreshes the in-memory table from the store.
	Load(ctx context.Context) error

	// Lookup returns the mapping for tempID.
	Lookup(ctx context.Context, tempID string) (models.IdentifierMapping, error)

	// Record stores a mapping learned from a confirmed CREATE.
	Record(ctx context.Context, mapping models.IdentifierMapping) error

	// Rewrite replaces every known temporary identifier in op's payload and
	// custom endpoint. The boolean reports whether anything changed.
	Rewrite(op models.Operation) (models.Operation, bool)
}

// ClientSyncJob periodically requests sync runs in the background.
type ClientSyncJob interface {
	// Start launches the job, replacing a running one. A non-positive
	// interval disables it.
	Start(ctx context.Context, interval time.Duration)

	// Stop cancels the job and waits for it to exit.
	Stop()
}
