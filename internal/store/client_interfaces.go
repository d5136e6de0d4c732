package store

import (
	"context"

	"github.com/MKhiriev/go-outbox/models"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/client_store_mock.go -package=mock

// OperationRepository is the durable outbox of pending mutations.
//
// A record exists in the repository if and only if the server has not yet
// confirmed it. Records are listed in insertion order; replacing a record
// keeps its original position.
type OperationRepository interface {
	// Put stores op, replacing any record with the same ID, and returns the
	// stored record. An empty ID is filled with a fresh UUIDv7.
	Put(ctx context.Context, op models.Operation) (models.Operation, error)
	// List returns every pending record in insertion order.
	List(ctx context.Context) ([]models.Operation, error)
	// Get returns the record with the given ID or [ErrOperationNotFound].
	Get(ctx context.Context, id string) (models.Operation, error)
	// Remove deletes the record with the given ID. Removing an absent record
	// is not an error.
	Remove(ctx context.Context, id string) error
	// Count returns the number of pending records.
	Count(ctx context.Context) (int, error)
	// LastTimestamp returns the newest enqueue timestamp among pending
	// records, or zero when the store is empty.
	LastTimestamp(ctx context.Context) (int64, error)
}

// IdentifierRepository persists the temporary-to-real identifier table so a
// mapping learned in one run survives a restart.
type IdentifierRepository interface {
	// SaveMapping stores or replaces the mapping for mapping.TempID.
	SaveMapping(ctx context.Context, mapping models.IdentifierMapping) error
	// GetMapping returns the mapping for tempID or [ErrMappingNotFound].
	GetMapping(ctx context.Context, tempID string) (models.IdentifierMapping, error)
	// ListMappings returns every known mapping.
	ListMappings(ctx context.Context) ([]models.IdentifierMapping, error)
}

// CredentialStore holds the bearer session the agent authenticates with.
type CredentialStore interface {
	// Load returns the saved session or [ErrNoSession].
	Load(ctx context.Context) (models.Session, error)
	// Save persists session, replacing any previous one.
	Save(ctx context.Context, session models.Session) error
	// Clear forgets the session. Clearing an absent session is not an error.
	Clear(ctx context.Context) error
}
