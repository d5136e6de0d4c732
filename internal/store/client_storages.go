package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-outbox/internal/config"
	"github.com/MKhiriev/go-outbox/internal/logger"
)

// ClientStorages groups all storage repositories of the agent into a single
// value that can be passed around the service layer.
type ClientStorages struct {
	// Operations is the durable outbox of pending mutations.
	Operations OperationRepository
	// Identifiers persists the temporary-to-real identifier table.
	Identifiers IdentifierRepository
	// Credentials holds the bearer session.
	Credentials CredentialStore

	db *DB
}

// NewClientStorages initialises the storage layer using the supplied
// configuration and logger. It performs the following steps:
//  1. Opens the operation store named by cfg.DB.DSN (SQLite file or
//     PostgreSQL URL), creating the SQLite file if it does not yet exist.
//  2. Runs pending schema migrations via [DB.Migrate].
//  3. Wires the repositories and the file-backed credential store.
//
// Returns an error if the database connection cannot be established or if
// migration fails.
func NewClientStorages(ctx context.Context, cfg config.ClientStorage, logger *logger.Logger) (*ClientStorages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectDB(ctx, cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("database connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &ClientStorages{
		Operations:  NewOperationRepository(db, logger),
		Identifiers: NewIdentifierRepository(db, logger),
		Credentials: NewFileCredentialStore(cfg.CredentialsPath, logger),
		db:          db,
	}, nil
}

// Close releases the database connection.
func (s *ClientStorages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
