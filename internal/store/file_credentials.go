package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/MKhiriev/go-outbox/internal/logger"
	"github.com/MKhiriev/go-outbox/models"
)

// fileCredentialStore is the default implementation of [CredentialStore].
// The session lives in a single JSON file readable only by the owner.
// Writes go through a temporary file and a rename so a crash never leaves a
// half-written session behind.
type fileCredentialStore struct {
	path   string
	mu     sync.Mutex
	logger *logger.Logger
}

// NewFileCredentialStore constructs a [CredentialStore] backed by the file at
// path. The file and its directory are created on the first Save.
func NewFileCredentialStore(path string, logger *logger.Logger) CredentialStore {
	return &fileCredentialStore{
		path:   path,
		logger: logger,
	}
}

func (f *fileCredentialStore) Load(ctx context.Context) (models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return models.Session{}, ErrNoSession
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "fileCredentialStore.Load").
			Str("path", f.path).
			Msg("failed to read session file")
		return models.Session{}, fmt.Errorf("failed to read session: %w", err)
	}

	var session models.Session
	if err = json.Unmarshal(raw, &session); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "fileCredentialStore.Load").
			Str("path", f.path).
			Msg("session file is corrupted")
		return models.Session{}, fmt.Errorf("failed to decode session: %w", err)
	}

	if session.Token == "" {
		return models.Session{}, ErrNoSession
	}

	return session, nil
}

func (f *fileCredentialStore) Save(ctx context.Context, session models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	tmp := f.path + ".tmp"
	if err = os.WriteFile(tmp, raw, 0o600); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "fileCredentialStore.Save").
			Str("path", f.path).
			Msg("failed to write session file")
		return fmt.Errorf("failed to write session: %w", err)
	}

	if err = os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace session: %w", err)
	}

	return nil
}

func (f *fileCredentialStore) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.FromContext(ctx).Err(err).
			Str("func", "fileCredentialStore.Clear").
			Str("path", f.path).
			Msg("failed to remove session file")
		return fmt.Errorf("failed to clear session: %w", err)
	}

	return nil
}
