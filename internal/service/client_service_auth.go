package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-outbox/internal/logger"
	"github.com/MKhiriev/go-outbox/internal/store"
	"github.com/MKhiriev/go-outbox/internal/utils"
	"github.com/MKhiriev/go-outbox/models"
)

type clientAuthService struct {
	credentials store.CredentialStore
	now         func() time.Time
	logger      *logger.Logger
}

// NewClientAuthService returns a [CredentialProvider] backed by credentials.
// JWTs whose exp claim has passed are reported as absent; opaque tokens are
// handed out until they are cleared.
func NewClientAuthService(credentials store.CredentialStore, logger *logger.Logger) CredentialProvider {
	return &clientAuthService{credentials: credentials, now: time.Now, logger: logger}
}

func (a *clientAuthService) Token(ctx context.Context) (string, error) {
	session, err := a.credentials.Load(ctx)
	if errors.Is(err, store.ErrNoSession) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}

	if utils.TokenExpired(session.Token, a.now()) {
		a.logger.Debug().
			Str("func", "clientAuthService.Token").
			Time("saved_at", session.SavedAt).
			Msg("stored token has expired")
		return "", nil
	}

	return session.Token, nil
}

func (a *clientAuthService) SetToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}

	session := models.Session{Token: token, SavedAt: a.now().UTC()}
	if err := a.credentials.Save(ctx, session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (a *clientAuthService) ClearToken(ctx context.Context) error {
	if err := a.credentials.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
