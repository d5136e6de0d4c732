package service

import (
	"context"
	"errors"

	"github.com/MKhiriev/go-outbox/internal/logger"
)

type syncTrigger struct {
	dispatcher  Dispatcher
	signal      ConnectivitySignal
	credentials CredentialProvider

	// requests holds at most one pending run request.
	requests chan struct{}

	logger *logger.Logger
}

// NewSyncTrigger returns a [SyncTrigger] that requests a run whenever signal
// reports a transition to online and a credential is present.
func NewSyncTrigger(dispatcher Dispatcher, signal ConnectivitySignal, credentials CredentialProvider, logger *logger.Logger) SyncTrigger {
	t := &syncTrigger{
		dispatcher:  dispatcher,
		signal:      signal,
		credentials: credentials,
		requests:    make(chan struct{}, 1),
		logger:      logger,
	}
	signal.OnChange(t.onConnectivityChange)
	return t
}

func (t *syncTrigger) onConnectivityChange(online bool) {
	if !online {
		return
	}
	if !t.hasCredential(context.Background()) {
		t.logger.Debug().
			Str("func", "syncTrigger.onConnectivityChange").
			Msg("back online without a credential, not syncing")
		return
	}
	t.TriggerSync()
}

func (t *syncTrigger) Start(ctx context.Context) {
	if t.signal.IsOnline() && t.hasCredential(ctx) {
		t.TriggerSync()
	}
}

func (t *syncTrigger) TriggerSync() {
	select {
	case t.requests <- struct{}{}:
	default:
		// a run is already requested
	}
}

func (t *syncTrigger) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.requests:
			t.runOnce(ctx)
		}
	}
}

func (t *syncTrigger) runOnce(ctx context.Context) {
	report, err := t.dispatcher.Run(ctx)
	switch {
	case errors.Is(err, ErrOffline), errors.Is(err, ErrAuthMissing):
		t.logger.Debug().Err(err).
			Str("func", "syncTrigger.runOnce").
			Msg("sync run skipped")
	case err != nil:
		t.logger.Err(err).
			Str("func", "syncTrigger.runOnce").
			Int("removed", report.Removed).
			Msg("sync run aborted")
	}
}

func (t *syncTrigger) hasCredential(ctx context.Context) bool {
	token, err := t.credentials.Token(ctx)
	if err != nil {
		t.logger.Err(err).
			Str("func", "syncTrigger.hasCredential").
			Msg("failed to read credential")
		return false
	}
	return token != ""
}
