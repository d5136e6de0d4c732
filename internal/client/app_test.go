package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-outbox/internal/config"
	"github.com/MKhiriev/go-outbox/internal/logger"
	"github.com/MKhiriev/go-outbox/internal/store"
	"github.com/MKhiriev/go-outbox/models"
)

// newBackend answers the health probe and confirms every routine CREATE.
func newBackend(t *testing.T, creates *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /routines", func(w http.ResponseWriter, r *http.Request) {
		creates.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"_id": "64b7f0c2a1e4d3b2c1a09f8e"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestConfig(t *testing.T, backendURL, controlAddr string) *config.ClientConfig {
	t.Helper()
	dir := t.TempDir()
	return &config.ClientConfig{
		App: config.ClientApp{Build: models.NewAppBuildInfo("test", "N/A", "N/A")},
		Adapter: config.ClientAdapter{
			HTTPAddress:    backendURL,
			RequestTimeout: time.Second,
			HealthPath:     "/health",
		},
		Storage: config.ClientStorage{
			DB:              config.ClientDB{DSN: filepath.Join(dir, "outbox.db")},
			CredentialsPath: filepath.Join(dir, "session.json"),
		},
		Workers: config.ClientWorkers{SyncInterval: time.Hour, ProbeInterval: time.Hour},
		Server:  config.ClientServer{HTTPAddress: controlAddr, RequestTimeout: time.Second},
		Catalog: models.DefaultResourceCatalog(),
	}
}

func TestApp_DrainsQueueLeftByPreviousProcess(t *testing.T) {
	var creates atomic.Int32
	backend := newBackend(t, &creates)
	cfg := newTestConfig(t, backend.URL, "")
	ctx := context.Background()

	// предыдущий процесс оставил запись в очереди и сохранённую сессию
	storages, err := store.NewClientStorages(ctx, cfg.Storage, logger.Nop())
	require.NoError(t, err)
	_, err = storages.Operations.Put(ctx, models.Operation{
		ID:        "0190f0a4-0000-7000-8000-000000000001",
		Type:      models.OperationCreate,
		Resource:  "routine",
		Payload:   models.Payload{"_id": "temp-1", "name": "Legs"},
		Timestamp: 1,
	})
	require.NoError(t, err)
	require.NoError(t, storages.Credentials.Save(ctx, models.Session{Token: "opaque-token"}))
	require.NoError(t, storages.Close())

	app, err := NewApp(ctx, cfg, logger.Nop())
	require.NoError(t, err)
	assert.Nil(t, app.server, "control API is disabled without an address")

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- app.run(runCtx) }()

	require.Eventually(t, func() bool {
		n, err := app.services.OutboxService.Pending(ctx)
		return err == nil && len(n) == 0
	}, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), creates.Load())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestApp_StartsAndStopsControlAPI(t *testing.T) {
	var creates atomic.Int32
	backend := newBackend(t, &creates)
	cfg := newTestConfig(t, backend.URL, "127.0.0.1:0")
	ctx := context.Background()

	app, err := NewApp(ctx, cfg, logger.Nop())
	require.NoError(t, err)
	require.NotNil(t, app.server)

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- app.run(runCtx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestApp_ReportsConfirmedCreateToMirrorWebhook(t *testing.T) {
	var creates atomic.Int32
	backend := newBackend(t, &creates)

	patches := make(chan models.MirrorPatch, 1)
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p models.MirrorPatch
		if err := json.NewDecoder(r.Body).Decode(&p); err == nil {
			patches <- p
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(webhook.Close)

	cfg := newTestConfig(t, backend.URL, "")
	cfg.Mirror = config.ClientMirror{WebhookURL: webhook.URL + "/outbox/created", RequestTimeout: time.Second}
	ctx := context.Background()

	app, err := NewApp(ctx, cfg, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, app.services.AuthService.SetToken(ctx, "opaque-token"))
	_, err = app.services.OutboxService.Enqueue(ctx, models.EnqueueRequest{
		Type:     models.OperationCreate,
		Resource: "routine",
		Payload:  models.Payload{"_id": "temp-7", "name": "Legs"},
	})
	require.NoError(t, err)

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- app.run(runCtx) }()

	select {
	case p := <-patches:
		assert.Equal(t, "temp-7", p.TempID)
		assert.Equal(t, "64b7f0c2a1e4d3b2c1a09f8e", p.RealID)
	case <-time.After(3 * time.Second):
		t.Fatal("mirror webhook was not called")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestNewApp_InvalidStorage(t *testing.T) {
	cfg := newTestConfig(t, "http://127.0.0.1:1", "")
	cfg.Storage.DB.DSN = "mysql://nope"

	app, err := NewApp(context.Background(), cfg, logger.Nop())

	assert.Nil(t, app)
	assert.Error(t, err)
}
