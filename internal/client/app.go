package client

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/MKhiriev/go-outbox/internal/adapter"
	"github.com/MKhiriev/go-outbox/internal/config"
	"github.com/MKhiriev/go-outbox/internal/handler"
	"github.com/MKhiriev/go-outbox/internal/logger"
	"github.com/MKhiriev/go-outbox/internal/server"
	"github.com/MKhiriev/go-outbox/internal/service"
	"github.com/MKhiriev/go-outbox/internal/store"
	"github.com/MKhiriev/go-outbox/internal/tracing"
	"github.com/MKhiriev/go-outbox/internal/workers"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	storages *store.ClientStorages
	services *service.ClientServices
	server   server.Server
	workers  *workers.Workers

	shutdownTracing tracing.ShutdownFunc

	logger *logger.Logger
}

// NewApp wires the agent: tracing, storages, the backend adapter, services,
// the optional control API and the background workers.
func NewApp(ctx context.Context, cfg *config.ClientConfig, logger *logger.Logger) (*App, error) {
	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, cfg.App.Build.BuildVersion())
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	storages, err := store.NewClientStorages(ctx, cfg.Storage, logger)
	if err != nil {
		_ = shutdownTracing(ctx)
		return nil, fmt.Errorf("create storages: %w", err)
	}

	app, err := wire(cfg, storages, logger)
	if err != nil {
		_ = storages.Close()
		_ = shutdownTracing(ctx)
		return nil, err
	}
	app.shutdownTracing = shutdownTracing

	return app, nil
}

func wire(cfg *config.ClientConfig, storages *store.ClientStorages, logger *logger.Logger) (*App, error) {
	serverAdapter, err := adapter.NewHTTPServerAdapter(cfg.Adapter, logger)
	if err != nil {
		return nil, fmt.Errorf("create server adapter: %w", err)
	}

	var mirror service.EntityMirror
	if cfg.Mirror.WebhookURL != "" {
		mirror = service.NewWebhookMirror(cfg.Mirror.WebhookURL, cfg.Mirror.RequestTimeout, logger)
		logger.Info().Str("url", cfg.Mirror.WebhookURL).Msg("confirmed creates are reported to the mirror webhook")
	}

	services, err := service.NewClientServices(storages, serverAdapter, cfg, mirror, logger)
	if err != nil {
		return nil, fmt.Errorf("create services: %w", err)
	}

	app := &App{
		storages:        storages,
		services:        services,
		workers:         workers.NewWorkers(services, cfg.Workers, logger),
		shutdownTracing: func(context.Context) error { return nil },
		logger:          logger,
	}

	if cfg.Server.HTTPAddress == "" {
		logger.Info().Msg("control API disabled")
		return app, nil
	}

	handlers, err := handler.NewHandlers(services, cfg.Server, logger)
	if err != nil {
		return nil, fmt.Errorf("create handlers: %w", err)
	}

	app.server, err = server.NewServer(handlers, cfg.Server, logger)
	if err != nil {
		return nil, fmt.Errorf("create server: %w", err)
	}

	return app, nil
}

// Run blocks until SIGINT, SIGTERM or SIGQUIT, then shuts the agent down.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	return a.run(ctx)
}

func (a *App) run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.workers.Run(runCtx)
	a.logger.Info().Msg("outbox agent started")

	serverErr := make(chan error, 1)
	if a.server != nil {
		go func() { serverErr <- a.server.RunServer() }()
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info().Msg("shutdown requested")
	case runErr = <-serverErr:
		a.logger.Err(runErr).Msg("control API stopped unexpectedly")
	}

	return errors.Join(runErr, a.shutdown(cancel))
}

func (a *App) shutdown(stopWorkers context.CancelFunc) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if a.server != nil {
		errs = append(errs, a.server.Shutdown(ctx))
	}

	// an in-flight run is cancelled, its remaining records stay queued
	stopWorkers()
	a.workers.Wait()

	errs = append(errs, a.shutdownTracing(ctx), a.storages.Close())

	a.logger.Info().Msg("outbox agent stopped")
	return errors.Join(errs...)
}
