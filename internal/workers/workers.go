package workers

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-outbox/internal/config"
	"github.com/MKhiriev/go-outbox/internal/logger"
	"github.com/MKhiriev/go-outbox/internal/service"
)

type Workers struct {
	workers []Worker
	wg      sync.WaitGroup

	logger *logger.Logger
}

// NewWorkers assembles the agent's loops around services.
func NewWorkers(services *service.ClientServices, cfg config.ClientWorkers, logger *logger.Logger) *Workers {
	return &Workers{
		workers: []Worker{
			probeWorker(services.Connectivity, logger),
			triggerWorker(services.SyncTrigger, logger),
			syncJobWorker(services.SyncJob, cfg.SyncInterval),
		},
		logger: logger,
	}
}

// Run starts every worker in its own goroutine and returns immediately.
func (w *Workers) Run(ctx context.Context) {
	for _, worker := range w.workers {
		w.wg.Go(func() {
			worker.Run(ctx)
		})
	}
}

// Wait blocks until every started worker has returned.
func (w *Workers) Wait() {
	w.wg.Wait()
}

func probeWorker(signal service.ConnectivitySignal, logger *logger.Logger) Worker {
	return WorkerFunc(func(ctx context.Context) {
		if err := signal.Run(ctx); err != nil {
			logger.Err(err).Str("func", "probeWorker").Msg("connectivity probe stopped")
		}
	})
}

func triggerWorker(trigger service.SyncTrigger, logger *logger.Logger) Worker {
	return WorkerFunc(func(ctx context.Context) {
		// pending records from a previous process are drained first
		trigger.Start(ctx)
		if err := trigger.Run(ctx); err != nil {
			logger.Err(err).Str("func", "triggerWorker").Msg("sync trigger stopped")
		}
	})
}

func syncJobWorker(job service.ClientSyncJob, interval time.Duration) Worker {
	return WorkerFunc(func(ctx context.Context) {
		job.Start(ctx, interval)
		<-ctx.Done()
		job.Stop()
	})
}
