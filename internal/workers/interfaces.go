// Package workers runs the background loops of the outbox agent: the
// connectivity probe, the sync trigger and the periodic retry job.
package workers

import "context"

// Worker is a background loop. Run blocks until ctx is cancelled.
//
// Example implementation:
//
//	type probeWorker struct{ signal service.ConnectivitySignal }
//
//	func (w probeWorker) Run(ctx context.Context) {
//	    _ = w.signal.Run(ctx)
//	}
type Worker interface {
	Run(ctx context.Context)
}

// WorkerFunc adapts a plain function to [Worker].
type WorkerFunc func(ctx context.Context)

func (f WorkerFunc) Run(ctx context.Context) {
	f(ctx)
}
