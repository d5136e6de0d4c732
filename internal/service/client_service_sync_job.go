package service

import (
	"context"
	"sync"
	"time"
)

type clientSyncJob struct {
	trigger SyncTrigger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewClientSyncJob creates a clientSyncJob that calls trigger.TriggerSync on a
// ticker so failed records are retried while connectivity stays stable. The
// job is idle until Start is called.
func NewClientSyncJob(trigger SyncTrigger) ClientSyncJob {
	return &clientSyncJob{trigger: trigger}
}

// Start implements ClientSyncJob. It stops any previously running job, then
// launches a background goroutine that requests a run every interval. A zero
// or negative interval leaves the job stopped. The goroutine exits when ctx is
// cancelled or Stop is called.
func (j *clientSyncJob) Start(ctx context.Context, interval time.Duration) {
	j.Stop()
	if interval <= 0 {
		return
	}

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				j.trigger.TriggerSync()
			}
		}
	}()
}

// Stop implements ClientSyncJob. It cancels the background goroutine's context and
// blocks until the goroutine has fully exited. Safe to call when the job is not
// running (no-op in that case).
func (j *clientSyncJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
