// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-outbox/internal/config"
	"github.com/MKhiriev/go-outbox/internal/logger"
	"github.com/MKhiriev/go-outbox/internal/mock"
	"github.com/MKhiriev/go-outbox/internal/service"
)

// countingWorker считает запуски и ждёт отмены контекста.
type countingWorker struct {
	runs atomic.Int32
}

func (c *countingWorker) Run(ctx context.Context) {
	c.runs.Add(1)
	<-ctx.Done()
}

func TestWorkers_Run_AllWorkersAreStarted(t *testing.T) {
	w1, w2, w3 := &countingWorker{}, &countingWorker{}, &countingWorker{}
	ws := &Workers{workers: []Worker{w1, w2, w3}, logger: logger.Nop()}

	ctx, cancel := context.WithCancel(context.Background())
	ws.Run(ctx)

	require.Eventually(t, func() bool {
		return w1.runs.Load() == 1 && w2.runs.Load() == 1 && w3.runs.Load() == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	ws.Wait()
}

func TestWorkers_Run_Empty(t *testing.T) {
	ws := &Workers{}

	// не должно паниковать на пустом списке
	ws.Run(context.Background())
	ws.Wait()
}

func TestWorkers_Wait_ReturnsAfterCancel(t *testing.T) {
	ws := &Workers{workers: []Worker{&countingWorker{}}}

	ctx, cancel := context.WithCancel(context.Background())
	ws.Run(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		ws.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after the context was cancelled")
	}
}

func TestNewWorkers_WiresServices(t *testing.T) {
	ctrl := gomock.NewController(t)
	signal := mock.NewMockConnectivitySignal(ctrl)
	trigger := mock.NewMockSyncTrigger(ctrl)
	job := mock.NewMockClientSyncJob(ctrl)

	signal.EXPECT().Run(gomock.Any()).DoAndReturn(func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})
	trigger.EXPECT().Start(gomock.Any())
	trigger.EXPECT().Run(gomock.Any()).DoAndReturn(func(ctx context.Context) error {
		<-ctx.Done()
		return errors.New("stopped")
	})
	gomock.InOrder(
		job.EXPECT().Start(gomock.Any(), 30*time.Second),
		job.EXPECT().Stop(),
	)

	services := &service.ClientServices{
		Connectivity: signal,
		SyncTrigger:  trigger,
		SyncJob:      job,
	}
	ws := NewWorkers(services, config.ClientWorkers{SyncInterval: 30 * time.Second}, logger.Nop())
	assert.Len(t, ws.workers, 3)

	ctx, cancel := context.WithCancel(context.Background())
	ws.Run(ctx)
	time.Sleep(20 * time.Millisecond)
	cancel()
	ws.Wait()
}

func TestWorkerFunc_Run(t *testing.T) {
	called := false
	WorkerFunc(func(context.Context) { called = true }).Run(context.Background())

	assert.True(t, called)
}
