package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-outbox/internal/logger"
	"github.com/MKhiriev/go-outbox/internal/mock"
	"github.com/MKhiriev/go-outbox/models"
)

type outboxMocks struct {
	operations  *mock.MockOperationRepository
	signal      *mock.MockConnectivitySignal
	credentials *mock.MockCredentialProvider
	dispatcher  *mock.MockDispatcher
	trigger     *spyTrigger
}

// newTestOutboxSvc — хелпер для создания clientOutboxService с моками
func newTestOutboxSvc(t *testing.T) (*clientOutboxService, outboxMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := outboxMocks{
		operations:  mock.NewMockOperationRepository(ctrl),
		signal:      mock.NewMockConnectivitySignal(ctrl),
		credentials: mock.NewMockCredentialProvider(ctrl),
		dispatcher:  mock.NewMockDispatcher(ctrl),
		trigger:     &spyTrigger{},
	}

	svc := NewClientOutboxService(m.operations, m.signal, m.trigger, m.credentials, m.dispatcher, logger.Nop()).(*clientOutboxService)
	return svc, m
}

// echoPut makes Put return what it was given on an empty store.
func echoPut(m outboxMocks) {
	m.operations.EXPECT().LastTimestamp(gomock.Any()).Return(int64(0), nil).MaxTimes(1)
	m.operations.EXPECT().Put(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, op models.Operation) (models.Operation, error) { return op, nil },
	).AnyTimes()
}

// ── Enqueue ──────────────────────────────────────────────────────────────────

func TestClientOutboxService_Enqueue_CreateGetsTemporaryID(t *testing.T) {
	svc, m := newTestOutboxSvc(t)
	echoPut(m)
	m.signal.EXPECT().IsOnline().Return(false)

	payload := models.Payload{"name": "Legs"}
	op, err := svc.Enqueue(context.Background(), models.EnqueueRequest{
		Type:     models.OperationCreate,
		Resource: "muscle-group",
		Payload:  payload,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, op.ID)
	assert.Equal(t, models.OperationCreate, op.Type)
	assert.Equal(t, "muscle-group", op.Resource)
	tempID, ok := op.LocalID()
	require.True(t, ok)
	assert.True(t, models.IsTemporaryID(tempID))
	assert.NotContains(t, payload, "_id", "caller payload must not be mutated")
	assert.Positive(t, op.Timestamp)
	assert.Zero(t, m.trigger.calls.Load(), "offline enqueue does not trigger a run")
}

func TestClientOutboxService_Enqueue_KeepsCallerTemporaryID(t *testing.T) {
	svc, m := newTestOutboxSvc(t)
	echoPut(m)
	m.signal.EXPECT().IsOnline().Return(false)

	op, err := svc.Enqueue(context.Background(), models.EnqueueRequest{
		Type:     models.OperationCreate,
		Resource: "exercise",
		Payload:  models.Payload{"_id": "temp-from-ui", "name": "Squat"},
	})

	require.NoError(t, err)
	assert.Equal(t, "temp-from-ui", op.Payload["_id"])
}

func TestClientOutboxService_Enqueue_UpdateHasNoTemporaryID(t *testing.T) {
	svc, m := newTestOutboxSvc(t)
	echoPut(m)
	m.signal.EXPECT().IsOnline().Return(false)

	op, err := svc.Enqueue(context.Background(), models.EnqueueRequest{
		Type:     models.OperationUpdate,
		Resource: "routine",
		Payload:  models.Payload{"id": realExerciseID},
	})

	require.NoError(t, err)
	assert.NotContains(t, op.Payload, "_id")
}

func TestClientOutboxService_Enqueue_OnlineTriggersSync(t *testing.T) {
	svc, m := newTestOutboxSvc(t)
	echoPut(m)
	m.signal.EXPECT().IsOnline().Return(true)

	_, err := svc.Enqueue(context.Background(), models.EnqueueRequest{Type: models.OperationDelete, Resource: "routine", Payload: models.Payload{"id": "x"}})

	require.NoError(t, err)
	assert.Equal(t, int64(1), m.trigger.calls.Load())
}

func TestClientOutboxService_Enqueue_TimestampsIncrease(t *testing.T) {
	svc, m := newTestOutboxSvc(t)
	echoPut(m)
	m.signal.EXPECT().IsOnline().Return(false).AnyTimes()

	frozen := time.UnixMilli(1_700_000_000_000)
	svc.now = func() time.Time { return frozen }

	var last int64
	for range 3 {
		op, err := svc.Enqueue(context.Background(), models.EnqueueRequest{Type: models.OperationCreate, Resource: "routine"})
		require.NoError(t, err)
		assert.Greater(t, op.Timestamp, last)
		last = op.Timestamp
	}
	assert.Equal(t, frozen.UnixMilli()+2, last)
}

func TestClientOutboxService_Enqueue_TimestampsContinueAfterRestart(t *testing.T) {
	svc, m := newTestOutboxSvc(t)
	m.signal.EXPECT().IsOnline().Return(false).AnyTimes()
	m.operations.EXPECT().Put(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, op models.Operation) (models.Operation, error) { return op, nil },
	).Times(2)

	// часы устройства отстают от последней записи в очереди
	newest := int64(1_700_000_000_500)
	m.operations.EXPECT().LastTimestamp(gomock.Any()).Return(newest, nil).Times(1)
	svc.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }

	first, err := svc.Enqueue(context.Background(), models.EnqueueRequest{Type: models.OperationCreate, Resource: "routine"})
	require.NoError(t, err)
	second, err := svc.Enqueue(context.Background(), models.EnqueueRequest{Type: models.OperationCreate, Resource: "routine"})
	require.NoError(t, err)

	assert.Equal(t, newest+1, first.Timestamp)
	assert.Equal(t, newest+2, second.Timestamp)
}

func TestClientOutboxService_Enqueue_ClockSeedError(t *testing.T) {
	svc, m := newTestOutboxSvc(t)
	m.operations.EXPECT().LastTimestamp(gomock.Any()).Return(int64(0), errors.New("database is locked"))

	_, err := svc.Enqueue(context.Background(), models.EnqueueRequest{Type: models.OperationCreate, Resource: "routine"})

	assert.Error(t, err)
	assert.Zero(t, m.trigger.calls.Load())
}

func TestClientOutboxService_Enqueue_Invalid(t *testing.T) {
	svc, _ := newTestOutboxSvc(t)

	tests := []struct {
		name string
		req  models.EnqueueRequest
	}{
		{name: "unknown type", req: models.EnqueueRequest{Type: "PATCH", Resource: "routine"}},
		{name: "empty type", req: models.EnqueueRequest{Resource: "routine"}},
		{name: "empty resource", req: models.EnqueueRequest{Type: models.OperationCreate, Resource: "  "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Enqueue(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidOperation)
		})
	}
}

func TestClientOutboxService_Enqueue_StoreError(t *testing.T) {
	svc, m := newTestOutboxSvc(t)
	m.operations.EXPECT().LastTimestamp(gomock.Any()).Return(int64(0), nil)
	m.operations.EXPECT().Put(gomock.Any(), gomock.Any()).Return(models.Operation{}, errors.New("disk full"))

	_, err := svc.Enqueue(context.Background(), models.EnqueueRequest{Type: models.OperationCreate, Resource: "routine"})

	assert.Error(t, err)
	assert.Zero(t, m.trigger.calls.Load())
}

// ── Pending / Status ─────────────────────────────────────────────────────────

func TestClientOutboxService_Pending(t *testing.T) {
	svc, m := newTestOutboxSvc(t)
	ops := []models.Operation{{ID: "a"}, {ID: "b"}}
	m.operations.EXPECT().List(gomock.Any()).Return(ops, nil)

	got, err := svc.Pending(context.Background())

	require.NoError(t, err)
	assert.Equal(t, ops, got)
}

func TestClientOutboxService_Status(t *testing.T) {
	svc, m := newTestOutboxSvc(t)
	report := models.RunReport{Snapshot: 3, Removed: 2}

	m.operations.EXPECT().Count(gomock.Any()).Return(4, nil)
	m.credentials.EXPECT().Token(gomock.Any()).Return("tok", nil)
	m.signal.EXPECT().IsOnline().Return(true)
	m.dispatcher.EXPECT().Draining().Return(false)
	m.dispatcher.EXPECT().LastReport().Return(report, true)

	status, err := svc.Status(context.Background())

	require.NoError(t, err)
	assert.True(t, status.Online)
	assert.True(t, status.Authenticated)
	assert.Equal(t, 4, status.Pending)
	require.NotNil(t, status.LastRun)
	assert.Equal(t, report, *status.LastRun)
}

func TestClientOutboxService_Status_NoRunYet(t *testing.T) {
	svc, m := newTestOutboxSvc(t)

	m.operations.EXPECT().Count(gomock.Any()).Return(0, nil)
	m.credentials.EXPECT().Token(gomock.Any()).Return("", nil)
	m.signal.EXPECT().IsOnline().Return(false)
	m.dispatcher.EXPECT().Draining().Return(false)
	m.dispatcher.EXPECT().LastReport().Return(models.RunReport{}, false)

	status, err := svc.Status(context.Background())

	require.NoError(t, err)
	assert.False(t, status.Authenticated)
	assert.Nil(t, status.LastRun)
}
