package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MKhiriev/go-outbox/internal/logger"
	"github.com/MKhiriev/go-outbox/internal/store"
	"github.com/MKhiriev/go-outbox/internal/utils"
	"github.com/MKhiriev/go-outbox/models"
)

// syncRequester is the part of [SyncTrigger] the enqueuer needs.
type syncRequester interface {
	TriggerSync()
}

type clientOutboxService struct {
	operations  store.OperationRepository
	signal      ConnectivitySignal
	trigger     syncRequester
	credentials CredentialProvider
	dispatcher  Dispatcher

	ids *utils.UUIDGenerator
	now func() time.Time

	clockMu sync.Mutex
	seeded  bool
	lastTS  int64

	logger *logger.Logger
}

// NewClientOutboxService returns the [OutboxService] producers enqueue
// mutations through.
func NewClientOutboxService(
	operations store.OperationRepository,
	signal ConnectivitySignal,
	trigger SyncTrigger,
	credentials CredentialProvider,
	dispatcher Dispatcher,
	logger *logger.Logger,
) OutboxService {
	return &clientOutboxService{
		operations:  operations,
		signal:      signal,
		trigger:     trigger,
		credentials: credentials,
		dispatcher:  dispatcher,
		ids:         utils.NewUUIDGenerator(),
		now:         time.Now,
		logger:      logger,
	}
}

func (s *clientOutboxService) Enqueue(ctx context.Context, req models.EnqueueRequest) (models.Operation, error) {
	if err := validateEnqueueRequest(req); err != nil {
		return models.Operation{}, err
	}

	ts, err := s.nextTimestamp(ctx)
	if err != nil {
		return models.Operation{}, fmt.Errorf("enqueue operation: %w", err)
	}

	op := models.Operation{
		ID:             s.ids.Generate(),
		Type:           req.Type,
		Resource:       strings.TrimSpace(req.Resource),
		Payload:        req.Payload.Clone(),
		CustomEndpoint: strings.TrimSpace(req.CustomEndpoint),
		Timestamp:      ts,
	}
	if op.Type == models.OperationCreate {
		if _, ok := op.Payload.String(models.PayloadLocalID); !ok {
			op.Payload[models.PayloadLocalID] = s.ids.GenerateTemporary()
		}
	}

	stored, err := s.operations.Put(ctx, op)
	if err != nil {
		return models.Operation{}, fmt.Errorf("enqueue operation: %w", err)
	}

	s.logger.Debug().
		Str("func", "clientOutboxService.Enqueue").
		Str("operation_id", stored.ID).
		Str("resource", stored.Resource).
		Str("type", string(stored.Type)).
		Msg("operation enqueued")

	if s.signal.IsOnline() {
		s.trigger.TriggerSync()
	}

	return stored, nil
}

func (s *clientOutboxService) Pending(ctx context.Context) ([]models.Operation, error) {
	ops, err := s.operations.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending operations: %w", err)
	}
	return ops, nil
}

func (s *clientOutboxService) Status(ctx context.Context) (models.StatusResponse, error) {
	pending, err := s.operations.Count(ctx)
	if err != nil {
		return models.StatusResponse{}, fmt.Errorf("count pending operations: %w", err)
	}

	token, err := s.credentials.Token(ctx)
	if err != nil {
		return models.StatusResponse{}, err
	}

	status := models.StatusResponse{
		Online:        s.signal.IsOnline(),
		Authenticated: token != "",
		Draining:      s.dispatcher.Draining(),
		Pending:       pending,
	}
	if report, ok := s.dispatcher.LastReport(); ok {
		status.LastRun = &report
	}
	return status, nil
}

// nextTimestamp returns the current unix time in milliseconds, bumped when
// needed so it strictly increases. The first call seeds the clock from the
// newest pending record, so a restart or a clock step back never produces a
// timestamp older than one already queued.
func (s *clientOutboxService) nextTimestamp(ctx context.Context) (int64, error) {
	s.clockMu.Lock()
	defer s.clockMu.Unlock()

	if !s.seeded {
		last, err := s.operations.LastTimestamp(ctx)
		if err != nil {
			return 0, fmt.Errorf("seed enqueue clock: %w", err)
		}
		s.lastTS = max(s.lastTS, last)
		s.seeded = true
	}

	ts := s.now().UnixMilli()
	if ts <= s.lastTS {
		ts = s.lastTS + 1
	}
	s.lastTS = ts
	return ts, nil
}

func validateEnqueueRequest(req models.EnqueueRequest) error {
	if !req.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidOperation, req.Type)
	}
	if strings.TrimSpace(req.Resource) == "" {
		return fmt.Errorf("%w: resource is required", ErrInvalidOperation)
	}
	return nil
}
