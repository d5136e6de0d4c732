package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/MKhiriev/go-outbox/internal/adapter"
	"github.com/MKhiriev/go-outbox/internal/logger"
	"github.com/MKhiriev/go-outbox/internal/store"
	"github.com/MKhiriev/go-outbox/internal/utils"
	"github.com/MKhiriev/go-outbox/models"
)

const tracerName = "github.com/MKhiriev/go-outbox/internal/service"

type dispatcher struct {
	// mu serialises runs.
	mu sync.Mutex

	operations  store.OperationRepository
	identifiers IdentifierResolver
	adapter     adapter.ServerAdapter
	signal      ConnectivitySignal
	credentials CredentialProvider
	mirror      EntityMirror

	catalog   *models.ResourceCatalog
	endpoints *EndpointResolver
	guard     *Guard

	tracer trace.Tracer
	ids    *utils.UUIDGenerator
	now    func() time.Time

	draining atomic.Bool
	lastMu   sync.RWMutex
	last     *models.RunReport

	logger *logger.Logger
}

// DispatcherDeps groups the collaborators of the dispatcher.
type DispatcherDeps struct {
	Operations  store.OperationRepository
	Identifiers IdentifierResolver
	Adapter     adapter.ServerAdapter
	Signal      ConnectivitySignal
	Credentials CredentialProvider
	Mirror      EntityMirror
	Catalog     *models.ResourceCatalog
}

// NewDispatcher returns the [Dispatcher] that replays pending operations
// through deps.Adapter.
func NewDispatcher(deps DispatcherDeps, logger *logger.Logger) Dispatcher {
	catalog := deps.Catalog
	if catalog == nil {
		catalog = models.DefaultResourceCatalog()
	}
	mirror := deps.Mirror
	if mirror == nil {
		mirror = NewLogMirror(logger)
	}

	return &dispatcher{
		operations:  deps.Operations,
		identifiers: deps.Identifiers,
		adapter:     deps.Adapter,
		signal:      deps.Signal,
		credentials: deps.Credentials,
		mirror:      mirror,
		catalog:     catalog,
		endpoints:   NewEndpointResolver(catalog),
		guard:       NewGuard(catalog),
		tracer:      otel.Tracer(tracerName),
		ids:         utils.NewUUIDGenerator(),
		now:         time.Now,
		logger:      logger,
	}
}

func (d *dispatcher) Draining() bool {
	return d.draining.Load()
}

func (d *dispatcher) LastReport() (models.RunReport, bool) {
	d.lastMu.RLock()
	defer d.lastMu.RUnlock()
	if d.last == nil {
		return models.RunReport{}, false
	}
	return *d.last, true
}

func (d *dispatcher) Run(ctx context.Context) (models.RunReport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.signal.IsOnline() {
		return models.RunReport{}, ErrOffline
	}

	token, err := d.credentials.Token(ctx)
	if err != nil {
		return models.RunReport{}, fmt.Errorf("%w: %w", ErrAuthMissing, err)
	}
	if token == "" {
		return models.RunReport{}, ErrAuthMissing
	}
	d.adapter.SetToken(token)

	d.draining.Store(true)
	defer d.draining.Store(false)

	traceID := d.ids.Generate()
	log := &logger.Logger{Logger: d.logger.With().Str("trace_id", traceID).Logger()}
	ctx = log.WithContext(utils.WithTraceID(ctx, traceID))

	ctx, span := d.tracer.Start(ctx, "Dispatcher.Run", trace.WithAttributes(
		attribute.String("run.trace_id", traceID),
	))
	defer span.End()

	report := models.RunReport{StartedAt: d.now()}

	if err = d.identifiers.Load(ctx); err != nil {
		log.Warn().Err(err).
			Str("func", "dispatcher.Run").
			Msg("continuing with the identifier mappings already in memory")
	}

	snapshot, err := d.operations.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "snapshot failed")
		return report, fmt.Errorf("snapshot pending operations: %w", err)
	}
	report.Snapshot = len(snapshot)

	for _, op := range d.partition(snapshot) {
		if err = ctx.Err(); err != nil {
			break
		}
		d.process(ctx, op, &report)
	}

	report.Duration = d.now().Sub(report.StartedAt)
	d.lastMu.Lock()
	d.last = &report
	d.lastMu.Unlock()

	span.SetAttributes(
		attribute.Int("run.snapshot", report.Snapshot),
		attribute.Int("run.removed", report.Removed),
		attribute.Int("run.failed", report.Failed),
	)

	if report.Voided > 0 {
		log.Info().
			Str("func", "dispatcher.Run").
			Int("voided", report.Voided).
			Msg("invalid operations dropped")
	}
	log.Info().
		Str("func", "dispatcher.Run").
		Int("snapshot", report.Snapshot).
		Int("dispatched", report.Dispatched).
		Int("removed", report.Removed).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Int("malformed", report.Malformed).
		Int("resolved", report.Resolved).
		Dur("duration", report.Duration).
		Msg("sync run finished")

	if err != nil {
		return report, fmt.Errorf("sync run interrupted: %w", err)
	}
	return report, nil
}

// partition orders the snapshot by dependency tier while keeping insertion
// order inside a tier.
func (d *dispatcher) partition(snapshot []models.Operation) []models.Operation {
	ordered := slices.Clone(snapshot)
	slices.SortStableFunc(ordered, func(a, b models.Operation) int {
		return d.catalog.TierOf(a.Resource).Order() - d.catalog.TierOf(b.Resource).Order()
	})
	return ordered
}

func (d *dispatcher) process(ctx context.Context, op models.Operation, report *models.RunReport) {
	ctx, span := d.tracer.Start(ctx, "Dispatcher.process", trace.WithAttributes(
		attribute.String("operation.id", op.ID),
		attribute.String("operation.type", string(op.Type)),
		attribute.String("operation.resource", op.Resource),
	))
	defer span.End()

	log := logger.FromContext(ctx)

	if rewritten, changed := d.identifiers.Rewrite(op); changed {
		op = rewritten
		report.Resolved++
		if _, err := d.operations.Put(ctx, op); err != nil {
			log.Warn().Err(err).
				Str("func", "dispatcher.process").
				Str("operation_id", op.ID).
				Msg("failed to persist resolved identifiers")
		}
	}

	class := d.guard.Classify(op)
	span.SetAttributes(attribute.String("operation.class", class.String()))

	switch class {
	case models.ClassVoid:
		report.Voided++
		log.Warn().Err(ErrInvalidEndpoint).
			Str("func", "dispatcher.process").
			Str("operation_id", op.ID).
			Str("custom_endpoint", op.CustomEndpoint).
			Msg("discarding operation")
		d.remove(ctx, op, report)
		return
	case models.ClassSkip:
		report.Skipped++
		log.Debug().
			Str("func", "dispatcher.process").
			Str("operation_id", op.ID).
			Str("resource", op.Resource).
			Msg("waiting for a temporary identifier to resolve")
		return
	}

	req, err := d.buildRequest(op)
	if err != nil {
		report.Malformed++
		span.RecordError(err)
		log.Warn().Err(err).
			Str("func", "dispatcher.process").
			Str("operation_id", op.ID).
			Str("resource", op.Resource).
			Str("type", string(op.Type)).
			Msg("operation left queued")
		return
	}

	resp, err := d.adapter.Send(ctx, req)
	report.Dispatched++
	span.SetAttributes(attribute.Int("http.response.status_code", resp.Status))

	d.applyResult(ctx, op, resp, err, report)
}

func (d *dispatcher) buildRequest(op models.Operation) (models.DispatchRequest, error) {
	if err := d.checkReferences(op); err != nil {
		return models.DispatchRequest{}, err
	}

	target := d.endpoints.Target(op)
	req := models.DispatchRequest{IdempotencyKey: op.ID}

	switch op.Type {
	case models.OperationCreate:
		req.Method = http.MethodPost
		req.Path = target
		req.Body = op.Payload.Without(models.ServerManagedFields...)

	case models.OperationUpdate:
		id, ok := op.TargetID()
		if !ok {
			return models.DispatchRequest{}, fmt.Errorf("%w: update without %q", ErrMalformedRecord, models.PayloadTargetID)
		}
		req.Method = http.MethodPut
		req.Path = joinID(target, id)
		req.Body = op.Payload.Clone()

	case models.OperationDelete:
		req.Method = http.MethodDelete
		if op.CustomEndpoint != "" {
			req.Path = target
			break
		}
		id, ok := op.TargetID()
		if !ok {
			return models.DispatchRequest{}, fmt.Errorf("%w: delete without %q", ErrMalformedRecord, models.PayloadTargetID)
		}
		req.Path = joinID(target, id)

	default:
		return models.DispatchRequest{}, fmt.Errorf("%w: unknown type %q", ErrMalformedRecord, op.Type)
	}

	return req, nil
}

// checkReferences rejects reference fields that hold neither a temporary nor
// a server identifier.
func (d *dispatcher) checkReferences(op models.Operation) error {
	res, ok := d.catalog.Lookup(op.Resource)
	if !ok {
		return nil
	}
	for _, ref := range res.References {
		value, ok := op.Payload.String(ref.Field)
		if !ok {
			continue
		}
		if !models.IsTemporaryID(value) && !d.catalog.IsRealID(value) {
			return fmt.Errorf("%w: %s=%q is not an identifier", ErrMalformedRecord, ref.Field, value)
		}
	}
	return nil
}

func (d *dispatcher) applyResult(ctx context.Context, op models.Operation, resp models.DispatchResponse, sendErr error, report *models.RunReport) {
	log := logger.FromContext(ctx)

	if sendErr == nil && resp.OK() {
		if op.Type == models.OperationCreate {
			d.recordCreated(ctx, op, resp.Body)
		}
		d.remove(ctx, op, report)
		return
	}

	if sendErr == nil {
		// a non-2xx answer is judged by its status like any other
		sendErr = &adapter.StatusError{Status: resp.Status, Body: string(resp.Body)}
	}

	res, _ := d.catalog.Lookup(op.Resource)
	failure := mapDispatchError(op, len(res.References) > 0, sendErr)

	switch {
	case failure == nil:
		log.Info().
			Str("func", "dispatcher.applyResult").
			Str("operation_id", op.ID).
			Int("status", resp.Status).
			Msg("target already gone, treating delete as done")
		d.remove(ctx, op, report)

	case errors.Is(failure, ErrDependencyNotReady):
		report.Failed++
		log.Debug().Err(failure).
			Str("func", "dispatcher.applyResult").
			Str("operation_id", op.ID).
			Str("resource", op.Resource).
			Msg("operation left queued")

	default:
		report.Failed++
		trace.SpanFromContext(ctx).RecordError(failure)
		log.Warn().Err(failure).
			Str("func", "dispatcher.applyResult").
			Str("operation_id", op.ID).
			Str("resource", op.Resource).
			Str("type", string(op.Type)).
			Int("status", statusOf(failure)).
			Msg("operation failed, will retry on next run")
	}
}

// recordCreated stores the identifier the server assigned to a CREATE and
// patches the mirror before the record is removed.
func (d *dispatcher) recordCreated(ctx context.Context, op models.Operation, body []byte) {
	log := logger.FromContext(ctx)

	tempID, ok := op.LocalID()
	if !ok {
		return
	}

	entity := models.Payload{}
	if len(body) > 0 {
		decoded, err := models.DecodePayload(bytes.NewReader(body))
		if err != nil {
			log.Warn().Err(err).
				Str("func", "dispatcher.recordCreated").
				Str("operation_id", op.ID).
				Msg("created entity is not a JSON object")
		} else {
			entity = decoded
		}
	}

	realID, ok := entity.String(models.PayloadLocalID)
	if !ok {
		realID, ok = entity.String(models.PayloadTargetID)
	}
	if !ok {
		log.Warn().
			Str("func", "dispatcher.recordCreated").
			Str("operation_id", op.ID).
			Str("temp_id", tempID).
			Msg("server did not return an identifier for the created entity")
		return
	}

	mapping := models.IdentifierMapping{
		TempID:    tempID,
		RealID:    realID,
		Resource:  op.Resource,
		CreatedAt: d.now().UTC(),
	}
	if err := d.identifiers.Record(ctx, mapping); err != nil {
		log.Err(err).
			Str("func", "dispatcher.recordCreated").
			Str("temp_id", tempID).
			Str("real_id", realID).
			Msg("failed to record identifier mapping")
	}

	if err := d.mirror.PatchEntry(ctx, tempID, entity); err != nil {
		log.Warn().Err(err).
			Str("func", "dispatcher.recordCreated").
			Str("temp_id", tempID).
			Msg("failed to patch mirror")
	}
}

func (d *dispatcher) remove(ctx context.Context, op models.Operation, report *models.RunReport) {
	if err := d.operations.Remove(ctx, op.ID); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "dispatcher.remove").
			Str("operation_id", op.ID).
			Msg("failed to remove operation")
		return
	}
	report.Removed++
}
