package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-outbox/internal/logger"
	"github.com/MKhiriev/go-outbox/internal/utils"
	"github.com/MKhiriev/go-outbox/models"
)

type idGenerator interface {
	Generate() string
}

type operationRepository struct {
	*DB
	ids    idGenerator
	logger *logger.Logger
}

func NewOperationRepository(db *DB, logger *logger.Logger) OperationRepository {
	return &operationRepository{
		DB:     db,
		ids:    utils.NewUUIDGenerator(),
		logger: logger,
	}
}

func (o *operationRepository) Put(ctx context.Context, op models.Operation) (models.Operation, error) {
	log := logger.FromContext(ctx)

	if op.ID == "" {
		op.ID = o.ids.Generate()
	}

	query, args, err := buildUpsertOperationQuery(o.builder, op)
	if err != nil {
		log.Err(err).
			Str("func", "operationRepository.Put").
			Str("operation_id", op.ID).
			Msg("failed to build upsert query")
		return models.Operation{}, err
	}

	err = o.withRetry(ctx, func() error {
		_, execErr := o.DB.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		log.Err(err).
			Str("func", "operationRepository.Put").
			Str("operation_id", op.ID).
			Msg("failed to execute upsert for operation")
		return models.Operation{}, fmt.Errorf("%w: save operation (id=%s): %w", ErrExecutingStatement, op.ID, err)
	}

	return op, nil
}

func (o *operationRepository) List(ctx context.Context) ([]models.Operation, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListOperationsQuery(o.builder)
	if err != nil {
		return nil, err
	}

	rows, err := o.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "operationRepository.List").
			Msg("failed to execute query for listing operations")
		return nil, fmt.Errorf("%w: list operations: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	ops := make([]models.Operation, 0)
	for rows.Next() {
		op, scanErr := scanOperation(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "operationRepository.List").
				Msg("failed to scan operation row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, scanErr)
		}
		ops = append(ops, op)
	}

	if err = rows.Err(); err != nil {
		log.Err(err).
			Str("func", "operationRepository.List").
			Msg("error during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return ops, nil
}

func (o *operationRepository) Get(ctx context.Context, id string) (models.Operation, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildGetOperationQuery(o.builder, id)
	if err != nil {
		return models.Operation{}, err
	}

	op, err := scanOperation(o.DB.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Operation{}, ErrOperationNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "operationRepository.Get").
			Str("operation_id", id).
			Msg("failed to scan operation row")
		return models.Operation{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return op, nil
}

func (o *operationRepository) Remove(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	query, args, err := buildRemoveOperationQuery(o.builder, id)
	if err != nil {
		return err
	}

	err = o.withRetry(ctx, func() error {
		_, execErr := o.DB.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		log.Err(err).
			Str("func", "operationRepository.Remove").
			Str("operation_id", id).
			Msg("failed to delete operation")
		return fmt.Errorf("%w: remove operation (id=%s): %w", ErrExecutingStatement, id, err)
	}

	return nil
}

func (o *operationRepository) Count(ctx context.Context) (int, error) {
	query, args, err := buildCountOperationsQuery(o.builder)
	if err != nil {
		return 0, err
	}

	var count int
	if err = o.DB.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "operationRepository.Count").
			Msg("failed to count operations")
		return 0, fmt.Errorf("%w: count operations: %w", ErrExecutingQuery, err)
	}

	return count, nil
}

func (o *operationRepository) LastTimestamp(ctx context.Context) (int64, error) {
	query, args, err := buildLastTimestampQuery(o.builder)
	if err != nil {
		return 0, err
	}

	var ts int64
	if err = o.DB.QueryRowContext(ctx, query, args...).Scan(&ts); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "operationRepository.LastTimestamp").
			Msg("failed to read last enqueue timestamp")
		return 0, fmt.Errorf("%w: last timestamp: %w", ErrExecutingQuery, err)
	}

	return ts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOperation(row rowScanner) (models.Operation, error) {
	var (
		op      models.Operation
		opType  string
		payload string
	)

	if err := row.Scan(&op.ID, &opType, &op.Resource, &payload, &op.CustomEndpoint, &op.Timestamp); err != nil {
		return models.Operation{}, err
	}

	decoded, err := models.UnmarshalPayload(payload)
	if err != nil {
		return models.Operation{}, fmt.Errorf("%w: %w", ErrEncodingPayload, err)
	}

	op.Type = models.OperationType(opType)
	op.Payload = decoded

	return op, nil
}
