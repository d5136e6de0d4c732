package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-outbox/internal/logger"
	"github.com/MKhiriev/go-outbox/models"
)

type identifierRepository struct {
	*DB
	logger *logger.Logger
}

func NewIdentifierRepository(db *DB, logger *logger.Logger) IdentifierRepository {
	return &identifierRepository{
		DB:     db,
		logger: logger,
	}
}

func (i *identifierRepository) SaveMapping(ctx context.Context, m models.IdentifierMapping) error {
	query, args, err := buildUpsertMappingQuery(i.builder, m)
	if err != nil {
		return err
	}

	err = i.withRetry(ctx, func() error {
		_, execErr := i.DB.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "identifierRepository.SaveMapping").
			Str("temp_id", m.TempID).
			Msg("failed to save identifier mapping")
		return fmt.Errorf("%w: save mapping (temp_id=%s): %w", ErrExecutingStatement, m.TempID, err)
	}

	return nil
}

func (i *identifierRepository) GetMapping(ctx context.Context, tempID string) (models.IdentifierMapping, error) {
	query, args, err := buildGetMappingQuery(i.builder, tempID)
	if err != nil {
		return models.IdentifierMapping{}, err
	}

	m, err := scanMapping(i.DB.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.IdentifierMapping{}, ErrMappingNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "identifierRepository.GetMapping").
			Str("temp_id", tempID).
			Msg("failed to scan mapping row")
		return models.IdentifierMapping{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return m, nil
}

func (i *identifierRepository) ListMappings(ctx context.Context) ([]models.IdentifierMapping, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListMappingsQuery(i.builder)
	if err != nil {
		return nil, err
	}

	rows, err := i.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "identifierRepository.ListMappings").
			Msg("failed to execute query for listing mappings")
		return nil, fmt.Errorf("%w: list mappings: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	mappings := make([]models.IdentifierMapping, 0)
	for rows.Next() {
		m, scanErr := scanMapping(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, scanErr)
		}
		mappings = append(mappings, m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return mappings, nil
}

func scanMapping(row rowScanner) (models.IdentifierMapping, error) {
	var (
		m         models.IdentifierMapping
		createdAt int64
	)

	if err := row.Scan(&m.TempID, &m.RealID, &m.Resource, &createdAt); err != nil {
		return models.IdentifierMapping{}, err
	}
	m.CreatedAt = time.UnixMilli(createdAt).UTC()

	return m, nil
}
