package store

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-outbox/models"
)

const (
	operationsTable = "operations"
	mappingsTable   = "identifier_mappings"

	upsertOperationSuffix = `ON CONFLICT (id) DO UPDATE SET
		type = excluded.type,
		resource = excluded.resource,
		payload = excluded.payload,
		custom_endpoint = excluded.custom_endpoint,
		enqueued_at = excluded.enqueued_at`

	upsertMappingSuffix = `ON CONFLICT (temp_id) DO UPDATE SET
		real_id = excluded.real_id,
		resource = excluded.resource,
		created_at = excluded.created_at`
)

var operationColumns = []string{"id", "type", "resource", "payload", "custom_endpoint", "enqueued_at"}

var mappingColumns = []string{"temp_id", "real_id", "resource", "created_at"}

// buildUpsertOperationQuery builds an INSERT that replaces an existing row
// with the same id in place, so the row keeps its seq.
func buildUpsertOperationQuery(b sq.StatementBuilderType, op models.Operation) (string, []any, error) {
	payload, err := op.MarshalPayload()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrEncodingPayload, err)
	}

	query, args, err := b.Insert(operationsTable).
		Columns(operationColumns...).
		Values(op.ID, string(op.Type), op.Resource, payload, op.CustomEndpoint, op.Timestamp).
		Suffix(upsertOperationSuffix).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}

func buildListOperationsQuery(b sq.StatementBuilderType) (string, []any, error) {
	query, args, err := b.Select(operationColumns...).
		From(operationsTable).
		OrderBy("seq ASC").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}

func buildGetOperationQuery(b sq.StatementBuilderType, id string) (string, []any, error) {
	query, args, err := b.Select(operationColumns...).
		From(operationsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}

func buildRemoveOperationQuery(b sq.StatementBuilderType, id string) (string, []any, error) {
	query, args, err := b.Delete(operationsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}

func buildCountOperationsQuery(b sq.StatementBuilderType) (string, []any, error) {
	query, args, err := b.Select("COUNT(*)").
		From(operationsTable).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}

func buildLastTimestampQuery(b sq.StatementBuilderType) (string, []any, error) {
	query, args, err := b.Select("COALESCE(MAX(enqueued_at), 0)").
		From(operationsTable).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}

func buildUpsertMappingQuery(b sq.StatementBuilderType, m models.IdentifierMapping) (string, []any, error) {
	query, args, err := b.Insert(mappingsTable).
		Columns(mappingColumns...).
		Values(m.TempID, m.RealID, m.Resource, m.CreatedAt.UnixMilli()).
		Suffix(upsertMappingSuffix).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}

func buildGetMappingQuery(b sq.StatementBuilderType, tempID string) (string, []any, error) {
	query, args, err := b.Select(mappingColumns...).
		From(mappingsTable).
		Where(sq.Eq{"temp_id": tempID}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}

func buildListMappingsQuery(b sq.StatementBuilderType) (string, []any, error) {
	query, args, err := b.Select(mappingColumns...).
		From(mappingsTable).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}
