package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/MKhiriev/go-outbox/internal/logger"
	"github.com/MKhiriev/go-outbox/internal/store"
	"github.com/MKhiriev/go-outbox/models"
)

type identifierResolver struct {
	repo store.IdentifierRepository

	mu    sync.RWMutex
	known map[string]models.IdentifierMapping

	logger *logger.Logger
}

// NewIdentifierResolver returns an [IdentifierResolver] that caches the
// mappings of repo in memory. Mappings recorded through it are written to
// repo before they become visible.
func NewIdentifierResolver(repo store.IdentifierRepository, logger *logger.Logger) IdentifierResolver {
	return &identifierResolver{
		repo:   repo,
		known:  make(map[string]models.IdentifierMapping),
		logger: logger,
	}
}

func (r *identifierResolver) Load(ctx context.Context) error {
	mappings, err := r.repo.ListMappings(ctx)
	if err != nil {
		return fmt.Errorf("load identifier mappings: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range mappings {
		r.known[m.TempID] = m
	}
	return nil
}

func (r *identifierResolver) Lookup(ctx context.Context, tempID string) (models.IdentifierMapping, error) {
	r.mu.RLock()
	m, ok := r.known[tempID]
	r.mu.RUnlock()
	if ok {
		return m, nil
	}

	m, err := r.repo.GetMapping(ctx, tempID)
	if err != nil {
		return models.IdentifierMapping{}, err
	}

	r.mu.Lock()
	r.known[tempID] = m
	r.mu.Unlock()
	return m, nil
}

func (r *identifierResolver) Record(ctx context.Context, mapping models.IdentifierMapping) error {
	if !models.IsTemporaryID(mapping.TempID) || mapping.RealID == "" {
		return fmt.Errorf("%w: mapping %q -> %q", ErrInvalidOperation, mapping.TempID, mapping.RealID)
	}

	if err := r.repo.SaveMapping(ctx, mapping); err != nil {
		return fmt.Errorf("save identifier mapping: %w", err)
	}

	r.mu.Lock()
	r.known[mapping.TempID] = mapping
	r.mu.Unlock()

	r.logger.Debug().
		Str("func", "identifierResolver.Record").
		Str("temp_id", mapping.TempID).
		Str("real_id", mapping.RealID).
		Str("resource", mapping.Resource).
		Msg("identifier mapping recorded")
	return nil
}

func (r *identifierResolver) Rewrite(op models.Operation) (models.Operation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.known) == 0 {
		return op, false
	}

	changed := false
	payload := op.Payload.Clone()
	for key, value := range op.Payload {
		if key == models.PayloadLocalID && op.Type == models.OperationCreate {
			continue
		}
		if rewritten, ok := r.rewriteValue(value); ok {
			payload[key] = rewritten
			changed = true
		}
	}

	endpoint := op.CustomEndpoint
	if endpoint != "" {
		segments := strings.Split(endpoint, "/")
		for i, segment := range segments {
			if m, ok := r.known[segment]; ok {
				segments[i] = m.RealID
				changed = true
			}
		}
		endpoint = strings.Join(segments, "/")
	}

	if !changed {
		return op, false
	}

	op.Payload = payload
	op.CustomEndpoint = endpoint
	return op, true
}

// rewriteValue must be called with r.mu held.
func (r *identifierResolver) rewriteValue(value any) (any, bool) {
	switch v := value.(type) {
	case string:
		if m, ok := r.known[v]; ok {
			return m.RealID, true
		}
	case []any:
		var out []any
		for i, item := range v {
			s, isString := item.(string)
			if !isString {
				continue
			}
			if m, ok := r.known[s]; ok {
				if out == nil {
					out = append([]any(nil), v...)
				}
				out[i] = m.RealID
			}
		}
		if out != nil {
			return out, true
		}
	}
	return value, false
}

