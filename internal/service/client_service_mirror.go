package service

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/go-outbox/internal/adapter"
	"github.com/MKhiriev/go-outbox/internal/logger"
	"github.com/MKhiriev/go-outbox/internal/utils"
	"github.com/MKhiriev/go-outbox/models"
)

type logMirror struct {
	logger *logger.Logger
}

// NewLogMirror returns an [EntityMirror] for hosts without a read cache. It
// only records the patch in the log; such hosts resolve identifiers through
// GET /api/outbox/identifiers/{tempID}.
func NewLogMirror(logger *logger.Logger) EntityMirror {
	return &logMirror{logger: logger}
}

func (m *logMirror) PatchEntry(ctx context.Context, tempID string, entity models.Payload) error {
	m.logger.Info().
		Str("func", "logMirror.PatchEntry").
		Str("temp_id", tempID).
		Str("real_id", realIDOf(entity)).
		Msg("mirror entry patched")
	return nil
}

type webhookMirror struct {
	client *utils.HTTPClient
	url    string
	logger *logger.Logger
}

// NewWebhookMirror returns an [EntityMirror] that POSTs every patch to url as
// a [models.MirrorPatch] so the host can replace the cached entry keyed by
// the temporary identifier.
func NewWebhookMirror(url string, timeout time.Duration, logger *logger.Logger) EntityMirror {
	return &webhookMirror{
		client: utils.NewHTTPClient("", timeout),
		url:    url,
		logger: logger,
	}
}

func (m *webhookMirror) PatchEntry(ctx context.Context, tempID string, entity models.Payload) error {
	patch := models.MirrorPatch{
		TempID: tempID,
		RealID: realIDOf(entity),
		Entity: entity,
	}

	r := m.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(patch)
	if traceID, ok := utils.GetTraceIDFromContext(ctx); ok {
		r.SetHeader("X-Trace-ID", traceID)
	}

	resp, err := r.Post(m.url)
	if err != nil {
		return fmt.Errorf("%w: mirror webhook: %w", adapter.ErrTransport, err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("mirror webhook: %w", &adapter.StatusError{Status: resp.StatusCode(), Body: resp.String()})
	}

	m.logger.Debug().
		Str("func", "webhookMirror.PatchEntry").
		Str("temp_id", tempID).
		Str("real_id", patch.RealID).
		Msg("mirror entry patched")
	return nil
}

func realIDOf(entity models.Payload) string {
	if id, ok := entity.String(models.PayloadLocalID); ok {
		return id
	}
	id, _ := entity.String(models.PayloadTargetID)
	return id
}
