package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/go-outbox/internal/config"
	"github.com/MKhiriev/go-outbox/internal/logger"
	"github.com/MKhiriev/go-outbox/internal/utils"
	"github.com/MKhiriev/go-outbox/models"
)

const (
	idempotencyKeyHeader = "Idempotency-Key"
	traceIDHeader        = "X-Trace-ID"
)

type httpServerAdapter struct {
	client     *utils.HTTPClient
	healthPath string

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

// NewHTTPServerAdapter constructs an HTTP/REST implementation of [ServerAdapter].
// It normalises and validates the base URL from adapterCfg.HTTPAddress and
// configures the underlying HTTP client with the resolved base URL and request
// timeout.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed as a
// valid URL.
func NewHTTPServerAdapter(adapterCfg config.ClientAdapter, logger *logger.Logger) (ServerAdapter, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	healthPath := adapterCfg.HealthPath
	if healthPath == "" {
		healthPath = config.DefaultAdapterHealthPath
	}

	return &httpServerAdapter{
		client:     utils.NewHTTPClient(baseURL, adapterCfg.RequestTimeout),
		healthPath: healthPath,
		logger:     logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SetToken implements [ServerAdapter]. It stores token (whitespace-trimmed) for
// use in the Authorization header of all subsequent requests.
func (h *httpServerAdapter) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

// Token implements [ServerAdapter].
func (h *httpServerAdapter) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// Send implements [ServerAdapter].
func (h *httpServerAdapter) Send(ctx context.Context, req models.DispatchRequest) (models.DispatchResponse, error) {
	r := h.authedRequest(ctx)
	if req.IdempotencyKey != "" {
		r.SetHeader(idempotencyKeyHeader, req.IdempotencyKey)
	}
	if req.Body != nil {
		r.SetHeader("Content-Type", "application/json").SetBody(req.Body)
	}

	resp, err := r.Execute(req.Method, req.Path)
	if err != nil {
		h.logger.Debug().Err(err).
			Str("func", "httpServerAdapter.Send").
			Str("method", req.Method).
			Str("path", req.Path).
			Msg("request did not reach the server")
		return models.DispatchResponse{}, fmt.Errorf("%w: %s %s: %w", ErrTransport, req.Method, req.Path, err)
	}

	out := models.DispatchResponse{Status: resp.StatusCode(), Body: resp.Body()}
	if err = mapHTTPError(resp); err != nil {
		return out, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}

	return out, nil
}

// Ping implements [ServerAdapter]. It issues GET healthPath without
// credentials.
func (h *httpServerAdapter) Ping(ctx context.Context) error {
	_, err := h.client.R().
		SetContext(ctx).
		Get(h.healthPath)
	if err != nil {
		return fmt.Errorf("%w: ping: %w", ErrTransport, err)
	}

	return nil
}

// authedRequest returns a resty request bound to ctx with the bearer token
// and the correlation header set when available.
func (h *httpServerAdapter) authedRequest(ctx context.Context) *resty.Request {
	r := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		r.SetAuthToken(token)
	}
	if traceID, ok := utils.GetTraceIDFromContext(ctx); ok {
		r.SetHeader(traceIDHeader, traceID)
	}
	return r
}
