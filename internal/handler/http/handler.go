package http

import (
	"time"

	"github.com/MKhiriev/go-outbox/internal/logger"
	"github.com/MKhiriev/go-outbox/internal/service"
)

type Handler struct {
	services       *service.ClientServices
	requestTimeout time.Duration

	logger *logger.Logger
}

// NewHandler builds the control API handler. A non-positive requestTimeout
// leaves requests unbounded.
func NewHandler(services *service.ClientServices, requestTimeout time.Duration, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services:       services,
		requestTimeout: requestTimeout,
		logger:         logger,
	}
}
