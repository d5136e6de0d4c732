package handler

import (
	"github.com/MKhiriev/go-outbox/internal/config"
	"github.com/MKhiriev/go-outbox/internal/handler/http"
	"github.com/MKhiriev/go-outbox/internal/logger"
	"github.com/MKhiriev/go-outbox/internal/service"
)

type Handlers struct {
	HTTP *http.Handler
}

func NewHandlers(services *service.ClientServices, cfg config.ClientServer, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	if cfg.HTTPAddress == "" {
		return nil, errNoHandlersAreCreated
	}

	return &Handlers{
		HTTP: http.NewHandler(services, cfg.RequestTimeout, logger),
	}, nil
}
