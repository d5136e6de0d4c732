package service

import (
	"context"

	"github.com/MKhiriev/go-outbox/internal/config"
	"github.com/MKhiriev/go-outbox/internal/logger"
)

type appInfoService struct {
	appVersion string

	logger *logger.Logger
}

// NewAppInfoService reports the configured version, falling back to the
// version linked into the binary.
func NewAppInfoService(cfg config.ClientApp, logger *logger.Logger) (AppInfoService, error) {
	version := cfg.Version
	if version == "" {
		version = cfg.Build.BuildVersion()
	}
	if version == "" {
		return nil, ErrVersionIsNotSpecified
	}

	return &appInfoService{
		appVersion: version,
		logger:     logger,
	}, nil
}

func (s *appInfoService) GetAppVersion(ctx context.Context) string {
	return s.appVersion
}
