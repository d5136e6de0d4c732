package service

import "context"

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// AppInfoService exposes static facts about the running agent.
type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}
