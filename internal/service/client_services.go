package service

import (
	"github.com/MKhiriev/go-outbox/internal/adapter"
	"github.com/MKhiriev/go-outbox/internal/config"
	"github.com/MKhiriev/go-outbox/internal/logger"
	"github.com/MKhiriev/go-outbox/internal/store"
)

type ClientServices struct {
	OutboxService OutboxService
	Dispatcher    Dispatcher
	SyncTrigger   SyncTrigger
	Connectivity  ConnectivitySignal
	AuthService   CredentialProvider
	Identifiers   IdentifierResolver
	SyncJob       ClientSyncJob

	AppInfoService AppInfoService
}

// NewClientServices wires the outbox services on top of storages and
// serverAdapter. mirror may be nil, in which case confirmed CREATEs are only
// logged and hosts resolve identifiers through the control API.
func NewClientServices(
	storages *store.ClientStorages,
	serverAdapter adapter.ServerAdapter,
	cfg *config.ClientConfig,
	mirror EntityMirror,
	logger *logger.Logger,
) (*ClientServices, error) {
	appInfo, err := NewAppInfoService(cfg.App, logger)
	if err != nil {
		return nil, err
	}

	authSvc := NewClientAuthService(storages.Credentials, logger)
	connectivity := NewConnectivityMonitor(serverAdapter, cfg.Workers.ProbeInterval, logger)
	identifiers := NewIdentifierResolver(storages.Identifiers, logger)

	dispatcher := NewDispatcher(DispatcherDeps{
		Operations:  storages.Operations,
		Identifiers: identifiers,
		Adapter:     serverAdapter,
		Signal:      connectivity,
		Credentials: authSvc,
		Mirror:      mirror,
		Catalog:     cfg.Catalog,
	}, logger)

	trigger := NewSyncTrigger(dispatcher, connectivity, authSvc, logger)

	return &ClientServices{
		OutboxService: NewClientOutboxService(storages.Operations, connectivity, trigger, authSvc, dispatcher, logger),
		Dispatcher:    dispatcher,
		SyncTrigger:   trigger,
		Connectivity:  connectivity,
		AuthService:   authSvc,
		Identifiers:   identifiers,
		SyncJob:       NewClientSyncJob(trigger),

		AppInfoService: appInfo,
	}, nil
}
