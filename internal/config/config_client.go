package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/MKhiriev/go-outbox/models"
)

// Defaults applied by [GetClientConfig] when a source leaves a value empty.
const (
	DefaultAdapterRequestTimeout = 15 * time.Second
	DefaultAdapterHealthPath     = "/health"
	DefaultServerRequestTimeout  = 10 * time.Second
	DefaultSyncInterval          = time.Minute
	DefaultProbeInterval         = 10 * time.Second
	defaultCredentialsFile       = "session.json"
)

// ClientApp holds application-level settings of the agent.
type ClientApp struct {
	// Version is reported by the control API. The build version is used when
	// it is empty.
	Version string
	// Build is the metadata linked into the binary.
	Build models.AppBuildInfo
}

// ClientAdapter holds settings used by the outbound REST client.
type ClientAdapter struct {
	// HTTPAddress is the backend base URL.
	HTTPAddress string
	// RequestTimeout is the default timeout for outbound requests.
	RequestTimeout time.Duration
	// HealthPath is probed by the connectivity monitor.
	HealthPath string
}

// ClientDB contains operation store connection settings.
type ClientDB struct {
	// DSN is the SQLite/PostgreSQL connection string.
	DSN string
}

// ClientStorage groups storage backend settings.
type ClientStorage struct {
	// DB holds operation store settings.
	DB ClientDB
	// CredentialsPath is the session file of the credential store.
	CredentialsPath string
}

// ClientWorkers contains background worker settings.
type ClientWorkers struct {
	// SyncInterval defines how often a periodic sync is requested.
	SyncInterval time.Duration
	// ProbeInterval defines how often backend reachability is probed.
	ProbeInterval time.Duration
}

// ClientServer holds control API settings.
type ClientServer struct {
	// HTTPAddress is the listen address. Empty disables the control API.
	HTTPAddress string
	// RequestTimeout bounds a single control API request.
	RequestTimeout time.Duration
}

// ClientLog holds logging settings.
type ClientLog struct {
	// Path is the log file. Empty means stdout.
	Path string
}

// ClientTracing holds tracing settings.
type ClientTracing struct {
	Enabled bool
	Stdout  bool
}

// ClientMirror holds host notification settings.
type ClientMirror struct {
	// WebhookURL receives confirmed CREATEs. Empty means log only.
	WebhookURL string
	// RequestTimeout bounds a single notification.
	RequestTimeout time.Duration
}

// ClientConfig is the runtime configuration of the outbox agent assembled
// from [StructuredConfig].
type ClientConfig struct {
	// App contains application-level settings.
	App ClientApp
	// Adapter contains the backend address and timeouts.
	Adapter ClientAdapter
	// Storage contains storage settings.
	Storage ClientStorage
	// Workers contains background job settings.
	Workers ClientWorkers
	// Server contains control API settings.
	Server ClientServer
	// Log contains logging settings.
	Log ClientLog
	// Tracing contains tracing settings.
	Tracing ClientTracing
	// Mirror contains host notification settings.
	Mirror ClientMirror
	// Catalog is the compiled resource catalog.
	Catalog *models.ResourceCatalog
}

// GetClientConfig builds and validates the agent config view from the
// merged structured configuration.
//
// It loads the base config via [GetStructuredConfig], applies defaults,
// loads the resource catalog, and validates the resulting [ClientConfig].
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	return newClientConfig(cfg)
}

func newClientConfig(cfg *StructuredConfig) (*ClientConfig, error) {
	catalog, err := LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}

	clientCfg := &ClientConfig{
		App: ClientApp{
			Version: cfg.App.Version,
		},
		Adapter: ClientAdapter{
			HTTPAddress:    strings.TrimRight(cfg.Adapter.HTTPAddress, "/"),
			RequestTimeout: orDuration(cfg.Adapter.RequestTimeout, DefaultAdapterRequestTimeout),
			HealthPath:     orString(cfg.Adapter.HealthPath, DefaultAdapterHealthPath),
		},
		Storage: ClientStorage{
			DB: ClientDB{
				DSN: cfg.Storage.DB.DSN,
			},
			CredentialsPath: cfg.Storage.CredentialsPath,
		},
		Workers: ClientWorkers{
			SyncInterval:  orDuration(cfg.Workers.SyncInterval, DefaultSyncInterval),
			ProbeInterval: orDuration(cfg.Workers.ProbeInterval, DefaultProbeInterval),
		},
		Server: ClientServer{
			HTTPAddress:    cfg.Server.HTTPAddress,
			RequestTimeout: orDuration(cfg.Server.RequestTimeout, DefaultServerRequestTimeout),
		},
		Log: ClientLog{
			Path: cfg.Log.Path,
		},
		Tracing: ClientTracing{
			Enabled: cfg.Tracing.Enabled,
			Stdout:  cfg.Tracing.Stdout,
		},
		Mirror: ClientMirror{
			WebhookURL:     strings.TrimSpace(cfg.Mirror.WebhookURL),
			RequestTimeout: orDuration(cfg.Adapter.RequestTimeout, DefaultAdapterRequestTimeout),
		},
		Catalog: catalog,
	}

	// keep the session next to a file-based store unless told otherwise
	if clientCfg.Storage.CredentialsPath == "" && isFileDSN(clientCfg.Storage.DB.DSN) {
		clientCfg.Storage.CredentialsPath = filepath.Join(filepath.Dir(clientCfg.Storage.DB.DSN), defaultCredentialsFile)
	}

	return clientCfg, clientCfg.validate()
}

func isFileDSN(dsn string) bool {
	return dsn != "" && !strings.Contains(dsn, "://") && !strings.Contains(dsn, "memory")
}

func orDuration(v, def time.Duration) time.Duration {
	if v == 0 {
		return def
	}
	return v
}

func orString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
