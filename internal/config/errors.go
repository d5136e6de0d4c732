package config

import "errors"

// Validation errors returned by [ClientConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidAdapterConfigs indicates invalid backend adapter settings
	// (for example, missing base URL or request timeout).
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configuration")
	// ErrInvalidStorageConfigs indicates invalid storage settings
	// (for example, empty DSN or unsupported in-memory DSN).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidWorkerConfigs indicates invalid background worker settings
	// (for example, zero probe interval).
	ErrInvalidWorkerConfigs = errors.New("invalid worker configuration")
	// ErrInvalidMirrorConfigs indicates a mirror webhook that is not an
	// absolute http(s) URL.
	ErrInvalidMirrorConfigs = errors.New("invalid mirror configuration")
	// ErrInvalidCatalog indicates a resource catalog that cannot be read or
	// compiled.
	ErrInvalidCatalog = errors.New("invalid resource catalog")
)
