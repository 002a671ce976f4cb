package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidAppConfigs indicates invalid process settings (for example,
	// an unknown log level).
	ErrInvalidAppConfigs = errors.New("invalid app configuration")
	// ErrInvalidStorageConfigs indicates invalid local storage settings
	// (for example, empty DSN or a non-positive soft cap).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidRemoteConfigs indicates invalid backend settings
	// (for example, a zero request timeout or malformed URL).
	ErrInvalidRemoteConfigs = errors.New("invalid remote configuration")
	// ErrInvalidServerConfigs indicates an empty local API address.
	ErrInvalidServerConfigs = errors.New("invalid server configuration")
	// ErrInvalidSyncConfigs indicates negative backoff settings.
	ErrInvalidSyncConfigs = errors.New("invalid sync configuration")
	// ErrInvalidWorkerConfigs indicates invalid background job settings
	// (for example, zero sync interval or unparsable cron schedule).
	ErrInvalidWorkerConfigs = errors.New("invalid worker configuration")
	// ErrInvalidHousekeepingConfigs indicates a non-positive retention.
	ErrInvalidHousekeepingConfigs = errors.New("invalid housekeeping configuration")
	// ErrRemoteURLRequired is returned by [StructuredConfig.RequireRemote]
	// when no backend URL is configured.
	ErrRemoteURLRequired = errors.New("remote url is required")
	// ErrUnsupportedConfigFile is returned for config files that are
	// neither JSON nor YAML.
	ErrUnsupportedConfigFile = errors.New("unsupported config file extension")
)
