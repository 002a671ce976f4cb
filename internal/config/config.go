// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container of the offline
// keeper. It is populated by merging built-in defaults, an optional JSON or
// YAML file, environment variables and command-line flags.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env      : direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds process-wide settings: logging and the default company scope.
	App App `envPrefix:"APP_"`

	// Storage holds the local SQLite store settings and the storage soft cap.
	Storage Storage `envPrefix:"STORAGE_"`

	// Remote holds the hosted backend (PostgREST) connection settings.
	Remote Remote `envPrefix:"REMOTE_"`

	// Server holds the local HTTP API listen address.
	Server Server `envPrefix:"SERVER_"`

	// Sync holds retry spacing and completed-entry handling of the sync engine.
	Sync Sync `envPrefix:"SYNC_"`

	// Workers holds the intervals of background jobs.
	Workers Workers `envPrefix:"WORKERS_"`

	// Housekeeping holds the retention window of the compaction job.
	Housekeeping Housekeeping `envPrefix:"HOUSEKEEPING_"`

	// ConfigFilePath is the optional path to a JSON or YAML configuration
	// file. Populated via the CONFIG environment variable or the --config flag.
	ConfigFilePath string `env:"CONFIG"`
}

// App holds process-wide settings.
type App struct {
	// LogLevel is a zerolog level name ("debug", "info", ...).
	// Env: APP_LOG_LEVEL
	LogLevel string `env:"LOG_LEVEL"`

	// LogFile, when set, redirects logs to the given file. The TUI monitor
	// always logs to a file so that output does not corrupt the screen.
	// Env: APP_LOG_FILE
	LogFile string `env:"LOG_FILE"`

	// CompanyID is the default company scope of cached collections.
	// Env: APP_COMPANY_ID
	CompanyID string `env:"COMPANY_ID"`
}

// Storage groups the local persistence settings.
type Storage struct {
	// DB holds the SQLite connection settings.
	DB DB `envPrefix:"DB_"`

	// SoftCapBytes is the usage above which the store is reported as near
	// its limit. Advisory only.
	// Env: STORAGE_SOFT_CAP_BYTES
	SoftCapBytes int64 `env:"SOFT_CAP_BYTES"`

	// QuotaBytes is the quota reported next to usage. Zero means unknown.
	// Env: STORAGE_QUOTA_BYTES
	QuotaBytes int64 `env:"QUOTA_BYTES"`
}

// DB holds connection settings for the local SQLite database.
type DB struct {
	// DSN is the path of the SQLite database file.
	// Env: STORAGE_DB_DSN
	DSN string `env:"DSN"`
}

// Remote holds the hosted backend connection settings.
type Remote struct {
	// URL is the project base URL; the REST API lives under /rest/v1.
	// Env: REMOTE_URL
	URL string `env:"URL"`

	// APIKey is sent as the "apikey" header.
	// Env: REMOTE_API_KEY
	APIKey string `env:"API_KEY"`

	// AccessToken is the user JWT sent as a bearer token. Its "sub" claim
	// is stamped on queued mutations.
	// Env: REMOTE_ACCESS_TOKEN
	AccessToken string `env:"ACCESS_TOKEN"`

	// RequestTimeout bounds a single remote call.
	// Env: REMOTE_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// RateLimit is the maximum number of remote calls per second.
	// Env: REMOTE_RATE_LIMIT
	RateLimit float64 `env:"RATE_LIMIT"`

	// HealthPath is probed by the connectivity monitor.
	// Env: REMOTE_HEALTH_PATH
	HealthPath string `env:"HEALTH_PATH"`
}

// Server holds the local HTTP API settings.
type Server struct {
	// HTTPAddress is the TCP address the local API listens on.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`
}

// Sync holds sync engine settings.
type Sync struct {
	// RetryBackoff is the base of the exponential not-before delay applied
	// after a transient failure.
	// Env: SYNC_RETRY_BACKOFF
	RetryBackoff time.Duration `env:"RETRY_BACKOFF"`

	// MaxBackoff caps the not-before delay.
	// Env: SYNC_MAX_BACKOFF
	MaxBackoff time.Duration `env:"MAX_BACKOFF"`

	// ImmediateRetry disables not-before spacing: failed entries are retried
	// on the next drain trigger.
	// Env: SYNC_IMMEDIATE_RETRY
	ImmediateRetry bool `env:"IMMEDIATE_RETRY"`

	// KeepCompleted marks delivered entries completed instead of deleting
	// them; housekeeping removes them after the retention window.
	// Env: SYNC_KEEP_COMPLETED
	KeepCompleted bool `env:"KEEP_COMPLETED"`
}

// Backoff returns the effective base delay.
func (s Sync) Backoff() time.Duration {
	if s.ImmediateRetry {
		return 0
	}
	return s.RetryBackoff
}

// Workers holds configuration for background jobs.
type Workers struct {
	// SyncInterval is the period of the drain job.
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`

	// ConnectivityInterval is the period of remote health probes.
	// Env: WORKERS_CONNECTIVITY_INTERVAL
	ConnectivityInterval time.Duration `env:"CONNECTIVITY_INTERVAL"`

	// HousekeepingSchedule is a cron spec (robfig/cron syntax, descriptors
	// such as "@every 1h" accepted).
	// Env: WORKERS_HOUSEKEEPING_SCHEDULE
	HousekeepingSchedule string `env:"HOUSEKEEPING_SCHEDULE"`
}

// Housekeeping holds the compaction settings.
type Housekeeping struct {
	// Retention is the age after which terminal queue entries and sync
	// metadata are deleted.
	// Env: HOUSEKEEPING_RETENTION
	Retention time.Duration `env:"RETENTION"`
}

// Load assembles the configuration from all sources in the following
// priority order (later sources override non-zero fields):
//  1. Built-in defaults
//  2. Config file (path from --config or CONFIG)
//  3. Environment variables
//  4. Command-line flags
//
// flags may be nil when the caller has no command line.
func Load(flags *Flags) (*StructuredConfig, error) {
	return newConfigBuilder().
		withDefaults().
		withFile(configFilePath(flags)).
		withEnv().
		withFlags(flags).
		build()
}
