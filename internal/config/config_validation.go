// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"net/url"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup. The remote URL is
// checked separately by [StructuredConfig.RequireRemote] since only the
// commands that talk to the backend need it.
func (cfg *StructuredConfig) validate() error {
	if _, err := zerolog.ParseLevel(cfg.App.LogLevel); err != nil {
		return fmt.Errorf("%w: log level %q", ErrInvalidAppConfigs, cfg.App.LogLevel)
	}

	if cfg.Storage.DB.DSN == "" || cfg.Storage.SoftCapBytes <= 0 || cfg.Storage.QuotaBytes < 0 {
		return ErrInvalidStorageConfigs
	}

	if cfg.Remote.RequestTimeout <= 0 || cfg.Remote.RateLimit < 0 {
		return ErrInvalidRemoteConfigs
	}

	if cfg.Server.HTTPAddress == "" {
		return ErrInvalidServerConfigs
	}

	if cfg.Sync.RetryBackoff < 0 || cfg.Sync.MaxBackoff < 0 {
		return ErrInvalidSyncConfigs
	}

	if cfg.Workers.SyncInterval <= 0 || cfg.Workers.ConnectivityInterval <= 0 {
		return ErrInvalidWorkerConfigs
	}
	if _, err := cron.ParseStandard(cfg.Workers.HousekeepingSchedule); err != nil {
		return fmt.Errorf("%w: housekeeping schedule: %v", ErrInvalidWorkerConfigs, err)
	}

	if cfg.Housekeeping.Retention <= 0 {
		return ErrInvalidHousekeepingConfigs
	}

	return nil
}

// RequireRemote reports whether the remote backend is configured well
// enough to replay mutations against it.
func (cfg *StructuredConfig) RequireRemote() error {
	if cfg.Remote.URL == "" {
		return ErrRemoteURLRequired
	}

	u, err := url.Parse(cfg.Remote.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidRemoteConfigs, cfg.Remote.URL)
	}

	return nil
}
