package config

import "time"

// Default values applied before any other source.
const (
	DefaultLogLevel             = "info"
	DefaultDSN                  = "offline-keeper.db"
	DefaultSoftCapBytes         = 50 * 1024 * 1024
	DefaultRequestTimeout       = 15 * time.Second
	DefaultRateLimit            = 10
	DefaultHealthPath           = "/rest/v1/"
	DefaultHTTPAddress          = "127.0.0.1:8787"
	DefaultRetryBackoff         = 30 * time.Second
	DefaultMaxBackoff           = 10 * time.Minute
	DefaultSyncInterval         = 5 * time.Minute
	DefaultConnectivityInterval = 15 * time.Second
	DefaultHousekeepingSchedule = "@every 1h"
	DefaultRetention            = 7 * 24 * time.Hour
)

func defaults() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			LogLevel: DefaultLogLevel,
		},
		Storage: Storage{
			DB:           DB{DSN: DefaultDSN},
			SoftCapBytes: DefaultSoftCapBytes,
		},
		Remote: Remote{
			RequestTimeout: DefaultRequestTimeout,
			RateLimit:      DefaultRateLimit,
			HealthPath:     DefaultHealthPath,
		},
		Server: Server{
			HTTPAddress: DefaultHTTPAddress,
		},
		Sync: Sync{
			RetryBackoff: DefaultRetryBackoff,
			MaxBackoff:   DefaultMaxBackoff,
		},
		Workers: Workers{
			SyncInterval:         DefaultSyncInterval,
			ConnectivityInterval: DefaultConnectivityInterval,
			HousekeepingSchedule: DefaultHousekeepingSchedule,
		},
		Housekeeping: Housekeeping{
			Retention: DefaultRetention,
		},
	}
}
