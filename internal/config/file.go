package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors [StructuredConfig] with file-friendly field names and
// textual durations ("30s", "1h").
type fileConfig struct {
	App struct {
		LogLevel  string `json:"log_level" yaml:"log_level"`
		LogFile   string `json:"log_file" yaml:"log_file"`
		CompanyID string `json:"company_id" yaml:"company_id"`
	} `json:"app" yaml:"app"`

	Storage struct {
		DSN          string `json:"dsn" yaml:"dsn"`
		SoftCapBytes int64  `json:"soft_cap_bytes" yaml:"soft_cap_bytes"`
		QuotaBytes   int64  `json:"quota_bytes" yaml:"quota_bytes"`
	} `json:"storage" yaml:"storage"`

	Remote struct {
		URL            string   `json:"url" yaml:"url"`
		APIKey         string   `json:"api_key" yaml:"api_key"`
		AccessToken    string   `json:"access_token" yaml:"access_token"`
		RequestTimeout Duration `json:"request_timeout" yaml:"request_timeout"`
		RateLimit      float64  `json:"rate_limit" yaml:"rate_limit"`
		HealthPath     string   `json:"health_path" yaml:"health_path"`
	} `json:"remote" yaml:"remote"`

	Server struct {
		HTTPAddress string `json:"http_address" yaml:"http_address"`
	} `json:"server" yaml:"server"`

	Sync struct {
		RetryBackoff   Duration `json:"retry_backoff" yaml:"retry_backoff"`
		MaxBackoff     Duration `json:"max_backoff" yaml:"max_backoff"`
		ImmediateRetry bool     `json:"immediate_retry" yaml:"immediate_retry"`
		KeepCompleted  bool     `json:"keep_completed" yaml:"keep_completed"`
	} `json:"sync" yaml:"sync"`

	Workers struct {
		SyncInterval         Duration `json:"sync_interval" yaml:"sync_interval"`
		ConnectivityInterval Duration `json:"connectivity_interval" yaml:"connectivity_interval"`
		HousekeepingSchedule string   `json:"housekeeping_schedule" yaml:"housekeeping_schedule"`
	} `json:"workers" yaml:"workers"`

	Housekeeping struct {
		Retention Duration `json:"retention" yaml:"retention"`
	} `json:"housekeeping" yaml:"housekeeping"`
}

// parseFile reads a JSON or YAML config file, chosen by extension.
func parseFile(path string) (*StructuredConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err = yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("error decoding yaml configs: %w", err)
		}
	case ".json", "":
		if err = json.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("error decoding json configs: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedConfigFile, path)
	}

	return fc.config(), nil
}

func (fc *fileConfig) config() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			LogLevel:  fc.App.LogLevel,
			LogFile:   fc.App.LogFile,
			CompanyID: fc.App.CompanyID,
		},
		Storage: Storage{
			DB:           DB{DSN: fc.Storage.DSN},
			SoftCapBytes: fc.Storage.SoftCapBytes,
			QuotaBytes:   fc.Storage.QuotaBytes,
		},
		Remote: Remote{
			URL:            fc.Remote.URL,
			APIKey:         fc.Remote.APIKey,
			AccessToken:    fc.Remote.AccessToken,
			RequestTimeout: time.Duration(fc.Remote.RequestTimeout),
			RateLimit:      fc.Remote.RateLimit,
			HealthPath:     fc.Remote.HealthPath,
		},
		Server: Server{
			HTTPAddress: fc.Server.HTTPAddress,
		},
		Sync: Sync{
			RetryBackoff:   time.Duration(fc.Sync.RetryBackoff),
			MaxBackoff:     time.Duration(fc.Sync.MaxBackoff),
			ImmediateRetry: fc.Sync.ImmediateRetry,
			KeepCompleted:  fc.Sync.KeepCompleted,
		},
		Workers: Workers{
			SyncInterval:         time.Duration(fc.Workers.SyncInterval),
			ConnectivityInterval: time.Duration(fc.Workers.ConnectivityInterval),
			HousekeepingSchedule: fc.Workers.HousekeepingSchedule,
		},
		Housekeeping: Housekeeping{
			Retention: time.Duration(fc.Housekeeping.Retention),
		},
	}
}

// Duration is a wrapper around time.Duration that supports JSON and YAML
// unmarshaling from strings like "1h", "30s" as well as plain nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!int" {
		var n int64
		if err := node.Decode(&n); err != nil {
			return err
		}
		*d = Duration(time.Duration(n))
		return nil
	}

	tmp, err := time.ParseDuration(node.Value)
	if err != nil {
		return err
	}
	*d = Duration(tmp)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}
