package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetAddress(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr string
	}{
		{in: "localhost:8787", want: "localhost:8787"},
		{in: "10.0.0.7:443", want: "10.0.0.7:443"},
		{in: ":8787", want: ":8787"},
		{in: "[::1]:9000", want: "[::1]:9000"},
		{in: "", wantErr: "need address in a form `host:port`"},
		{in: "keeper8787", wantErr: "need address in a form `host:port`"},
		{in: "a:b:c", wantErr: "need address in a form `host:port`"},
		{in: "localhost:http", wantErr: "invalid syntax"},
		{in: "localhost:0", wantErr: "port number must be in range"},
		{in: "localhost:65536", wantErr: "port number must be in range"},
		{in: "api.example.co:80", wantErr: "incorrect IP-address provided"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var addr NetAddress
			err := addr.Set(tt.in)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				assert.Empty(t, addr.String(), "failed Set must leave the address untouched")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, addr.String())
		})
	}

	assert.Equal(t, "host:port", (&NetAddress{}).Type())
}

func TestRegisterFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		validate func(t *testing.T, cfg *StructuredConfig)
	}{
		{
			name: "all flags set",
			args: []string{
				"-a", "127.0.0.1:9999",
				"-d", "/tmp/keeper.db",
				"-c", "/etc/keeper.yaml",
				"--remote-url", "https://api.example.co",
				"--api-key", "key",
				"--access-token", "jwt",
				"--log-level", "warn",
				"--log-file", "/tmp/keeper.log",
				"--company-id", "c-1",
			},
			validate: func(t *testing.T, cfg *StructuredConfig) {
				assert.Equal(t, "127.0.0.1:9999", cfg.Server.HTTPAddress)
				assert.Equal(t, "/tmp/keeper.db", cfg.Storage.DB.DSN)
				assert.Equal(t, "/etc/keeper.yaml", cfg.ConfigFilePath)
				assert.Equal(t, "https://api.example.co", cfg.Remote.URL)
				assert.Equal(t, "key", cfg.Remote.APIKey)
				assert.Equal(t, "jwt", cfg.Remote.AccessToken)
				assert.Equal(t, "warn", cfg.App.LogLevel)
				assert.Equal(t, "/tmp/keeper.log", cfg.App.LogFile)
				assert.Equal(t, "c-1", cfg.App.CompanyID)
			},
		},
		{
			name: "long config flag",
			args: []string{"--config", "/path/to/config.json"},
			validate: func(t *testing.T, cfg *StructuredConfig) {
				assert.Equal(t, "/path/to/config.json", cfg.ConfigFilePath)
			},
		},
		{
			name: "no flags",
			args: nil,
			validate: func(t *testing.T, cfg *StructuredConfig) {
				assert.Equal(t, &StructuredConfig{}, cfg)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
			flags := RegisterFlags(fs)
			require.NoError(t, fs.Parse(tt.args))

			tt.validate(t, flags.config())
		})
	}
}

func TestRegisterFlags_InvalidAddress(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)

	require.Error(t, fs.Parse([]string{"--address", "nowhere"}))
}

func TestConfigFilePath(t *testing.T) {
	setEnvVars(t, map[string]string{"CONFIG": "/from/env.json"})

	assert.Equal(t, "/from/env.json", configFilePath(nil))

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags := RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--config", "/from/flag.yaml"}))
	assert.Equal(t, "/from/flag.yaml", configFilePath(flags))
}
