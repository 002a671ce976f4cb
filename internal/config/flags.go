package config

import (
	"errors"
	"net"
	"os"
	"strconv"

	"github.com/spf13/pflag"
)

// NetAddress holds structured network address data for host and port.
// It implements the pflag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// Flags holds the values of the persistent command-line flags. Only flags
// the user actually set contribute to the merged configuration.
type Flags struct {
	fs *pflag.FlagSet

	configPath  string
	dsn         string
	remoteURL   string
	apiKey      string
	accessToken string
	address     NetAddress
	logLevel    string
	logFile     string
	companyID   string
}

// RegisterFlags binds the configuration flags on fs:
//
//	-c/--config      JSON or YAML config file path
//	-d/--dsn         SQLite database path
//	--remote-url     hosted backend base URL
//	--api-key        backend API key
//	--access-token   user access token (JWT)
//	-a/--address     local API address in format [host]:[port]
//	--log-level      log level
//	--log-file       log file path
//	--company-id     default company scope
func RegisterFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs}

	fs.StringVarP(&f.configPath, "config", "c", "", "JSON or YAML config file path")
	fs.StringVarP(&f.dsn, "dsn", "d", "", "SQLite database path")
	fs.StringVar(&f.remoteURL, "remote-url", "", "Hosted backend base URL")
	fs.StringVar(&f.apiKey, "api-key", "", "Hosted backend API key")
	fs.StringVar(&f.accessToken, "access-token", "", "User access token (JWT)")
	fs.VarP(&f.address, "address", "a", "Local API address host:port")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.logFile, "log-file", "", "Log file path")
	fs.StringVar(&f.companyID, "company-id", "", "Default company scope")

	return f
}

func (f *Flags) config() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			LogLevel:  f.logLevel,
			LogFile:   f.logFile,
			CompanyID: f.companyID,
		},
		Storage: Storage{
			DB: DB{DSN: f.dsn},
		},
		Remote: Remote{
			URL:         f.remoteURL,
			APIKey:      f.apiKey,
			AccessToken: f.accessToken,
		},
		Server: Server{
			HTTPAddress: f.address.String(),
		},
		ConfigFilePath: f.configPath,
	}
}

// configFilePath resolves the config file from the --config flag, falling
// back to the CONFIG environment variable.
func configFilePath(f *Flags) string {
	if f != nil && f.configPath != "" {
		return f.configPath
	}
	return os.Getenv("CONFIG")
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	host, rawPort, err := net.SplitHostPort(s)
	if err != nil {
		return errors.New("need address in a form `host:port`")
	}

	port, err := strconv.Atoi(rawPort)
	if err != nil {
		return err
	}

	if port < 1 || port > 65535 {
		return errors.New("port number must be in range 1-65535")
	}

	if host != "localhost" && host != "" {
		if ip := net.ParseIP(host); ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}

// Type implements pflag.Value.
func (a *NetAddress) Type() string {
	return "host:port"
}
