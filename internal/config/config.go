package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds client level configuration loaded from a YAML file, environment and flags.
type Config struct {
	BridgeAddress           string
	BridgeToken             string
	BackendURL              string
	GeoURL                  string
	CredentialStore         string
	VaultSecret             string
	CredentialTTL           time.Duration
	DeviceID                string
	RequestTimeout          time.Duration
	LocationTimeout         time.Duration
	LocationRefreshInterval time.Duration
	ShutdownTimeout         time.Duration
	TracingExporter         string
	OTLPEndpoint            string
	LogLevel                string
}

const (
	defaultBridgeAddress           = "127.0.0.1:8787"
	defaultCredentialStore         = "memory://"
	defaultVaultSecret             = "change-me-in-production"
	defaultCredentialTTL           = 30 * 24 * time.Hour
	defaultDeviceID                = "local-device"
	defaultRequestTimeout          = 10 * time.Second
	defaultLocationTimeout         = 5 * time.Second
	defaultLocationRefreshInterval = 5 * time.Minute
	defaultShutdownTimeout         = 10 * time.Second
	defaultTracingExporter         = "none"
	defaultLogLevel                = "info"
)

// fileConfig mirrors Config in the YAML layer. Durations are Go duration strings.
type fileConfig struct {
	BridgeAddress           string `yaml:"bridge_address"`
	BridgeToken             string `yaml:"bridge_token"`
	BackendURL              string `yaml:"backend_url"`
	GeoURL                  string `yaml:"geo_url"`
	CredentialStore         string `yaml:"credential_store"`
	VaultSecret             string `yaml:"vault_secret"`
	CredentialTTL           string `yaml:"credential_ttl"`
	DeviceID                string `yaml:"device_id"`
	RequestTimeout          string `yaml:"request_timeout"`
	LocationTimeout         string `yaml:"location_timeout"`
	LocationRefreshInterval string `yaml:"location_refresh_interval"`
	ShutdownTimeout         string `yaml:"shutdown_timeout"`
	TracingExporter         string `yaml:"tracing_exporter"`
	OTLPEndpoint            string `yaml:"otlp_endpoint"`
	LogLevel                string `yaml:"log_level"`
}

// Load parses configuration from the optional config file, environment variables and flags.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		BridgeAddress:           defaultBridgeAddress,
		CredentialStore:         defaultCredentialStore,
		VaultSecret:             defaultVaultSecret,
		CredentialTTL:           defaultCredentialTTL,
		DeviceID:                defaultDeviceID,
		RequestTimeout:          defaultRequestTimeout,
		LocationTimeout:         defaultLocationTimeout,
		LocationRefreshInterval: defaultLocationRefreshInterval,
		ShutdownTimeout:         defaultShutdownTimeout,
		TracingExporter:         defaultTracingExporter,
		LogLevel:                defaultLogLevel,
	}

	if path := configPath(args, lookup); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	cfg.BridgeAddress = getString(lookup, "BRIDGE_ADDRESS", cfg.BridgeAddress)
	cfg.BridgeToken = getString(lookup, "BRIDGE_TOKEN", cfg.BridgeToken)
	cfg.BackendURL = getString(lookup, "BACKEND_URL", cfg.BackendURL)
	cfg.GeoURL = getString(lookup, "GEO_URL", cfg.GeoURL)
	cfg.CredentialStore = getString(lookup, "CREDENTIAL_STORE", cfg.CredentialStore)
	cfg.VaultSecret = getString(lookup, "VAULT_SECRET", cfg.VaultSecret)
	cfg.CredentialTTL = getDuration(lookup, "CREDENTIAL_TTL", cfg.CredentialTTL)
	cfg.DeviceID = getString(lookup, "DEVICE_ID", cfg.DeviceID)
	cfg.RequestTimeout = getDuration(lookup, "REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.LocationTimeout = getDuration(lookup, "LOCATION_TIMEOUT", cfg.LocationTimeout)
	cfg.LocationRefreshInterval = getDuration(lookup, "LOCATION_REFRESH_INTERVAL", cfg.LocationRefreshInterval)
	cfg.ShutdownTimeout = getDuration(lookup, "SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.TracingExporter = getString(lookup, "TRACING_EXPORTER", cfg.TracingExporter)
	cfg.OTLPEndpoint = getString(lookup, "OTLP_ENDPOINT", cfg.OTLPEndpoint)
	cfg.LogLevel = getString(lookup, "LOG_LEVEL", cfg.LogLevel)

	fs := flag.NewFlagSet("marketclient", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var configFile string
	var (
		credentialTTLStr   = cfg.CredentialTTL.String()
		requestTimeoutStr  = cfg.RequestTimeout.String()
		locationTimeoutStr = cfg.LocationTimeout.String()
		refreshIntervalStr = cfg.LocationRefreshInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&configFile, "config", "", "YAML configuration file")
	fs.StringVar(&cfg.BridgeAddress, "a", cfg.BridgeAddress, "Local bridge listen address")
	fs.StringVar(&cfg.BridgeToken, "token", cfg.BridgeToken, "Bearer token required by the local bridge")
	fs.StringVar(&cfg.BackendURL, "b", cfg.BackendURL, "Credential backend base URL")
	fs.StringVar(&cfg.GeoURL, "g", cfg.GeoURL, "Geolocation service base URL")
	fs.StringVar(&cfg.CredentialStore, "s", cfg.CredentialStore, "Credential store DSN (memory://, redis://, postgres://)")
	fs.StringVar(&cfg.VaultSecret, "vault-secret", cfg.VaultSecret, "Secret for sealing stored credentials")
	fs.StringVar(&credentialTTLStr, "credential-ttl", credentialTTLStr, "Lifetime of a stored credential")
	fs.StringVar(&cfg.DeviceID, "device", cfg.DeviceID, "Device identifier used as credential key")
	fs.StringVar(&requestTimeoutStr, "request-timeout", requestTimeoutStr, "Backend request timeout")
	fs.StringVar(&locationTimeoutStr, "location-timeout", locationTimeoutStr, "Location resolution timeout")
	fs.StringVar(&refreshIntervalStr, "refresh-interval", refreshIntervalStr, "Location refresh interval, 0 disables")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&cfg.TracingExporter, "tracing", cfg.TracingExporter, "Trace exporter: none, stdout or otlp")
	fs.StringVar(&cfg.OTLPEndpoint, "otlp-endpoint", cfg.OTLPEndpoint, "OTLP gRPC collector endpoint")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.CredentialTTL, err = time.ParseDuration(credentialTTLStr); err != nil {
		return nil, fmt.Errorf("invalid credential ttl: %w", err)
	}
	if cfg.RequestTimeout, err = time.ParseDuration(requestTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid request timeout: %w", err)
	}
	if cfg.LocationTimeout, err = time.ParseDuration(locationTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid location timeout: %w", err)
	}
	if cfg.LocationRefreshInterval, err = time.ParseDuration(refreshIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid refresh interval: %w", err)
	}
	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if secretFile, ok := lookup("VAULT_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read vault secret file: %w", err)
		}
		cfg.VaultSecret = strings.TrimSpace(string(content))
	}

	if cfg.CredentialTTL <= 0 {
		cfg.CredentialTTL = defaultCredentialTTL
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.LocationTimeout <= 0 {
		cfg.LocationTimeout = defaultLocationTimeout
	}
	if cfg.LocationRefreshInterval < 0 {
		cfg.LocationRefreshInterval = 0
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	cfg.TracingExporter = strings.ToLower(strings.TrimSpace(cfg.TracingExporter))
	switch cfg.TracingExporter {
	case "", "none":
		cfg.TracingExporter = defaultTracingExporter
	case "stdout", "otlp":
	default:
		return nil, fmt.Errorf("unknown tracing exporter %q", cfg.TracingExporter)
	}

	if cfg.BackendURL == "" {
		return nil, fmt.Errorf("backend URL must be provided")
	}

	if cfg.GeoURL == "" {
		return nil, fmt.Errorf("geo service URL must be provided")
	}

	if cfg.VaultSecret == "" {
		return nil, fmt.Errorf("vault secret must not be empty")
	}

	return cfg, nil
}

// configPath finds the config file from -config, falling back to CONFIG_FILE.
func configPath(args []string, lookup envLookup) string {
	for i, arg := range args {
		name := strings.TrimLeft(arg, "-")
		if name == arg {
			continue
		}
		if value, ok := strings.CutPrefix(name, "config="); ok {
			return value
		}
		if name == "config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return getString(lookup, "CONFIG_FILE", "")
}

func applyFile(cfg *Config, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(content, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setString(&cfg.BridgeAddress, fc.BridgeAddress)
	setString(&cfg.BridgeToken, fc.BridgeToken)
	setString(&cfg.BackendURL, fc.BackendURL)
	setString(&cfg.GeoURL, fc.GeoURL)
	setString(&cfg.CredentialStore, fc.CredentialStore)
	setString(&cfg.VaultSecret, fc.VaultSecret)
	setString(&cfg.DeviceID, fc.DeviceID)
	setString(&cfg.TracingExporter, fc.TracingExporter)
	setString(&cfg.OTLPEndpoint, fc.OTLPEndpoint)
	setString(&cfg.LogLevel, fc.LogLevel)

	durations := []struct {
		name   string
		raw    string
		target *time.Duration
	}{
		{"credential_ttl", fc.CredentialTTL, &cfg.CredentialTTL},
		{"request_timeout", fc.RequestTimeout, &cfg.RequestTimeout},
		{"location_timeout", fc.LocationTimeout, &cfg.LocationTimeout},
		{"location_refresh_interval", fc.LocationRefreshInterval, &cfg.LocationRefreshInterval},
		{"shutdown_timeout", fc.ShutdownTimeout, &cfg.ShutdownTimeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("config file %s: %w", d.name, err)
		}
		*d.target = parsed
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		if secs, err := strconv.Atoi(v); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return def
}
