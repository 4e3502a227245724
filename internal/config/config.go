// Package config loads application configuration from defaults, an optional YAML file
// and CRYPTODEFI_* environment variables, in that order of precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override. Nested keys are separated by a
// double underscore: CRYPTODEFI_SERVER__PORT sets server.port.
const EnvPrefix = "CRYPTODEFI_"

// Config is the application configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Log     LogConfig     `koanf:"log"`
	Storage StorageConfig `koanf:"storage"`
	Auth    AuthConfig    `koanf:"auth"`
	CORS    CORSConfig    `koanf:"cors"`
}

// ServerConfig configures the HTTP servers.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              string        `koanf:"port" validate:"required,numeric"`
	MetricsPort       string        `koanf:"metrics_port" validate:"required,numeric,nefield=Port"`
	ReadTimeout       time.Duration `koanf:"read_timeout" validate:"min=0"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout" validate:"min=0"`
	// WriteTimeout bounds whole responses, so it must stay 0 for feed streams to live.
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"min=0"`
	IdleTimeout     time.Duration `koanf:"idle_timeout" validate:"min=0"`
	RequestTimeout  time.Duration `koanf:"request_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=text json"`
}

// Storage drivers.
const (
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// StorageConfig selects where the session and preferences are kept.
type StorageConfig struct {
	Driver      string        `koanf:"driver" validate:"oneof=sqlite memory"`
	Path        string        `koanf:"path" validate:"required_if=Driver sqlite"`
	BusyTimeout time.Duration `koanf:"busy_timeout" validate:"min=0"`
}

// AuthConfig configures the simulated identity backend.
type AuthConfig struct {
	LoginDelay  time.Duration `koanf:"login_delay" validate:"min=0"`
	SignupDelay time.Duration `koanf:"signup_delay" validate:"min=0"`
	// RateLimit is login and signup attempts per second; 0 disables throttling.
	RateLimit float64 `koanf:"rate_limit" validate:"min=0"`
	RateBurst int     `koanf:"rate_burst" validate:"min=0"`
}

// CORSConfig configures cross-origin access for the local UI.
type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:              "127.0.0.1",
			Port:              "8080",
			MetricsPort:       "9090",
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       60 * time.Second,
			RequestTimeout:    30 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Storage: StorageConfig{
			Driver:      StorageSQLite,
			Path:        "cryptodefi.db",
			BusyTimeout: 5 * time.Second,
		},
		Auth: AuthConfig{
			LoginDelay:  1000 * time.Millisecond,
			SignupDelay: 1500 * time.Millisecond,
			RateLimit:   5,
			RateBurst:   10,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:5173"},
		},
	}
}

// Load reads the configuration. An empty path skips the YAML file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env config: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// envKey maps CRYPTODEFI_AUTH__RATE_LIMIT to auth.rate_limit.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}
