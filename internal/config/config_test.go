package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Default(), *cfg)
	assert.Equal(t, time.Second, cfg.Auth.LoginDelay)
	assert.Equal(t, 1500*time.Millisecond, cfg.Auth.SignupDelay)
	assert.Equal(t, StorageSQLite, cfg.Storage.Driver)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "8181"
log:
  level: debug
  format: json
storage:
  driver: memory
auth:
  login_delay: 0s
  rate_limit: 0
cors:
  allowed_origins:
    - http://localhost:3000
    - http://127.0.0.1:3000
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "8181", cfg.Server.Port)
	assert.Equal(t, "9090", cfg.Server.MetricsPort)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Zero(t, cfg.Auth.LoginDelay)
	assert.Equal(t, 1500*time.Millisecond, cfg.Auth.SignupDelay)
	assert.Zero(t, cfg.Auth.RateLimit)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  port: \"8181\"\n")

	t.Setenv("CRYPTODEFI_SERVER__PORT", "8282")
	t.Setenv("CRYPTODEFI_AUTH__SIGNUP_DELAY", "250ms")
	t.Setenv("CRYPTODEFI_STORAGE__PATH", "/tmp/dashboard.db")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "8282", cfg.Server.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.Auth.SignupDelay)
	assert.Equal(t, "/tmp/dashboard.db", cfg.Storage.Path)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown log level", "log:\n  level: verbose\n"},
		{"unknown driver", "storage:\n  driver: postgres\n"},
		{"sqlite without path", "storage:\n  driver: sqlite\n  path: \"\"\n"},
		{"same ports", "server:\n  port: \"9090\"\n"},
		{"negative delay", "auth:\n  login_delay: -1s\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
