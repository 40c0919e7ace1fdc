package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets the override variables for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DATABASE_URL", "LISTEN_ADDR", "SESSION_SECRET", "LOG_LEVEL"} {
		if old, ok := os.LookupEnv(key); ok {
			require.NoError(t, os.Unsetenv(key))
			t.Cleanup(func() { os.Setenv(key, old) })
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orgchart.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen_addr: ":8080"
log_level: debug
connect_timeout: 5s
layout:
  node_width: 300
`), 0o600))

	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://db/test")
	t.Setenv("SESSION_SECRET", "s3cret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, "postgres://db/test", cfg.DatabaseURL)
	assert.Equal(t, "s3cret", cfg.SessionSecret)
	assert.Equal(t, 300.0, cfg.Layout.NodeWidth)
	assert.Equal(t, 160.0, cfg.Layout.NodeHeight, "unset layout keys keep their defaults")
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "loud")
	_, err := Load("")
	assert.ErrorContains(t, err, "LogLevel")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
