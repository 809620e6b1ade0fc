package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "release", cfg.Mode)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 60*time.Second, cfg.PongWait)
	assert.Equal(t, 54*time.Second, cfg.PingPeriod)
	assert.Equal(t, 50, cfg.HistoryLimit)
	assert.Equal(t, "drop", cfg.Backpressure)
	assert.Equal(t, 20, cfg.RateLimit.Messages)
	assert.Equal(t, 10*time.Second, cfg.RateLimit.Interval)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Empty(t, cfg.Nats.URL)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode: debug
port: 9090
store:
  driver: mongo
mongo:
  uri: mongodb://db:27017
rate_limit:
  messages: 5
`), 0o600))
	t.Setenv("SUPPORT_PORT", "9191")
	t.Setenv("SUPPORT_MONGO_DATABASE", "support_test")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Mode)
	assert.Equal(t, 9191, cfg.Port)
	assert.Equal(t, "mongo", cfg.Store.Driver)
	assert.Equal(t, "mongodb://db:27017", cfg.Mongo.URI)
	assert.Equal(t, "support_test", cfg.Mongo.Database)
	assert.Equal(t, 5, cfg.RateLimit.Messages)
}

func TestLoadFileRejectsUnknownDriver(t *testing.T) {
	t.Setenv("SUPPORT_STORE_DRIVER", "redis")
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
