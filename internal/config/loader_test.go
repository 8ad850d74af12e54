package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
server:
  port: 8081
  mode: "release"
database:
  host: "db.internal"
  port: 5432
  user: "svc"
  password: "pw"
  db_name: "credmatrix"
redis:
  addr: "cache.internal:6379"
kafka:
  brokers: ["broker.internal:9092"]
  group_id: "portfolio-workers"
minio:
  endpoint: "objects.internal:9000"
  access_key: "key"
  secret_key: "secret"
  bucket: "company-documents"
analytics:
  cache_ttl: 2m
log:
  level: "warn"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "cache.internal:6379", cfg.Redis.Addr)
	assert.Equal(t, 2*time.Minute, cfg.Analytics.CacheTTL)
	assert.Equal(t, "warn", cfg.Log.Level)

	// unset sections fall back to defaults
	assert.Equal(t, DefaultWorkerConcurrency, cfg.Worker.Concurrency)
	assert.Equal(t, []string{DefaultOpenSearchAddress}, cfg.OpenSearch.Addresses)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadInvalidConfig(t *testing.T) {
	yaml := `
server:
  mode: "production"
database:
  user: "svc"
`
	_, err := Load(writeConfig(t, yaml))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CREDMATRIX_DATABASE_HOST", "override.internal")
	t.Setenv("CREDMATRIX_LOG_LEVEL", "debug")

	cfg, err := Load(writeConfig(t, validConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, "override.internal", cfg.Database.Host)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CREDMATRIX_DATABASE_USER", "svc")
	t.Setenv("CREDMATRIX_MINIO_ACCESS_KEY", "key")
	t.Setenv("CREDMATRIX_MINIO_SECRET_KEY", "secret")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "svc", cfg.Database.User)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
}

func TestMustLoadPanicsOnError(t *testing.T) {
	assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "nope.yaml")) })
}

func TestWatchInvokesCallbackOnChange(t *testing.T) {
	path := writeConfig(t, validConfigYAML)

	changed := make(chan *Config, 1)
	Watch(path, func(cfg *Config) {
		select {
		case changed <- cfg:
		default:
		}
	})

	updated := validConfigYAML + "\nworker:\n  concurrency: 3\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o600))

	select {
	case cfg := <-changed:
		assert.Equal(t, 3, cfg.Worker.Concurrency)
	case <-time.After(5 * time.Second):
		t.Fatal("config change was not observed")
	}
}
