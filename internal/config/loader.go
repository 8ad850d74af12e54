package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all platform settings.
const envPrefix = "CREDMATRIX"

// newViper builds a pre-configured Viper instance: YAML file type,
// CREDMATRIX_ env prefix, automatic env binding, and a key replacer that
// maps "." to "_" so that nested keys like "database.host" resolve to
// "CREDMATRIX_DATABASE_HOST".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// Load reads the YAML file at configPath, merges any CREDMATRIX_* environment
// variable overrides, applies defaults for unset fields, and validates the
// result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from CREDMATRIX_* environment
// variables, with no config file required. This is the preferred loading
// strategy for containerised deployments.
func LoadFromEnv() (*Config, error) {
	v := newViper()
	registerKeys(v)
	return unmarshalAndFinalize(v)
}

// registerKeys declares every settable key so AutomaticEnv lookups reach
// Unmarshal even when no config file supplies the key.
func registerKeys(v *viper.Viper) {
	for _, key := range []string{
		"server.port", "server.mode", "server.grpc_health_port",
		"server.read_timeout", "server.write_timeout", "server.max_body_size",
		"server.shutdown_timeout",
		"database.host", "database.port", "database.user", "database.password",
		"database.db_name", "database.ssl_mode", "database.max_conns",
		"database.min_conns", "database.conn_max_lifetime",
		"database.conn_max_idle_time", "database.migration_path",
		"redis.addr", "redis.password", "redis.db", "redis.pool_size",
		"redis.min_idle_conns", "redis.dial_timeout", "redis.read_timeout",
		"redis.write_timeout", "redis.key_prefix",
		"kafka.brokers", "kafka.group_id", "kafka.topic_prefix",
		"kafka.producer_retries", "kafka.batch_timeout", "kafka.min_bytes",
		"kafka.max_bytes",
		"minio.endpoint", "minio.access_key", "minio.secret_key",
		"minio.bucket", "minio.reports_bucket", "minio.use_ssl",
		"minio.presign_expiry",
		"opensearch.addresses", "opensearch.user", "opensearch.password",
		"opensearch.insecure_skip_verify", "opensearch.index_prefix",
		"worker.concurrency", "worker.max_retries", "worker.retry_backoff",
		"worker.commit_interval",
		"analytics.cache_ttl",
		"log.level", "log.format", "log.output", "log.enable_caller",
		"log.enable_stacktrace",
	} {
		v.SetDefault(key, nil)
	}
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch monitors configPath for changes and invokes onChange with the newly
// parsed Config whenever the file is modified on disk. It is intended for
// hot-reloading non-critical settings such as log level; callers are
// responsible for applying only the safe subset of changes at runtime.
//
// Watch is non-blocking; the watching goroutine is managed by viper. If a
// changed file fails to parse or validate, onChange is not called.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)

	// Initial read; errors are ignored here, callers should Load first.
	_ = v.ReadInConfig()

	v.WatchConfig()
	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
}

// MustLoad is a convenience wrapper around Load that panics on any error.
// Intended for main(), where a config-load failure is always fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
