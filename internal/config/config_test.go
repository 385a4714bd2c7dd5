package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"SERVER_PORT", "SESSION_TTL", "SESSION_BACKEND", "KAFKA_BROKERS", "ES_INDEX", "DATABASE_DRIVER"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, 3000, cfg.ServerPort)
	assert.Equal(t, ":3000", cfg.Addr())
	assert.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "memory", cfg.SessionBackend)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, "products", cfg.ESIndex)
	assert.Nil(t, cfg.KafkaBrokers)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "8081")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("KAFKA_BROKERS", "k1:9092, ,k2:9092")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := Load()
	assert.Equal(t, 8081, cfg.ServerPort)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, 0, cfg.RedisDB)
}

func TestMergeFile_OverlaysNonZeroValues(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "storefront.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server_port: 9000
session_ttl: 30m
session_backend: redis
redis_addr: localhost:6379
kafka_brokers: [a:9092, b:9092]
`), 0o600))

	base := Config{ServerPort: 3000, SessionBackend: "memory", LogLevel: "info", SessionTTL: time.Hour}
	cfg, err := MergeFile(base, path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.ServerPort)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "redis", cfg.SessionBackend)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestMergeFile_Errors(t *testing.T) {
	t.Parallel()

	_, err := MergeFile(Config{}, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("session_ttl: forever\n"), 0o600))
	_, err = MergeFile(Config{}, path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "ok postgres", cfg: Config{SessionSecret: "s", DatabaseURL: "postgres://x", SessionBackend: "memory"}},
		{name: "ok sqlite without url", cfg: Config{SessionSecret: "s", DatabaseDriver: "sqlite", SessionBackend: "memory"}},
		{name: "no secret", cfg: Config{DatabaseURL: "postgres://x", SessionBackend: "memory"}, wantErr: true},
		{name: "no db url", cfg: Config{SessionSecret: "s", SessionBackend: "memory"}, wantErr: true},
		{name: "redis without addr", cfg: Config{SessionSecret: "s", DatabaseURL: "x", SessionBackend: "redis"}, wantErr: true},
		{name: "unknown backend", cfg: Config{SessionSecret: "s", DatabaseURL: "x", SessionBackend: "file"}, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
