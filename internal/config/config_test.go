package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("DOCUMENTSTORE_PATH", "/srv/archive")
	t.Setenv("THUMB_WIDTH", "320")
	t.Setenv("THUMB_ROWS", "2")
	t.Setenv("THUMB_COLUMNS", "5")
	t.Setenv("JWT_TTL", "1h")
	t.Setenv("TZ", "Europe/Berlin")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, "/srv/archive", cfg.Store.Root)
	assert.Equal(t, 320, cfg.Store.ThumbWidth)
	assert.Equal(t, 10, cfg.Store.PageSize())
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "Europe/Berlin", cfg.TimeZone.String())
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("THUMB_WIDTH", "")
	t.Setenv("TZ", "Not/AZone")
	t.Setenv("BODY_LIMIT_MB", "lots")

	cfg := Load()

	assert.Equal(t, "fs", cfg.Store.Backend)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 200, cfg.Store.ThumbWidth)
	assert.Equal(t, time.UTC, cfg.TimeZone)
	assert.Equal(t, 64, cfg.BodyLimitMB)
}

func TestPageSizeFallback(t *testing.T) {
	assert.Equal(t, 12, StoreConfig{}.PageSize())
	assert.Equal(t, 6, StoreConfig{ThumbRows: 2, ThumbColumns: 3}.PageSize())
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestGetEnvDuration(t *testing.T) {
	key := "TEST_DURATION_VAR"

	t.Setenv(key, "90s")
	assert.Equal(t, 90*time.Second, getEnvDuration(key, time.Minute))

	t.Setenv(key, "soon")
	assert.Equal(t, time.Minute, getEnvDuration(key, time.Minute))
}
