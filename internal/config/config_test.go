package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mayday.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromPath_MergesOverDefaults(t *testing.T) {
	path := writeConfig(t, `
appEnv: production
port: 9000
jwtSecret: a-very-long-production-secret
tokenTTL: 2h
geocoding:
  enabled: false
rateLimit:
  rps: 2.5
  burst: 4
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.AppEnv)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.False(t, cfg.Geocoding.Enabled)
	assert.Equal(t, 2.5, cfg.RateLimit.RPS)
	assert.Equal(t, 4, cfg.RateLimit.Burst)
	// untouched defaults survive
	assert.Equal(t, "mayday.db", cfg.Database.SQLitePath)
	assert.False(t, cfg.UsesPostgres())
}

func TestLoadFromPath_RejectsInvalidValues(t *testing.T) {
	path := writeConfig(t, `
port: 70000
jwtSecret: short
`)

	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestLoadFromPath_MissingFile(t *testing.T) {
	_, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("APP_ENV", "test")
	t.Setenv("PORT", "9191")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PG_HOST", "db.internal")
	t.Setenv("PG_PORT", "6543")
	t.Setenv("PG_USER", "mayday")
	t.Setenv("PG_PASSWORD", "pw")
	t.Setenv("PG_DB", "coordinator")
	t.Setenv("REDIS_HOST", "cache.internal")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("RECONCILE_INTERVAL", "1m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Port)
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	assert.Equal(t, "postgres://mayday:pw@db.internal:6543/coordinator?sslmode=disable", cfg.Database.URL)
	assert.True(t, cfg.UsesPostgres())
	assert.True(t, cfg.RedisEnabled())
	assert.Equal(t, "cache.internal:6379", cfg.RedisAddr())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, time.Minute, cfg.ReconcileInterval)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_InvalidNumber(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PORT", "eighty")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid PORT")
}
