package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "local", cfg.Media.Backend)
	assert.Equal(t, 6, cfg.ShortLinks.CodeLength)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.NotEmpty(t, cfg.Auth.JWTSecret)
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("FOODGRAM_SERVER_PORT", "9000")
	t.Setenv("FOODGRAM_DATABASE_DRIVER", "sqlite")
	t.Setenv("FOODGRAM_DATABASE_DSN", "file:test.db")
	t.Setenv("FOODGRAM_AUTH_JWT_SECRET", "s3cret")
	t.Setenv("FOODGRAM_SERVER_ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file:test.db", cfg.Database.DSN)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("server:\n  port: 8100\nshortlinks:\n  code_length: 8\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, 8100, cfg.Server.Port)
	assert.Equal(t, 8, cfg.ShortLinks.CodeLength)
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	t.Setenv("FOODGRAM_DATABASE_DRIVER", "mysql")
	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}

func TestValidateRequiresSecretInProduction(t *testing.T) {
	t.Setenv("FOODGRAM_ENVIRONMENT", "production")
	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}
