package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"CONFIG_FILE", "ENVIRONMENT", "PORT", "DATABASE_URL", "TABLE_PREFIX", "AUTO_MIGRATE",
		"SECRET_KEY", "ACCESS_TOKEN_EXPIRE_MINUTES", "REFRESH_TOKEN_EXPIRE_DAYS", "BCRYPT_COST",
		"COOKIE_SECURE", "CORS_ORIGINS", "RATE_LIMIT_PER_MINUTE", "LOG_LEVEL", "LOG_DIR", "LOG_MAX_FILES",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, "dev_", cfg.TablePrefix)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL())
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL())
	assert.Equal(t, DefaultBcryptCost, cfg.BcryptCost)
	assert.False(t, cfg.SecureCookies())
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "vault.yaml")
	content := strings.Join([]string{
		"environment: prod",
		"port: \"9000\"",
		"secret_key: from-file-secret-that-is-long-enough",
		"access_token_expire_minutes: 30",
		"cors_origins: https://a.example, https://b.example",
		"",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9100")
	t.Setenv("COOKIE_SECURE", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Environment)
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "", cfg.TablePrefix)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL())
	assert.False(t, cfg.SecureCookies())
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins())
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:                     "8080",
			Environment:              "dev",
			SecretKey:                testSecret,
			AccessTokenExpireMinutes: 15,
			RefreshTokenExpireDays:   7,
			BcryptCost:               DefaultBcryptCost,
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing secret", func(c *Config) { c.SecretKey = "" }},
		{"short secret", func(c *Config) { c.SecretKey = "short" }},
		{"unknown environment", func(c *Config) { c.Environment = "staging" }},
		{"bad port", func(c *Config) { c.Port = "http" }},
		{"zero access ttl", func(c *Config) { c.AccessTokenExpireMinutes = 0 }},
		{"bcrypt cost too low", func(c *Config) { c.BcryptCost = 2 }},
		{"prod without database", func(c *Config) { c.Environment = "prod" }},
		{"unknown log level", func(c *Config) { c.LogLevel = "trace" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSetupLogFileKeepsNewest(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"vault-2020-01-01T00-00-00.000.log", "vault-2020-01-02T00-00-00.000.log"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}

	f, err := SetupLogFile(dir, 2)
	require.NoError(t, err)
	defer f.Close()

	files, err := filepath.Glob(filepath.Join(dir, "vault-*.log"))
	require.NoError(t, err)
	assert.Len(t, files, 2)
	assert.NotContains(t, files, filepath.Join(dir, "vault-2020-01-01T00-00-00.000.log"))
}
