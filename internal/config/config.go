package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// Config is the process configuration, built once in main and passed to constructors.
// Sources in increasing priority: defaults, the YAML file named by CONFIG_FILE, environment variables.
type Config struct {
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"` // dev, test, prod
	DatabaseURL string `yaml:"database_url"`
	TablePrefix string `yaml:"table_prefix"`
	AutoMigrate bool   `yaml:"auto_migrate"`

	// Token signing
	SecretKey                string `yaml:"secret_key"`
	AccessTokenExpireMinutes int    `yaml:"access_token_expire_minutes"`
	RefreshTokenExpireDays   int    `yaml:"refresh_token_expire_days"`
	BcryptCost               int    `yaml:"bcrypt_cost"`
	CookieSecure             *bool  `yaml:"cookie_secure"` // nil = secure everywhere but dev

	// HTTP
	CORSOrigins        string `yaml:"cors_origins"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"` // 0 disables rate limiting

	// Logging
	LogLevel    string `yaml:"log_level"` // empty = debug in dev, info elsewhere
	LogDir      string `yaml:"log_dir"`   // empty = stdout only
	LogMaxFiles int    `yaml:"log_max_files"`
}

// Load builds the configuration. It does not validate; call Validate before use.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                     "8080",
		Environment:              "dev",
		AccessTokenExpireMinutes: 15,
		RefreshTokenExpireDays:   7,
		BcryptCost:               DefaultBcryptCost,
		CORSOrigins:              "http://localhost:3000",
		RateLimitPerMinute:       60,
		LogMaxFiles:              10,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.TablePrefix = getEnv("TABLE_PREFIX", cfg.TablePrefix)
	if cfg.TablePrefix == "" {
		cfg.TablePrefix = getTablePrefix(cfg.Environment)
	}
	cfg.AutoMigrate = getEnvBool("AUTO_MIGRATE", cfg.AutoMigrate)

	cfg.SecretKey = getEnv("SECRET_KEY", cfg.SecretKey)
	cfg.AccessTokenExpireMinutes = getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", cfg.AccessTokenExpireMinutes)
	cfg.RefreshTokenExpireDays = getEnvInt("REFRESH_TOKEN_EXPIRE_DAYS", cfg.RefreshTokenExpireDays)
	cfg.BcryptCost = getEnvInt("BCRYPT_COST", cfg.BcryptCost)
	if value := os.Getenv("COOKIE_SECURE"); value != "" {
		secure := value == "true"
		cfg.CookieSecure = &secure
	}

	cfg.CORSOrigins = getEnv("CORS_ORIGINS", cfg.CORSOrigins)
	cfg.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", cfg.RateLimitPerMinute)

	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogDir = getEnv("LOG_DIR", cfg.LogDir)
	cfg.LogMaxFiles = getEnvInt("LOG_MAX_FILES", cfg.LogMaxFiles)

	return cfg, nil
}

// Validate reports every invalid field at once
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Environment, validation.Required, validation.In("dev", "test", "prod")),
		validation.Field(&c.Port, validation.Required, is.Port),
		validation.Field(&c.DatabaseURL, validation.When(c.Environment == "prod", validation.Required)),
		validation.Field(&c.SecretKey, validation.Required, validation.Length(MinSecretKeyLength, 0)),
		validation.Field(&c.AccessTokenExpireMinutes, validation.Required, validation.Min(1)),
		validation.Field(&c.RefreshTokenExpireDays, validation.Required, validation.Min(1)),
		validation.Field(&c.BcryptCost, validation.Required, validation.Min(bcrypt.MinCost), validation.Max(bcrypt.MaxCost)),
		validation.Field(&c.RateLimitPerMinute, validation.Min(0)),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
	)
}

// AccessTokenTTL is the lifetime of access tokens
func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}

// RefreshTokenTTL is the lifetime of refresh tokens and of the refresh cookie
func (c *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenExpireDays) * 24 * time.Hour
}

// SecureCookies reports whether cookies carry the Secure attribute
func (c *Config) SecureCookies() bool {
	if c.CookieSecure != nil {
		return *c.CookieSecure
	}
	return c.Environment != "dev"
}

// AllowedOrigins splits CORSOrigins into trimmed, non-empty entries
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.CORSOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// SlogLevel resolves LogLevel, defaulting to debug in dev and info elsewhere
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	if c.Environment == "dev" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// loadFile decodes a YAML file over cfg; keys absent from the file keep their current value
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	switch env {
	case "prod":
		return ""
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
