package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string   `mapstructure:"PORT"`
	Env            string   `mapstructure:"ENV"`
	BaseURL        string   `mapstructure:"BASE_URL"`
	DatabaseURL    string   `mapstructure:"DATABASE_URL"`
	DBMaxConns     int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns     int32    `mapstructure:"DB_MIN_CONNS"`
	RedisURL       string   `mapstructure:"REDIS_URL"`
	AMQPURL        string   `mapstructure:"AMQP_URL"`
	SessionSecret  string   `mapstructure:"SESSION_SECRET"`
	SessionTTL     int      `mapstructure:"SESSION_TTL_HOURS"`
	CacheTTL       int      `mapstructure:"CACHE_TTL_SECONDS"`
	CORSOrigins    []string `mapstructure:"CORS_ORIGINS"`
	BcryptCost     int      `mapstructure:"BCRYPT_COST"`
	InviteTTLHours int      `mapstructure:"INVITE_TTL_HOURS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("BASE_URL", "http://localhost:8000")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("SESSION_TTL_HOURS", 24)
	v.SetDefault("CACHE_TTL_SECONDS", 60)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("INVITE_TTL_HOURS", 168)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("BASE_URL")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("REDIS_URL")
	v.BindEnv("AMQP_URL")
	v.BindEnv("SESSION_SECRET")
	v.BindEnv("SESSION_TTL_HOURS")
	v.BindEnv("CACHE_TTL_SECONDS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("BCRYPT_COST")
	v.BindEnv("INVITE_TTL_HOURS")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// SessionTTLDuration returns the configured session lifetime.
func (c *Config) SessionTTLDuration() time.Duration {
	return time.Duration(c.SessionTTL) * time.Hour
}

// InviteTTLDuration returns the configured invitation lifetime (7 days by default).
func (c *Config) InviteTTLDuration() time.Duration {
	return time.Duration(c.InviteTTLHours) * time.Hour
}

// CacheTTLDuration returns the configured read-cache entry lifetime.
func (c *Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// Validate checks that the configuration is safe to run. Outside development
// a real SESSION_SECRET must be set so session cookies cannot be forged.
func (c *Config) Validate() error {
	if !c.IsDev() && c.SessionSecret == "" {
		return fmt.Errorf(
			"SESSION_SECRET is required when ENV=%q. "+
				"Refusing to start with forgeable session cookies", c.Env)
	}
	if c.SessionSecret != "" && len(c.SessionSecret) < 32 {
		return fmt.Errorf("SESSION_SECRET must be at least 32 bytes, got %d", len(c.SessionSecret))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}
	return nil
}
