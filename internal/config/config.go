package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env           string        `mapstructure:"APP_ENV"`
	Port          string        `mapstructure:"PORT"`
	DatabaseURL   string        `mapstructure:"DATABASE_URL"`
	SessionSecret string        `mapstructure:"SESSION_SECRET"`
	IndexCacheTTL time.Duration `mapstructure:"INDEX_CACHE_TTL"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// env vars already set take precedence over .env
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=agora port=5432 sslmode=disable")
	v.SetDefault("SESSION_SECRET", "secret_key_change_me")
	v.SetDefault("INDEX_CACHE_TTL", "30s")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Env == "prod" && c.SessionSecret == "secret_key_change_me" {
		return fmt.Errorf("SESSION_SECRET must be set in prod")
	}
	return nil
}
