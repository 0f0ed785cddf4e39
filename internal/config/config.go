package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	DBDriver   string `env:"DB_DRIVER,default=sqlite"`
	DBDSN      string `env:"DB_DSN,default=logbook.db"`
	ServerPort string `env:"SERVER_PORT,default=8080"`
	GinMode    string `env:"GIN_MODE,default=release"`

	SessionIdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT,default=15m"`
	SessionSweep       time.Duration `env:"SESSION_SWEEP_INTERVAL,default=1m"`
	SessionStore       string        `env:"SESSION_STORE,default=memory"` // memory | redis
	RedisAddr          string        `env:"REDIS_ADDR,default=127.0.0.1:6379"`
	RedisPassword      string        `env:"REDIS_PASSWORD"`
	SessionSecret      string        `env:"SESSION_SECRET"`
	CookieSecure       bool          `env:"COOKIE_SECURE,default=false"` // true за TLS

	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:5173"`
	SeedFile       string   `env:"SEED_FILE"`
	LogLevel       string   `env:"LOG_LEVEL,default=info"`
}

// Load читает .env (если есть) и переменные окружения.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.DBDriver)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("DB_DSN is not set")
	}
	switch c.SessionStore {
	case "memory", "redis":
	default:
		return fmt.Errorf("SESSION_STORE must be memory or redis, got %q", c.SessionStore)
	}
	if c.SessionIdleTimeout <= 0 {
		return fmt.Errorf("SESSION_IDLE_TIMEOUT must be positive")
	}
	if c.SessionSweep <= 0 {
		return fmt.Errorf("SESSION_SWEEP_INTERVAL must be positive")
	}
	return nil
}
