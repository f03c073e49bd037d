package httpapi

import (
	"time"

	"vidsphere/internal/httpapi/util"
	"vidsphere/internal/pkg/errors"
)

// Config is the tracker's runtime configuration.
type Config struct {
	HTTPPort        string
	DatabaseURL     string
	RedisAddr       string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

func LoadConfig() (Config, error) {
	cfg := Config{
		HTTPPort:    util.Env("HTTP_PORT", "8080"),
		DatabaseURL: util.Env("DATABASE_URL", ""),
		RedisAddr:   util.Env("REDIS_ADDR", ""),
		AllowedOrigins: util.EnvCSV("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:5173",
		}),
		ShutdownTimeout: util.EnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.ValidationField("DATABASE_URL", "DATABASE_URL is required")
	}
	return cfg, nil
}
