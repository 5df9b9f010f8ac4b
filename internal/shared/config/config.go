// Package config loads API settings from the environment, with optional .env files for local runs.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"resume-builder/internal/shared/telemetry"
)

const (
	EnvDev        = "dev"
	EnvLocal      = "local"
	EnvStaging    = "staging"
	EnvProduction = "production"
)

// Config holds the API process settings.
type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	Env             string        `env:"ENV" envDefault:"dev"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	DatabaseURL     string        `env:"DATABASE_URL"`
	JWTSecret       string        `env:"JWT_SECRET"`
	CORSAllowOrigin []string      `env:"CORS_ALLOW_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`
	DefaultPlan     string        `env:"DEFAULT_PLAN" envDefault:"Starter"`
	ResumeLimit     int           `env:"RESUME_LIMIT" envDefault:"3"`
	SaveRate        float64       `env:"SAVE_RATE_PER_SEC" envDefault:"2"`
	SaveBurst       int           `env:"SAVE_BURST" envDefault:"10"`
	ReadRate        float64       `env:"READ_RATE_PER_SEC"`
	ReadBurst       int           `env:"READ_BURST"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads .env files when present, then the process environment.
// Parse failures are logged and leave the affected fields at their defaults.
func Load() Config {
	_ = godotenv.Load(".env", "cmd/.env")

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		telemetry.Warn("config.parse_failed", map[string]any{"err": err})
	}
	cfg = Normalize(cfg)
	telemetry.SetLevel(telemetry.ParseLevel(cfg.LogLevel))
	return cfg
}

// Normalize canonicalizes the environment name and fills zero values.
func Normalize(cfg Config) Config {
	cfg.Env = canonicalEnv(cfg.Env)
	cfg.CORSAllowOrigin = compact(cfg.CORSAllowOrigin)
	if strings.TrimSpace(cfg.Port) == "" {
		cfg.Port = "8080"
	}
	if strings.TrimSpace(cfg.DefaultPlan) == "" {
		cfg.DefaultPlan = "Starter"
	}
	if cfg.ResumeLimit <= 0 {
		cfg.ResumeLimit = 3
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	return cfg
}

// Validate reports settings a deployed environment cannot run without.
func (c Config) Validate() error {
	if c.DevLike() {
		return nil
	}
	var errs []error
	if strings.TrimSpace(c.DatabaseURL) == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config for %s: %w", c.Env, errors.Join(errs...))
	}
	return nil
}

// DevLike reports whether in-memory fallbacks and dev routes are allowed.
func (c Config) DevLike() bool {
	return c.Env == EnvDev || c.Env == EnvLocal
}

func compact(raw []string) []string {
	out := raw[:0:0]
	for _, p := range raw {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func canonicalEnv(raw string) string {
	switch v := strings.ToLower(strings.TrimSpace(raw)); v {
	case "production", "prod":
		return EnvProduction
	case EnvStaging, EnvLocal:
		return v
	default:
		return EnvDev
	}
}
