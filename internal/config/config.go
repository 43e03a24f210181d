// Package config reads server and CLI settings from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// DevTokenSecret is the signing secret used when SESSION_TOKEN_SECRET is unset.
const DevTokenSecret = "dev_secret_change_me"

// Config holds every runtime setting.
type Config struct {
	Port           string        `env:"PORT"                 envDefault:"5175"`
	LogLevel       string        `env:"LOG_LEVEL"            envDefault:"info"`
	StorageBackend string        `env:"STORAGE_BACKEND"      envDefault:"memory"`
	DatabasePath   string        `env:"DATABASE_PATH"        envDefault:"./data/wordchain.db"`
	WordsFile      string        `env:"WORDS_FILE"`
	TokenSecret    string        `env:"SESSION_TOKEN_SECRET" envDefault:"dev_secret_change_me"`
	TokenTTL       time.Duration `env:"SESSION_TOKEN_TTL"    envDefault:"24h"`
	ClientOrigin   string        `env:"CLIENT_ORIGIN"        envDefault:"http://localhost:5173"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"      envDefault:"10s"`
	TimeLimit      time.Duration `env:"TIME_LIMIT"           envDefault:"10s"`
}

// Load reads .env (if present) and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(cfg.StorageBackend))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	switch c.StorageBackend {
	case BackendMemory, BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND: unknown backend %q", c.StorageBackend))
	}
	if c.StorageBackend == BackendSQLite && strings.TrimSpace(c.DatabasePath) == "" {
		errs = append(errs, errors.New("DATABASE_PATH: required for sqlite backend"))
	}
	if strings.TrimSpace(c.Port) == "" {
		errs = append(errs, errors.New("PORT: must not be empty"))
	}
	if c.TokenSecret == "" {
		errs = append(errs, errors.New("SESSION_TOKEN_SECRET: must not be empty"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TOKEN_TTL: must be positive"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT: must be positive"))
	}
	if c.TimeLimit <= 0 {
		errs = append(errs, errors.New("TIME_LIMIT: must be positive"))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	return errors.Join(errs...)
}

// Level returns the configured zerolog level, defaulting to info.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// Addr is the listen address.
func (c Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
