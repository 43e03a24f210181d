package config

import (
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("expected 24h token ttl, got %s", cfg.TokenTTL)
	}
	if cfg.TimeLimit != 10*time.Second {
		t.Fatalf("expected 10s time limit, got %s", cfg.TimeLimit)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Fatalf("expected 10s request timeout, got %s", cfg.RequestTimeout)
	}
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("STORAGE_BACKEND", " SQLite ")
	t.Setenv("DATABASE_PATH", "/tmp/x.db")
	t.Setenv("TIME_LIMIT", "30s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.StorageBackend != BackendSQLite {
		t.Fatalf("expected sqlite backend, got %q", cfg.StorageBackend)
	}
	if cfg.Addr() != ":8080" {
		t.Fatalf("expected :8080, got %q", cfg.Addr())
	}
	if cfg.TimeLimit != 30*time.Second {
		t.Fatalf("expected 30s, got %s", cfg.TimeLimit)
	}
	if cfg.Level() != zerolog.DebugLevel {
		t.Fatalf("expected debug level, got %s", cfg.Level())
	}
}

func TestParseError(t *testing.T) {
	t.Setenv("SESSION_TOKEN_TTL", "not-a-duration")

	_, err := Parse()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		Port:           "5175",
		LogLevel:       "info",
		StorageBackend: BackendMemory,
		TokenSecret:    DevTokenSecret,
		TokenTTL:       time.Hour,
		RequestTimeout: time.Second,
		TimeLimit:      time.Second,
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown backend", func(c *Config) { c.StorageBackend = "postgres" }, "STORAGE_BACKEND"},
		{"sqlite without path", func(c *Config) { c.StorageBackend = BackendSQLite; c.DatabasePath = " " }, "DATABASE_PATH"},
		{"zero time limit", func(c *Config) { c.TimeLimit = 0 }, "TIME_LIMIT"},
		{"negative ttl", func(c *Config) { c.TokenTTL = -time.Minute }, "SESSION_TOKEN_TTL"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "LOG_LEVEL"},
		{"empty secret", func(c *Config) { c.TokenSecret = "" }, "SESSION_TOKEN_SECRET"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %s, got %v", tt.want, err)
			}
		})
	}
}
