package config

import (
	"log/slog"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "DATABASE_URL", "MATCH_CLOCK_ENABLED", "LOG_LEVEL", "CORS_ALLOWED_ORIGINS", "S3_BUCKET"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected port 8080, got %s", cfg.Port)
	}
	if cfg.Database.Driver != "postgres" {
		t.Fatalf("expected postgres driver, got %s", cfg.Database.Driver)
	}
	if !cfg.MatchClockEnabled {
		t.Fatalf("expected match clock enabled by default")
	}
	if cfg.Storage.Enabled() {
		t.Fatalf("expected storage disabled without a bucket")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("MATCH_CLOCK_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected port 9090, got %s", cfg.Port)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.URL != "pelada.db" {
		t.Fatalf("expected sqlite defaults, got %s %s", cfg.Database.Driver, cfg.Database.URL)
	}
	if cfg.Database.MaxOpenConns != Default().Database.MaxOpenConns {
		t.Fatalf("expected invalid max open conns to be ignored, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.MatchClockEnabled {
		t.Fatalf("expected match clock disabled")
	}
	if cfg.LogLevel != slog.LevelDebug || !cfg.Database.Debug {
		t.Fatalf("expected debug logging, got %v", cfg.LogLevel)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %d", len(cfg.CORSAllowedOrigins))
	}
}

func TestOpenDatabaseRejectsUnknownDriver(t *testing.T) {
	if _, err := OpenDatabase(DatabaseConfig{Driver: "oracle"}); err == nil {
		t.Fatalf("expected an error for an unknown driver")
	}
}
