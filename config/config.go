package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               string
	Env                string
	LogLevel           slog.Level
	AppURL             string
	JWTSecret          string
	CORSAllowedOrigins []string
	MatchClockEnabled  bool
	Database           DatabaseConfig
	Storage            StorageConfig
}

type DatabaseConfig struct {
	Driver                 string
	URL                    string
	MaxOpenConns           int
	MaxIdleConns           int
	ConnMaxLifetimeSeconds int
	Debug                  bool
}

// StorageConfig describes an S3-compatible bucket used for player avatars.
// Uploads are disabled when Bucket is empty.
type StorageConfig struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	PublicBaseURL   string
}

func (s StorageConfig) Enabled() bool {
	return s.Bucket != "" && s.AccessKeyID != "" && s.SecretAccessKey != ""
}

// LoadDotEnv loads a .env file when present. Variables already set in the
// environment win.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

func Default() Config {
	return Config{
		Port:               "8080",
		Env:                "development",
		LogLevel:           slog.LevelInfo,
		AppURL:             "http://localhost:8080",
		CORSAllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		MatchClockEnabled:  true,
		Database: DatabaseConfig{
			Driver:                 "postgres",
			URL:                    "host=localhost user=postgres password=postgres dbname=pelada port=5432 sslmode=disable",
			MaxOpenConns:           20,
			MaxIdleConns:           10,
			ConnMaxLifetimeSeconds: 300,
		},
		Storage: StorageConfig{
			Region: "auto",
		},
	}
}

func Load() Config {
	cfg := Default()

	if raw := os.Getenv("PORT"); raw != "" {
		cfg.Port = raw
	}
	if raw := os.Getenv("APP_ENV"); raw != "" {
		cfg.Env = raw
	}
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		cfg.LogLevel = ParseLogLevel(raw)
	}
	if raw := os.Getenv("APP_URL"); raw != "" {
		cfg.AppURL = strings.TrimRight(raw, "/")
	}
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if raw := os.Getenv("CORS_ALLOWED_ORIGINS"); raw != "" {
		cfg.CORSAllowedOrigins = splitList(raw)
	}
	if raw := os.Getenv("MATCH_CLOCK_ENABLED"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.MatchClockEnabled = value
		}
	}

	if raw := os.Getenv("DB_DRIVER"); raw != "" {
		cfg.Database.Driver = strings.ToLower(raw)
	}
	if raw := os.Getenv("DATABASE_URL"); raw != "" {
		cfg.Database.URL = raw
	} else if cfg.Database.Driver == "sqlite" {
		cfg.Database.URL = "pelada.db"
	}
	if raw := os.Getenv("DB_MAX_OPEN_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.Database.MaxOpenConns = value
		}
	}
	if raw := os.Getenv("DB_MAX_IDLE_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.Database.MaxIdleConns = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_LIFETIME_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.Database.ConnMaxLifetimeSeconds = value
		}
	}
	cfg.Database.Debug = cfg.LogLevel <= slog.LevelDebug

	cfg.Storage.Endpoint = os.Getenv("S3_ENDPOINT")
	if raw := os.Getenv("S3_REGION"); raw != "" {
		cfg.Storage.Region = raw
	}
	cfg.Storage.AccessKeyID = os.Getenv("S3_ACCESS_KEY_ID")
	cfg.Storage.SecretAccessKey = os.Getenv("S3_SECRET_ACCESS_KEY")
	cfg.Storage.Bucket = os.Getenv("S3_BUCKET")
	cfg.Storage.PublicBaseURL = strings.TrimRight(os.Getenv("S3_PUBLIC_BASE_URL"), "/")

	return cfg
}

func ParseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
