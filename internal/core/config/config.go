package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	DatabaseURL     string
	WebhookURL      string
	WebhookSecret   string
	Env             string
	SystemAccountID string

	// Reconciler settings: how often to sweep, and how old a PENDING
	// transaction with no postings must be before it is resolved to FAILED.
	ReconcileInterval time.Duration
	ReconcileMaxAge   time.Duration
}

// LoadConfig reads .env file and returns a Config struct
func LoadConfig() *Config {
	// Try loading .env file (it might not exist in Production, which is fine)
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, relying on System Env Variables")
	}

	return &Config{
		Port:              getEnv("PORT", "3000"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		WebhookURL:        getEnv("WEBHOOK_URL", ""),
		WebhookSecret:     getEnv("WEBHOOK_SECRET", ""),
		Env:               getEnv("ENV", "development"),
		SystemAccountID:   getEnv("SYSTEM_ACCOUNT_ID", ""),
		ReconcileInterval: getDuration("RECONCILE_INTERVAL", time.Minute),
		ReconcileMaxAge:   getDuration("RECONCILE_MAX_AGE", 5*time.Minute),
	}
}

// Helper to get env with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("Invalid duration in env, using fallback", "key", key, "value", value)
		return fallback
	}
	return d
}
