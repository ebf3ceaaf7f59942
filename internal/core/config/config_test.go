package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// clearEnv removes every variable LoadConfig reads so the test sees the
// fallbacks, not whatever the host shell exports. t.Setenv registers the
// restore; Unsetenv then clears the value for the test body.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "DATABASE_URL", "WEBHOOK_URL", "WEBHOOK_SECRET",
		"ENV", "SYSTEM_ACCOUNT_ID", "RECONCILE_INTERVAL", "RECONCILE_MAX_AGE",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg := LoadConfig()

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, time.Minute, cfg.ReconcileInterval)
	assert.Equal(t, 5*time.Minute, cfg.ReconcileMaxAge)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DATABASE_URL", "postgres://localhost/ledger")
	t.Setenv("SYSTEM_ACCOUNT_ID", "f4b7f6a0-0000-0000-0000-000000000001")
	t.Setenv("RECONCILE_INTERVAL", "30s")
	t.Setenv("RECONCILE_MAX_AGE", "10m")

	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres://localhost/ledger", cfg.DatabaseURL)
	assert.Equal(t, "f4b7f6a0-0000-0000-0000-000000000001", cfg.SystemAccountID)
	assert.Equal(t, 30*time.Second, cfg.ReconcileInterval)
	assert.Equal(t, 10*time.Minute, cfg.ReconcileMaxAge)
}

func TestLoadConfigBadDuration(t *testing.T) {
	t.Setenv("RECONCILE_INTERVAL", "not-a-duration")

	cfg := LoadConfig()
	assert.Equal(t, time.Minute, cfg.ReconcileInterval)
}
