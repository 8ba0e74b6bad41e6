package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/adocavo_test")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoadAppliesDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, 24*7, cfg.Auth.ExpiryHours)
	assert.NotEmpty(t, cfg.RateLimit.Rules)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_HOST", "cache.internal")

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server": {"port": "3000"},
		"redis": {"host": "file-host", "port": "6380"}
	}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "cache.internal:6380", cfg.Redis.Addr())
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "test-secret")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/adocavo_test")
	t.Setenv("JWT_SECRET", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadRejectsNonPositiveRule(t *testing.T) {
	setRequiredEnv(t)

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"rate_limit": {"rules": [{"route_key": "api", "tier": "free", "limit": 0, "window_seconds": 60}]}
	}`), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestDefaultRulesThrottleEveryTier(t *testing.T) {
	byTier := make(map[string]bool)
	for _, r := range DefaultRules() {
		assert.Positive(t, r.Limit, "rule %s/%s", r.RouteKey, r.Tier)
		assert.Positive(t, r.WindowSeconds, "rule %s/%s", r.RouteKey, r.Tier)
		byTier[r.Tier] = true
	}
	for _, tier := range []string{"anonymous", "free", "pro", "admin"} {
		assert.True(t, byTier[tier], "tier %s has no quota", tier)
	}
}
