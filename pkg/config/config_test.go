package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "/workintech", cfg.ContextPath)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.False(t, cfg.ResetAllowed())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ENV", EnvTest)
	t.Setenv("PORT", "8181")
	t.Setenv("CONTEXT_PATH", "api/")
	t.Setenv("STORE_DRIVER", "POSTGRES")
	t.Setenv("CACHE_TTL", "not-a-duration")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8181, cfg.Port)
	assert.Equal(t, "/api", cfg.ContextPath)
	assert.Equal(t, StorePostgres, cfg.StoreDriver)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.ResetAllowed())
}

func TestLoadRejectsUnknownStore(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRequiresSecretWhenAuthEnabled(t *testing.T) {
	t.Setenv("ENABLE_AUTH", "true")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("JWT_SECRET", "s3cret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Auth.Enabled)
}

func TestNormalizePathEmpty(t *testing.T) {
	assert.Equal(t, "", normalizePath("  /  "))
}
