package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("SESSION_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, 2, cfg.Store.RetryAttempts)
	assert.Equal(t, 50*time.Millisecond, cfg.Store.RetryBackoff)
	assert.Equal(t, 30*time.Second, cfg.Store.BreakerOpenTimeout)
	assert.Equal(t, 10, cfg.LoginRateLimit)
	assert.NotEmpty(t, cfg.SessionSecret)
}

func TestLoadRejectsBadInteger(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE_RETRY_ATTEMPTS", "many")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid STORE_RETRY_ATTEMPTS")
}

func TestLoadRequiresSecretInProduction(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("SESSION_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestParseCSVEnv(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", " http://a.test , ,http://b.test")
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, parseCSVEnv("CORS_ALLOWED_ORIGINS", nil))
}
