package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ADDR", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("RESET_DELAY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 2*time.Second, cfg.ResetDelay)
	assert.Contains(t, cfg.DatabaseURL, "dbname=auction")
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ADDR", ":9000")
	t.Setenv("DATABASE_URL", "host=db port=5432 user=u dbname=x")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RESET_DELAY", "500ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "host=db port=5432 user=u dbname=x", cfg.DatabaseURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 500*time.Millisecond, cfg.ResetDelay)
}

func TestLoadRejectsBadResetDelay(t *testing.T) {
	t.Setenv("RESET_DELAY", "soon")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsNonPositiveResetDelay(t *testing.T) {
	t.Setenv("RESET_DELAY", "-1s")
	_, err := Load()
	assert.Error(t, err)
}
