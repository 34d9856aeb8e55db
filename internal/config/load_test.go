package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("NWM_DATABASE_URL", "postgres://localhost:5432/nwm_test")
	t.Setenv("NWM_SERVER_PORT", "9090")
	t.Setenv("NWM_SERVER_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "postgres://localhost:5432/nwm_test", cfg.Database.URL)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("NWM_DATABASE_URL", "postgres://localhost:5432/nwm_test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, int64(64*1024), cfg.Request.MaxBodyBytes)
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("NWM_DATABASE_URL", "postgres://localhost:5432/nwm_test")
	t.Setenv("NWM_SERVER_LOG_LEVEL", "verbose")

	_, err := Load()
	assert.Error(t, err)
}
