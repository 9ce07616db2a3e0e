package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pushagent/internal/types"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Environment)
	assert.Equal(t, "push-agent", cfg.Service)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "http://localhost:3000", cfg.Backend.DefaultBaseURL)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "NotivIQ-Agent/1.0", cfg.Backend.UserAgent)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "staging")
	t.Setenv("API_BASE_URL", "https://api.staging.test")
	t.Setenv("AGENT_LAUNCH_URL", "https://cdn.test/agent.js?api=https://api.override.test/")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "https://api.override.test", cfg.ReportBaseURL(),
		"launch-URL override must win over the compiled default")
}

func TestLoadConfig_InvalidEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "production-ish")

	_, err := LoadConfig()
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeConfigInvalid, appErr.Code)
}

func TestLoadConfig_InvalidBridgeURL(t *testing.T) {
	t.Setenv("PLATFORM_BRIDGE_URL", "not-a-url")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestConfig_ReportBaseURL_CompiledDefault(t *testing.T) {
	cfg := &Config{}
	cfg.Backend.DefaultBaseURL = "http://localhost:3000/"
	assert.Equal(t, "http://localhost:3000", cfg.ReportBaseURL())
}
