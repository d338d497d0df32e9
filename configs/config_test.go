package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("RUNNER_MODE", "")
	t.Setenv("RETRY_MAX_ATTEMPTS", "")
	t.Setenv("R2_ACCOUNT_ID", "")
	t.Setenv("UPSTREAM_TIMEOUT", "")

	cfg := LoadConfig()

	assert.Equal(t, "stamp", cfg.Runner.Mode)
	assert.Equal(t, 5, cfg.Runner.MaxAttempts)
	assert.True(t, cfg.Runner.RetireOnSuccess)
	assert.Equal(t, 2*time.Minute, cfg.UpstreamTimeout)
	assert.False(t, cfg.R2.Enabled())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("RUNNER_MODE", "publish")
	t.Setenv("RUNNER_LEASE", "90s")
	t.Setenv("RUNNER_RETIRE_ON_SUCCESS", "false")
	t.Setenv("RUNNER_BATCH_SIZE", "not-a-number")

	cfg := LoadConfig()

	assert.Equal(t, "publish", cfg.Runner.Mode)
	assert.Equal(t, 90*time.Second, cfg.Runner.Lease)
	assert.False(t, cfg.Runner.RetireOnSuccess)
	assert.Equal(t, 100, cfg.Runner.BatchSize)
}

func TestRequire(t *testing.T) {
	require.NoError(t, Require("LOVABLE_API_KEY", "secret"))

	err := Require("LOVABLE_API_KEY", "")
	var missing *MissingKeyError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "LOVABLE_API_KEY", missing.Key)
	assert.EqualError(t, err, "LOVABLE_API_KEY not configured")
}
