package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "maploader/1.0", cfg.UserAgent)
	assert.Equal(t, 5*time.Second, cfg.Transport.DialTimeout)
	assert.Equal(t, 15*time.Second, cfg.Transport.ResponseHeaderTimeout)
	assert.Equal(t, 8, cfg.Transport.MaxIdleConnsPerHost)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Redis.TTL)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Empty(t, cfg.Metrics.Addr)
}

func TestNewFromEnvironment(t *testing.T) {
	t.Setenv("MAPLOADER_USER_AGENT", "sdk-test/2.0")
	t.Setenv("MAPLOADER_TRANSPORT_DIAL_TIMEOUT", "2s")
	t.Setenv("MAPLOADER_REDIS_ENABLED", "true")
	t.Setenv("MAPLOADER_REDIS_ADDR", "cache.internal:6379")
	t.Setenv("MAPLOADER_LOGGER_LEVEL", "debug")
	t.Setenv("MAPLOADER_METRICS_ADDR", ":9102")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "sdk-test/2.0", cfg.UserAgent)
	assert.Equal(t, 2*time.Second, cfg.Transport.DialTimeout)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "cache.internal:6379", cfg.Redis.Addr)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, ":9102", cfg.Metrics.Addr)
}

func TestNewRejectsMalformedDuration(t *testing.T) {
	t.Setenv("MAPLOADER_TRANSPORT_DIAL_TIMEOUT", "soon")

	_, err := New()
	assert.Error(t, err)
}
