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

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 8, cfg.PoolLanes)
	assert.Equal(t, 3, cfg.ClassroomRooms)
	assert.Equal(t, time.Minute, cfg.RecomputeInterval)
	assert.Equal(t, "Asia/Manila", cfg.Location.String())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("POOL_LANES", "6")
	t.Setenv("RECOMPUTE_INTERVAL", "30s")
	t.Setenv("FACILITY_TZ", "UTC")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.PoolLanes)
	assert.Equal(t, 30*time.Second, cfg.RecomputeInterval)
	assert.Equal(t, time.UTC, cfg.Location)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("POOL_LANES", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownTimeZone(t *testing.T) {
	t.Setenv("FACILITY_TZ", "Mars/Olympus")

	_, err := Load()
	assert.Error(t, err)
}
