package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	keys := []string{
		"INTAKE_WORKERS", "SNAPSHOT_ENABLED", "SNAPSHOT_INTERVAL_SECONDS",
		"SNAPSHOT_DATA_DIR", "PRICE_SCALE", "KAFKA_BROKERS", "KAFKA_INTAKE_TOPIC",
		"KAFKA_TRADE_TOPIC", "KAFKA_ORDER_TOPIC", "KAFKA_TICK_TOPIC",
		"KAFKA_ERROR_TOPIC", "KAFKA_GROUP_ID", "HTTP_LISTEN_ADDR", "MYSQL_DSN", "DEBUG",
	}
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.IntakeWorkers)
	assert.True(t, cfg.SnapshotEnabled)
	assert.Equal(t, 60, cfg.SnapshotIntervalSecond)
	assert.Equal(t, int32(2), cfg.PriceScale)
	assert.Equal(t, ":3000", cfg.HTTPListenAddr)
	assert.Equal(t, "matching-engine", cfg.KafkaGroupID)
}

func TestLoadOverridesFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("INTAKE_WORKERS", "8")
	t.Setenv("HTTP_LISTEN_ADDR", ":8080")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.IntakeWorkers)
	assert.Equal(t, ":8080", cfg.HTTPListenAddr)
}

func TestLoadRejectsZeroIntakeWorkers(t *testing.T) {
	clearEnv(t)
	t.Setenv("INTAKE_WORKERS", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsZeroSnapshotIntervalWhenEnabled(t *testing.T) {
	clearEnv(t)
	t.Setenv("SNAPSHOT_ENABLED", "true")
	t.Setenv("SNAPSHOT_INTERVAL_SECONDS", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadAllowsZeroSnapshotIntervalWhenDisabled(t *testing.T) {
	clearEnv(t)
	t.Setenv("SNAPSHOT_ENABLED", "false")
	t.Setenv("SNAPSHOT_INTERVAL_SECONDS", "0")

	_, err := Load()
	assert.NoError(t, err)
}

func TestLoadFallsBackToDefaultListenAddrWhenEnvEmpty(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_LISTEN_ADDR", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.HTTPListenAddr)
}
