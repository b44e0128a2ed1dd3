package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "gorm", cfg.Store.Backend)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, time.Second, cfg.Content.Cooldown)
	assert.Equal(t, 500*time.Millisecond, cfg.Content.Gap)
	assert.Equal(t, 15*time.Second, cfg.Content.RequestTimeout)
	assert.Equal(t, 5, cfg.Content.DefaultMaxResults)
	assert.Equal(t, uint32(5), cfg.Content.BreakerFailures)
}

func TestLoadConfig_FromFile(t *testing.T) {
	dir := writeConfig(t, `
store:
  backend: badger
badger:
  in_memory: true
content:
  cooldown: 2s
  gap: 250ms
  request_timeout: 0s
analytics:
  timezone: UTC
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "badger", cfg.Store.Backend)
	assert.True(t, cfg.Badger.InMemory)
	assert.Equal(t, 2*time.Second, cfg.Content.Cooldown)
	assert.Equal(t, 250*time.Millisecond, cfg.Content.Gap)
	assert.Equal(t, time.Duration(0), cfg.Content.RequestTimeout)
	assert.Equal(t, time.UTC, cfg.Analytics.Location())
}

func TestLoadConfig_RejectsUnknownBackend(t *testing.T) {
	dir := writeConfig(t, "store:\n  backend: cassandra\n")

	_, err := LoadConfig(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cassandra")
}

func TestAnalyticsConfig_Location(t *testing.T) {
	assert.Equal(t, time.Local, AnalyticsConfig{}.Location())
	assert.Equal(t, time.Local, AnalyticsConfig{Timezone: "Not/AZone"}.Location())
}
