package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(32<<20), cfg.MaxUploadBytes())
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, "finsheet", cfg.Database.DBName)
	assert.Equal(t, int32(5), cfg.Database.MaxConns)
	assert.Equal(t, 60, cfg.Ingestion.MaxPeriods)
	assert.Equal(t, 12, cfg.Ingestion.PeriodSettings().DefaultPeriods)
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`server:
  port: 9090
  allowed_origins: ["https://app.example.com"]
database:
  enabled: true
  host: db.internal
  port: 6543
ingestion:
  max_periods: 36
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))
	t.Setenv("FINSHEET_DATABASE_HOST", "override.internal")
	t.Setenv("FINSHEET_INGESTION_PROBE_ROWS", "5")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, "override.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, 36, cfg.Ingestion.MaxPeriods)
	assert.Equal(t, 5, cfg.Ingestion.ProbeRows)

	dbCfg, err := LoadDBConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "override.internal", dbCfg.Host)
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	t.Setenv("FINSHEET_SERVER_PORT", "-1")
	_, err := Load(t.TempDir())
	require.Error(t, err)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [unclosed"), 0o600))
	_, err := Load(dir)
	require.Error(t, err)
}
