package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, "mapcheck", cfg.Name)
	require.Equal(t, "mappings.csv", cfg.Source.CSVPath)
	require.NoError(t, cfg.Validate())
	require.Equal(t, 500*time.Millisecond, cfg.Debounce())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultConfig().Store.Path, cfg.Store.Path)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapcheck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
source:
  csv_path: /data/mappings.csv
schema:
  database_path: /data/warehouse.db
validation:
  legacy_expression_scan: true
watch:
  debounce: 2s
logging:
  level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/data/mappings.csv", cfg.Source.CSVPath)
	require.Equal(t, "/data/warehouse.db", cfg.Schema.DatabasePath)
	require.True(t, cfg.Validation.LegacyExpressionScan)
	require.Equal(t, 2*time.Second, cfg.Debounce())
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "mapcheck", cfg.Name, "unset keys keep their defaults")
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("source: [unclosed"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MAPCHECK_CSV", "/elsewhere/mappings.csv")
	t.Setenv("MAPCHECK_LOG_LEVEL", "warn")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, "/elsewhere/mappings.csv", cfg.Source.CSVPath)
	require.Equal(t, "warn", cfg.Logging.Level)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "mapcheck.yaml")

	cfg := DefaultConfig()
	cfg.Schema.DatabasePath = "/data/warehouse.db"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.Schema.DatabasePath, loaded.Schema.DatabasePath)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Source = SourceConfig{}
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Logging.Level = "loud"
	require.Error(t, cfg.Validate())
}

func TestDebounceFallsBackOnBadValue(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Watch.Debounce = "soon"
	require.Equal(t, 500*time.Millisecond, cfg.Debounce())
}
