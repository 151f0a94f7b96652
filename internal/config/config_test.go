package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"krakviz/internal/chart"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvTaxDB, "")
	t.Setenv(EnvLogLevel, "")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, filepath.Join("taxdb", "fullnamelineage.dmp"), cfg.TaxDB)
	assert.Equal(t, "skip", cfg.DecodePolicy)
	assert.Equal(t, "anchor", cfg.TruncatedLineage)
	assert.Equal(t, []string{"cellular organisms", "Viruses", "other entries", "unclassified entries"}, cfg.Anchors)
	assert.Equal(t, AnalysisConfig{MinCount: 5, Top: 25}, cfg.Analysis)
	assert.Equal(t, ChartConfig{Title: "Sunburst chart", Width: 1100, Height: 700}, cfg.Chart(chart.Sunburst))
	assert.Equal(t, ChartConfig{Title: "Icicle chart", Width: 900, Height: 2000}, cfg.Chart(chart.Icicle))
	assert.Contains(t, cfg.Download.URL, "new_taxdump.zip")
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "sub", "krakviz.yaml")

	cfg := DefaultConfig()
	cfg.TaxDB = "/data/lineage.db"
	cfg.Analysis.MinCount = 0
	cfg.Charts.Icicle.Height = 1500
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "krakviz.yaml")
	require.NoError(t, os.WriteFile(path, []byte("analysis:\n  top: 10\nlogging:\n  format: json\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Analysis.Top)
	assert.Equal(t, 5, cfg.Analysis.MinCount)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "krakviz.yaml")
	require.NoError(t, os.WriteFile(path, []byte("analysis: [unterminated\n"), 0o644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvTaxDB, "/env/lineage.db")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/env/lineage.db", cfg.TaxDB)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"decode policy":  func(c *Config) { c.DecodePolicy = "ignore" },
		"truncated":      func(c *Config) { c.TruncatedLineage = "drop" },
		"log level":      func(c *Config) { c.Logging.Level = "loud" },
		"log format":     func(c *Config) { c.Logging.Format = "xml" },
		"min count":      func(c *Config) { c.Analysis.MinCount = -1 },
		"top":            func(c *Config) { c.Analysis.Top = -3 },
		"chart geometry": func(c *Config) { c.Charts.Icicle.Width = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
