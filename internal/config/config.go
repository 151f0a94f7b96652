// Package config loads krakviz settings from YAML with environment
// overrides. Command-line flags are applied on top by the app package.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"krakviz/internal/chart"
	"krakviz/internal/lineage"
	"krakviz/internal/logging"
	"krakviz/internal/taxtree"
)

// Environment variables consulted by Load.
const (
	EnvTaxDB    = "KRAKVIZ_TAXDB"
	EnvLogLevel = "KRAKVIZ_LOG_LEVEL"
)

// DefaultPath is read when --config is not given. A missing file is fine.
const DefaultPath = "krakviz.yaml"

// Config holds all krakviz configuration.
type Config struct {
	// Lineage source: a fullnamelineage.dmp dump or a sqlite index built by `krakviz index`.
	TaxDB            string   `yaml:"taxdb"`
	DecodePolicy     string   `yaml:"decode_policy"`     // skip | fail
	TruncatedLineage string   `yaml:"truncated_lineage"` // anchor | fail
	Anchors          []string `yaml:"anchors"`

	Analysis AnalysisConfig `yaml:"analysis"`
	Charts   ChartsConfig   `yaml:"charts"`
	Logging  LoggingConfig  `yaml:"logging"`
	Download DownloadConfig `yaml:"download"`
}

// AnalysisConfig sets the defaults of list/tree/chart.
type AnalysisConfig struct {
	MinCount int `yaml:"min_count"`
	Top      int `yaml:"top"`
}

// ChartConfig is the display setting of one chart kind.
type ChartConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// ChartsConfig groups the per-kind chart settings.
type ChartsConfig struct {
	Sunburst ChartConfig `yaml:"sunburst"`
	Icicle   ChartConfig `yaml:"icicle"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

// DownloadConfig configures `krakviz fetch`.
type DownloadConfig struct {
	URL string `yaml:"url"`
	Dir string `yaml:"dir"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	sb, ic := chart.Defaults(chart.Sunburst), chart.Defaults(chart.Icicle)
	return &Config{
		TaxDB:            filepath.Join("taxdb", lineage.DumpFile),
		DecodePolicy:     lineage.PolicySkip.String(),
		TruncatedLineage: taxtree.AnchorToRoot.String(),
		Anchors:          append([]string(nil), taxtree.DefaultAnchorNames...),
		Analysis:         AnalysisConfig{MinCount: 5, Top: 25},
		Charts: ChartsConfig{
			Sunburst: ChartConfig{Title: sb.Title, Width: sb.Width, Height: sb.Height},
			Icicle:   ChartConfig{Title: ic.Title, Width: ic.Width, Height: ic.Height},
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Download: DownloadConfig{
			URL: "https://ftp.ncbi.nlm.nih.gov/pub/taxonomy/new_taxdump/new_taxdump.zip",
			Dir: "taxdb",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML, creating the directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(EnvTaxDB); v != "" {
		c.TaxDB = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
}

// Chart returns the configured display settings for k.
func (c *Config) Chart(k chart.Kind) ChartConfig {
	if k == chart.Icicle {
		return c.Charts.Icicle
	}
	return c.Charts.Sunburst
}

// Validate checks enumerations and ranges.
func (c *Config) Validate() error {
	if _, err := lineage.ParseDecodePolicy(c.DecodePolicy); err != nil {
		return err
	}
	if _, err := taxtree.ParseTruncatedPolicy(c.TruncatedLineage); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "console", "text", "json":
	default:
		return fmt.Errorf("invalid logging format %q (valid: console, json)", c.Logging.Format)
	}
	if c.Analysis.MinCount < 0 {
		return fmt.Errorf("analysis.min_count must be >= 0")
	}
	if c.Analysis.Top < 0 {
		return fmt.Errorf("analysis.top must be >= 0")
	}
	for name, ch := range map[string]ChartConfig{"sunburst": c.Charts.Sunburst, "icicle": c.Charts.Icicle} {
		if ch.Width < 0 || ch.Height < 0 {
			return fmt.Errorf("charts.%s: width and height must be >= 0", name)
		}
	}
	return nil
}
