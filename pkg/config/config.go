// Package config provides run configuration loading for the EICKey CLI.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ChrisMcGann/EICKey/pkg/extract"
)

// Config holds all run settings for a chromatogram extraction.
type Config struct {
	MZUnit           string  `yaml:"mz_unit"`
	MZTolerancePPM   float64 `yaml:"mz_tolerance_ppm"`
	MZToleranceDa    float64 `yaml:"mz_tolerance_da"`
	TimeUnit         string  `yaml:"time_unit"`
	DefaultPeakWidth float64 `yaml:"default_peak_width"`
	Baseline         float64 `yaml:"baseline"`
	VariantDelimiter string  `yaml:"variant_delimiter"`
	Threads          int     `yaml:"threads"`
}

// Load reads and parses the config file at path and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	return &cfg, nil
}

// Save writes the config to path. Used for persisting the settings of a run
// alongside its results.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// ApplyDefaults fills unset fields with the default run settings.
func ApplyDefaults(cfg *Config) {
	if cfg.MZUnit == "" {
		cfg.MZUnit = extract.UnitPPM
	}
	if cfg.MZTolerancePPM == 0 {
		cfg.MZTolerancePPM = 10
	}
	if cfg.MZToleranceDa == 0 {
		cfg.MZToleranceDa = 0.02
	}
	if cfg.TimeUnit == "" {
		cfg.TimeUnit = extract.UnitSeconds
	}
	if cfg.DefaultPeakWidth == 0 {
		cfg.DefaultPeakWidth = 60
	}
	if cfg.VariantDelimiter == "" {
		cfg.VariantDelimiter = "#"
	}
	if cfg.Threads == 0 {
		cfg.Threads = 1
	}
}

// Params converts the config into extraction parameters, picking the
// tolerance that matches the configured m/z unit.
func (c *Config) Params() extract.Params {
	tolerance := c.MZToleranceDa
	if c.MZUnit == extract.UnitPPM {
		tolerance = c.MZTolerancePPM
	}
	return extract.Params{
		MZUnit:           c.MZUnit,
		MZTolerance:      tolerance,
		DefaultPeakWidth: c.DefaultPeakWidth,
		Baseline:         c.Baseline,
		TimeUnit:         c.TimeUnit,
	}
}
