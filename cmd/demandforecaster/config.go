package main

import (
	"fmt"
	"os"

	demandforecaster "github.com/aouyang1/go-demandforecaster"
	"github.com/aouyang1/go-demandforecaster/ingest"
	"gopkg.in/yaml.v3"
)

// Config is the yaml configuration of the command line
type Config struct {
	Forecast *demandforecaster.Options `yaml:"forecast"`
	Ingest   *ingest.Options           `yaml:"ingest"`
}

func newDefaultConfig() *Config {
	return &Config{
		Forecast: demandforecaster.NewDefaultOptions(),
		Ingest:   ingest.NewDefaultOptions(),
	}
}

// loadConfig overlays a yaml file onto the default configuration
func loadConfig(path string) (*Config, error) {
	cfg := newDefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if cfg.Forecast == nil {
		cfg.Forecast = demandforecaster.NewDefaultOptions()
	}
	if cfg.Ingest == nil {
		cfg.Ingest = ingest.NewDefaultOptions()
	}
	return cfg, nil
}
