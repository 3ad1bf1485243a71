package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/javajack/tabclean"
	"gopkg.in/yaml.v3"
)

// Config is the optional YAML configuration file. Command-line flags
// override every value read from it. Strip and Unpad select what the clean
// command does.
type Config struct {
	Limits  tabclean.Limits `yaml:"limits"`
	Workers int             `yaml:"workers"`
	Extract bool            `yaml:"extract"`
	Strip   bool            `yaml:"strip"`
	Unpad   bool            `yaml:"unpad"`
	Log     LogConfig       `yaml:"log"`
}

// LogConfig selects the log level and handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func defaultConfig() Config {
	return Config{
		Limits: tabclean.DefaultLimits(),
		Unpad:  true,
		Strip:  true,
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// loadConfig reads path over the defaults. An empty path returns the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}
	if cfg.Limits.ScanRows < 0 || cfg.Limits.ColumnWindow < 0 {
		return cfg, fmt.Errorf("config %q: limits must not be negative", path)
	}
	if cfg.Workers < 0 {
		return cfg, fmt.Errorf("config %q: workers must not be negative", path)
	}
	return cfg, nil
}
