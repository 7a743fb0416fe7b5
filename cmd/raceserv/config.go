// File: cmd/raceserv/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// fileConfig is the on-disk YAML configuration.
type fileConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Capacity    int    `yaml:"capacity"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

func defaultFileConfig() fileConfig {
	return fileConfig{
		Host:     "0.0.0.0",
		Port:     7000,
		Capacity: 5,
		LogLevel: "info",
	}
}

func loadConfig(path string) (fileConfig, error) {
	cfg := defaultFileConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
