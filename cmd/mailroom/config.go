package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/mailroom"
	"github.com/dmitrymomot/mailroom/pkg/logger"
)

const (
	defaultAddr            = ":8080"
	defaultShutdownTimeout = 10 * time.Second
)

type config struct {
	Addr            string          `env:"HTTP_ADDR" yaml:"addr"`
	ShutdownTimeout time.Duration   `env:"SHUTDOWN_TIMEOUT" yaml:"shutdown_timeout"`
	Log             logger.Config   `yaml:"log"`
	Mail            mailroom.Config `yaml:"mail"`
}

// loadConfig reads the optional YAML file at path, then applies environment
// overrides from environ. Variables present in environ win over the file.
func loadConfig(path string, environ map[string]string) (config, error) {
	var cfg config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return cfg, fmt.Errorf("config file %s not found", path)
		case err != nil:
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	return cfg, nil
}
