// Copyright 2026 Greener Reporter Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// ProjectConfigFile is the project-level config file name.
	ProjectConfigFile = ".greener-reporter.yaml"

	EnvEndpoint           = "GREENER_INGRESS_ENDPOINT"
	EnvAPIKey             = "GREENER_INGRESS_API_KEY"
	EnvSessionID          = "GREENER_SESSION_ID"
	EnvSessionDescription = "GREENER_SESSION_DESCRIPTION"
	EnvSessionBaggage     = "GREENER_SESSION_BAGGAGE"
	EnvSessionLabels      = "GREENER_SESSION_LABELS"
	EnvLogLevel           = "GREENER_LOG_LEVEL"
	EnvBatchSize          = "GREENER_BATCH_SIZE"
	EnvFlushInterval      = "GREENER_BATCH_FLUSH_INTERVAL"
)

// Loader loads configuration from files and environment.
type Loader struct {
	projectRoot string
	path        string
	skipEnv     bool
}

// NewLoader creates a new config loader.
func NewLoader() *Loader {
	return &Loader{}
}

// WithProjectRoot sets the directory searched for the project config file.
func (l *Loader) WithProjectRoot(root string) *Loader {
	l.projectRoot = root
	return l
}

// WithPath loads the given file instead of the project config file.
// A missing explicit file is an error.
func (l *Loader) WithPath(path string) *Loader {
	l.path = path
	return l
}

// SkipEnv disables environment overrides.
func (l *Loader) SkipEnv() *Loader {
	l.skipEnv = true
	return l
}

// Load loads configuration with full precedence order:
// 1. Defaults
// 2. Config file (explicit path, or project config if present)
// 3. Environment Variables (GREENER_*)
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.path != "" {
		if err := loadInto(cfg, l.path); err != nil {
			return nil, err
		}
	} else {
		root := l.projectRoot
		if root == "" {
			root = "."
		}
		projectPath := filepath.Join(root, ProjectConfigFile)
		if _, err := os.Stat(projectPath); err == nil {
			if err := loadInto(cfg, projectPath); err != nil {
				return nil, err
			}
		}
	}

	if !l.skipEnv {
		if err := applyEnvOverrides(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path on top of the defaults.
func (l *Loader) LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := loadInto(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadInto(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
// Session variables that are set but empty still count as present.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv(EnvEndpoint); v != "" {
		cfg.Ingress.Endpoint = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.Ingress.APIKey = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvBatchSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &ConfigError{Field: "batch.size", Err: err}
		}
		cfg.Batch.Size = n
	}
	if v := os.Getenv(EnvFlushInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return &ConfigError{Field: "batch.flush_interval", Err: err}
		}
		cfg.Batch.FlushInterval = d
	}

	lookup := func(name string, dst **string) {
		if v, ok := os.LookupEnv(name); ok {
			*dst = &v
		}
	}
	lookup(EnvSessionID, &cfg.Session.ID)
	lookup(EnvSessionDescription, &cfg.Session.Description)
	lookup(EnvSessionBaggage, &cfg.Session.Baggage)
	lookup(EnvSessionLabels, &cfg.Session.Labels)

	return nil
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Path  string
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return "config error in " + e.Path + ": " + e.Err.Error()
	}
	if e.Field != "" {
		return "config error for " + e.Field + ": " + e.Err.Error()
	}
	return "config error: " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
