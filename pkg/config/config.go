// Copyright 2026 Greener Reporter Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package config provides configuration management for greener-reporter.
//
// Configuration Loading Order (later overrides earlier):
// 1. Defaults (hardcoded)
// 2. Config file: --config path, or ./.greener-reporter.yaml
// 3. Environment Variables: GREENER_*
package config

import (
	"os"
	"time"
)

// Config represents the complete reporter configuration.
type Config struct {
	Ingress IngressConfig `yaml:"ingress"`
	Batch   BatchConfig   `yaml:"batch"`
	Session SessionConfig `yaml:"session"`
	Log     LogConfig     `yaml:"log"`
}

// IngressConfig locates the ingestion service.
type IngressConfig struct {
	Endpoint  string `yaml:"endpoint"`    // base URL, e.g. https://greener.example.com
	APIKey    string `yaml:"api_key"`     // prefer api_key_env in committed files
	APIKeyEnv string `yaml:"api_key_env"` // e.g., "GREENER_INGRESS_API_KEY"
}

// BatchConfig controls testcase batching.
type BatchConfig struct {
	Size          int           `yaml:"size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// SessionConfig holds defaults for the session created by the CLI.
// A nil field is absent and is not sent.
type SessionConfig struct {
	ID          *string `yaml:"id,omitempty"`
	Description *string `yaml:"description,omitempty"`
	Baggage     *string `yaml:"baggage,omitempty"` // JSON text
	Labels      *string `yaml:"labels,omitempty"`
}

// LogConfig defines logger settings.
type LogConfig struct {
	// Level: debug, info, warn, error
	Level string `yaml:"level"`
	// Format: console or json
	Format string `yaml:"format"`
	// Outputs: stdout, stderr, or file paths
	Outputs []string `yaml:"outputs"`
	// Rotation controls file rotation for file outputs
	Rotation RotationConfig `yaml:"rotation"`
}

// RotationConfig controls log file rotation.
type RotationConfig struct {
	Enable     bool `yaml:"enable"`
	MaxSizeMB  int  `yaml:"max_size_mb"`
	MaxBackups int  `yaml:"max_backups"`
	MaxAgeDays int  `yaml:"max_age_days"`
	Compress   bool `yaml:"compress"`
}

// ResolveAPIKey returns the configured API key, falling back to the variable
// named by api_key_env.
func (c *IngressConfig) ResolveAPIKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	if c.APIKeyEnv != "" {
		return os.Getenv(c.APIKeyEnv)
	}
	return ""
}
