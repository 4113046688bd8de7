// Copyright 2026 Greener Reporter Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/greener-hub/greener-reporter/pkg/config"
)

// TestDefaultConfig tests the default configuration.
func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	if cfg.Batch.Size != 100 {
		t.Errorf("Expected default batch size 100, got %d", cfg.Batch.Size)
	}

	if cfg.Batch.FlushInterval != 5000*time.Millisecond {
		t.Errorf("Expected default flush interval 5s, got %v", cfg.Batch.FlushInterval)
	}

	if cfg.Log.Level != "info" {
		t.Errorf("Expected default log level 'info', got '%s'", cfg.Log.Level)
	}

	if cfg.Ingress.APIKeyEnv != config.EnvAPIKey {
		t.Errorf("Expected default api_key_env %s, got '%s'", config.EnvAPIKey, cfg.Ingress.APIKeyEnv)
	}
}

// TestLoadFromPath tests loading config from a file.
func TestLoadFromPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	configContent := `
ingress:
  endpoint: https://greener.example.com
  api_key: secret

batch:
  size: 25
  flush_interval: 250ms

session:
  description: nightly
  labels: "ci=true"

log:
  level: debug
  format: json
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := config.NewLoader().LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Ingress.Endpoint != "https://greener.example.com" {
		t.Errorf("Expected endpoint, got '%s'", cfg.Ingress.Endpoint)
	}
	if cfg.Batch.Size != 25 {
		t.Errorf("Expected batch size 25, got %d", cfg.Batch.Size)
	}
	if cfg.Batch.FlushInterval != 250*time.Millisecond {
		t.Errorf("Expected flush interval 250ms, got %v", cfg.Batch.FlushInterval)
	}
	if cfg.Session.ID != nil {
		t.Errorf("Expected absent session id, got %q", *cfg.Session.ID)
	}
	if cfg.Session.Description == nil || *cfg.Session.Description != "nightly" {
		t.Errorf("Expected description 'nightly', got %v", cfg.Session.Description)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Expected format json, got '%s'", cfg.Log.Format)
	}
	// Untouched sections keep their defaults
	if len(cfg.Log.Outputs) != 1 || cfg.Log.Outputs[0] != "stderr" {
		t.Errorf("Expected default outputs [stderr], got %v", cfg.Log.Outputs)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

// TestLoadFromPathInvalid tests loading an invalid config file.
func TestLoadFromPathInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	configContent := `
batch:
  flush_interval: not_a_duration
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err := config.NewLoader().LoadFromPath(configPath)
	if err == nil {
		t.Error("Expected error for invalid config, got nil")
	}
}

// TestLoadMissingExplicitPath tests that an explicit path must exist.
func TestLoadMissingExplicitPath(t *testing.T) {
	_, err := config.NewLoader().WithPath(filepath.Join(t.TempDir(), "missing.yaml")).SkipEnv().Load()
	if err == nil {
		t.Fatal("Expected error for missing config file, got nil")
	}
	if !strings.Contains(err.Error(), "missing.yaml") {
		t.Errorf("Expected error to name the file, got %v", err)
	}
}

// TestLoadProjectConfig tests discovery of the project config file.
func TestLoadProjectConfig(t *testing.T) {
	root := t.TempDir()
	content := "ingress:\n  endpoint: http://localhost:8080\n"
	if err := os.WriteFile(filepath.Join(root, config.ProjectConfigFile), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write project config: %v", err)
	}

	cfg, err := config.NewLoader().WithProjectRoot(root).SkipEnv().Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Ingress.Endpoint != "http://localhost:8080" {
		t.Errorf("Expected endpoint from project config, got '%s'", cfg.Ingress.Endpoint)
	}

	// No project file: defaults only
	cfg, err = config.NewLoader().WithProjectRoot(t.TempDir()).SkipEnv().Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Ingress.Endpoint != "" {
		t.Errorf("Expected empty endpoint, got '%s'", cfg.Ingress.Endpoint)
	}
}

// TestLoadWithEnvOverrides tests environment variable overrides.
func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv(config.EnvEndpoint, "https://env.example.com")
	t.Setenv(config.EnvAPIKey, "env-key")
	t.Setenv(config.EnvSessionID, "run-42")
	t.Setenv(config.EnvSessionLabels, "")
	t.Setenv(config.EnvLogLevel, "warn")
	t.Setenv(config.EnvBatchSize, "10")
	t.Setenv(config.EnvFlushInterval, "1s")

	cfg, err := config.NewLoader().WithProjectRoot(t.TempDir()).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Ingress.Endpoint != "https://env.example.com" {
		t.Errorf("Expected endpoint from env, got '%s'", cfg.Ingress.Endpoint)
	}
	if cfg.Ingress.ResolveAPIKey() != "env-key" {
		t.Errorf("Expected api key from env, got '%s'", cfg.Ingress.ResolveAPIKey())
	}
	if cfg.Session.ID == nil || *cfg.Session.ID != "run-42" {
		t.Errorf("Expected session id run-42, got %v", cfg.Session.ID)
	}
	if cfg.Session.Labels == nil || *cfg.Session.Labels != "" {
		t.Errorf("Expected empty but present labels, got %v", cfg.Session.Labels)
	}
	if cfg.Session.Description != nil {
		t.Errorf("Expected absent description, got %q", *cfg.Session.Description)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Expected log level warn, got '%s'", cfg.Log.Level)
	}
	if cfg.Batch.Size != 10 || cfg.Batch.FlushInterval != time.Second {
		t.Errorf("Expected batch 10/1s, got %d/%v", cfg.Batch.Size, cfg.Batch.FlushInterval)
	}
}

// TestLoadWithInvalidEnv tests malformed numeric environment values.
func TestLoadWithInvalidEnv(t *testing.T) {
	t.Setenv(config.EnvBatchSize, "many")

	_, err := config.NewLoader().WithProjectRoot(t.TempDir()).Load()
	if err == nil {
		t.Fatal("Expected error for invalid batch size, got nil")
	}
	if !strings.Contains(err.Error(), "batch.size") {
		t.Errorf("Expected error to name batch.size, got %v", err)
	}
}

// TestResolveAPIKey tests api_key_env indirection.
func TestResolveAPIKey(t *testing.T) {
	t.Setenv("MY_GREENER_KEY", "from-env")

	c := config.IngressConfig{APIKeyEnv: "MY_GREENER_KEY"}
	if c.ResolveAPIKey() != "from-env" {
		t.Errorf("Expected from-env, got '%s'", c.ResolveAPIKey())
	}

	c.APIKey = "inline"
	if c.ResolveAPIKey() != "inline" {
		t.Errorf("Expected inline key to win, got '%s'", c.ResolveAPIKey())
	}
}

// TestValidate tests configuration validation.
func TestValidate(t *testing.T) {
	valid := func() *config.Config {
		cfg := config.DefaultConfig()
		cfg.Ingress.Endpoint = "https://greener.example.com"
		cfg.Ingress.APIKey = "key"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"valid", func(*config.Config) {}, ""},
		{"missing endpoint", func(c *config.Config) { c.Ingress.Endpoint = "" }, "ingress.endpoint"},
		{"relative endpoint", func(c *config.Config) { c.Ingress.Endpoint = "greener.example.com" }, "ingress.endpoint"},
		{"ftp endpoint", func(c *config.Config) { c.Ingress.Endpoint = "ftp://greener.example.com" }, "ingress.endpoint"},
		{"missing api key", func(c *config.Config) { c.Ingress.APIKey = ""; c.Ingress.APIKeyEnv = "" }, "ingress.api_key"},
		{"zero batch size", func(c *config.Config) { c.Batch.Size = 0 }, "batch.size"},
		{"negative interval", func(c *config.Config) { c.Batch.FlushInterval = -time.Second }, "batch.flush_interval"},
		{"bad log level", func(c *config.Config) { c.Log.Level = "verbose" }, "log.level"},
		{"bad log format", func(c *config.Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}
