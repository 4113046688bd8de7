// Package config handles configuration loading and validation
package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate validates the configuration
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}

	if err := c.Ingress.Validate(); err != nil {
		return err
	}
	if err := c.Batch.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	return nil
}

// Validate validates the ingress configuration
func (c *IngressConfig) Validate() error {
	if err := ValidateEndpoint(c.Endpoint); err != nil {
		return &ConfigError{Field: "ingress.endpoint", Err: err}
	}
	if c.ResolveAPIKey() == "" {
		return &ConfigError{Field: "ingress.api_key", Err: fmt.Errorf("api key is required (set api_key, api_key_env or %s)", EnvAPIKey)}
	}
	return nil
}

// ValidateEndpoint checks that endpoint is an absolute http or https URL.
func ValidateEndpoint(endpoint string) error {
	if endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid endpoint scheme: %q (must be http or https)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("endpoint has no host: %s", endpoint)
	}
	return nil
}

// Validate validates the batch configuration
func (b *BatchConfig) Validate() error {
	if b.Size < 1 {
		return &ConfigError{Field: "batch.size", Err: fmt.Errorf("must be at least 1, got %d", b.Size)}
	}
	if b.FlushInterval <= 0 {
		return &ConfigError{Field: "batch.flush_interval", Err: fmt.Errorf("must be positive, got %v", b.FlushInterval)}
	}
	return nil
}

// Validate validates the log configuration
func (l *LogConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if l.Level != "" && !validLevels[strings.ToLower(l.Level)] {
		return &ConfigError{Field: "log.level", Err: fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", l.Level)}
	}

	if l.Format != "" && l.Format != "console" && l.Format != "json" {
		return &ConfigError{Field: "log.format", Err: fmt.Errorf("invalid format: %s (must be console or json)", l.Format)}
	}
	return nil
}
