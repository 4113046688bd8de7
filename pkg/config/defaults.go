// Copyright 2026 Greener Reporter Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package config

import "time"

const (
	// DefaultBatchSize is the number of testcases that triggers an immediate flush.
	DefaultBatchSize = 100
	// DefaultFlushInterval is how long a partial batch waits before it is flushed.
	DefaultFlushInterval = 5000 * time.Millisecond
)

// DefaultConfig returns the default configuration.
// These values are used when no config file is present.
func DefaultConfig() *Config {
	return &Config{
		Ingress: IngressConfig{
			APIKeyEnv: EnvAPIKey,
		},
		Batch: DefaultBatchConfig(),
		Log:   DefaultLogConfig(),
	}
}

// DefaultBatchConfig returns default batching configuration.
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{
		Size:          DefaultBatchSize,
		FlushInterval: DefaultFlushInterval,
	}
}

// DefaultLogConfig returns default logging configuration.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:   "info",
		Format:  "console",
		Outputs: []string{"stderr"},
		Rotation: RotationConfig{
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}
