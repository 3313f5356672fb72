// Package config provides configuration loading for the reactordb engine.
package config

import "github.com/obadb/reactor/internal/logging"

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			PrimaryKey:         "_id",
			Decouple:           true,
			BucketCapacityHint: 64,
		},
		Logging: logging.Config{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}
