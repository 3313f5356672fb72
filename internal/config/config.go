// Package config provides configuration loading for the reactordb engine.
package config

import "github.com/obadb/reactor/internal/logging"

// Config holds the complete engine configuration: Database-wide defaults
// plus the logging configuration threaded through Database, Collection and
// View constructors.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Logging  logging.Config `yaml:"logging"`
}

// DatabaseConfig holds defaults applied to every Collection and View
// created under a Database unless overridden at construction time.
type DatabaseConfig struct {
	// PrimaryKey is the default primary-key attribute name for
	// Collections that don't specify one.
	PrimaryKey string `yaml:"primaryKey"`

	// Decouple is the default value of the decouple-on-read/write behavior
	// new collections are constructed with.
	Decouple bool `yaml:"decouple"`

	// BucketCapacityHint is loaded and defaulted with the rest of the
	// configuration, but the Database does not read it: a view's
	// ActiveBucket is sized from its current result set instead.
	BucketCapacityHint int `yaml:"bucketCapacityHint"`
}
