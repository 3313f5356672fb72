// Package config provides configuration loading for the reactordb engine.
//
// # Overview
//
// The config package handles loading and defaulting Database-wide settings
// from YAML files via gopkg.in/yaml.v3:
//
//   - Default primary-key attribute name
//   - Default $decouple behavior
//   - ActiveBucket capacity hints
//   - Logging configuration
//
// # Configuration Structure
//
//	type Config struct {
//	    Database DatabaseConfig
//	    Logging  logging.Config
//	}
//
// # Loading Configuration
//
// Load configuration from a YAML file, merged over DefaultConfig:
//
//	cfg, err := config.LoadConfig("/etc/reactordb/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Or use defaults:
//
//	cfg := config.DefaultConfig()
//
// # Example Configuration
//
//	database:
//	  primaryKey: "_id"
//	  decouple: true
//	  bucketCapacityHint: 64
//
//	logging:
//	  level: "info"
//	  format: "json"
//	  output: "stdout"
package config
