// Package logging provides structured logging for the reactordb engine.
//
// # Overview
//
// The logging package provides a structured logging interface with support for:
//
//   - Multiple log levels (debug, info, warn, error)
//   - Text and JSON output formats
//   - Field-based contextual logging for view, collection and packet fields
//
// It is a thin façade over go.uber.org/zap: callers depend on the narrow
// Logger interface below, not on zap directly, so Database/View/Collection
// constructors can accept a nil logger and fall back to a no-op.
//
// # Creating a Logger
//
// Create a logger with configuration:
//
//	logger := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "stdout",
//	})
//
// Or use defaults:
//
//	logger := logging.NewDefault() // Info level, text format, stdout
//
// For testing, or when a component's logger is unset, use a no-op logger:
//
//	logger := logging.NewNop()
//
// # Structured Logging
//
// Add key-value pairs to log entries:
//
//	logger.Info("view bound to source",
//	    "view", "activeUsers",
//	    "source", "users",
//	)
//
// # Output Destinations
//
// Configure output destination:
//
//	logging.Config{Output: "stdout"} // Standard output
//	logging.Config{Output: "stderr"} // Standard error
//	logging.Config{Output: "/var/log/reactordb.log"} // File path
package logging
