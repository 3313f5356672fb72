package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage information to the given writer.
func printUsage(w io.Writer) {
	fmt.Fprint(w, `reactorctl - operator CLI for the reactive document engine

Usage:
  reactorctl <command> [options]

Commands:
  config      Configuration management
  demo        Run a scripted collection/view scenario and print the result
  version     Show version information

Use "reactorctl <command> -h" for more information about a command.
`)
}

// printConfigUsage prints the config command usage.
func printConfigUsage(w io.Writer) {
	fmt.Fprint(w, `Configuration management

Usage:
  reactorctl config <subcommand> [options]

Subcommands:
  init        Generate a default configuration file
  show        Show effective configuration
  validate    Validate a configuration file

Use "reactorctl config <subcommand> -h" for more information.
`)
}

// printDemoUsage prints the demo command usage.
func printDemoUsage(w io.Writer) {
	fmt.Fprint(w, `Run a scripted collection/view scenario

Usage:
  reactorctl demo [options]

Options:
  -config string
        Path to configuration file (optional, defaults are used otherwise)
  -h, -help
        Show this help message
`)
}

// printVersionUsage prints the version command usage.
func printVersionUsage(w io.Writer) {
	fmt.Fprint(w, `Show version information

Usage:
  reactorctl version [options]

Options:
  -short
        Show only version number
  -h, -help
        Show this help message
`)
}
