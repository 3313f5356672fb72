package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/obadb/reactor/internal/config"
	"gopkg.in/yaml.v3"
)

// configCmd handles the config command.
func configCmd(args []string) int {
	if len(args) == 0 {
		printConfigUsage(os.Stdout)
		return 0
	}
	if args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printConfigUsage(os.Stdout)
		return 0
	}

	switch args[0] {
	case "init":
		return configInitCmd(args[1:])
	case "show":
		return configShowCmd(args[1:])
	case "validate":
		return configValidateCmd(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		fmt.Fprintln(os.Stderr, "Run 'reactorctl config help' for usage.")
		return 1
	}
}

// configInitCmd writes a default configuration file to -output.
func configInitCmd(args []string) int {
	fs := flag.NewFlagSet("config init", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	output := fs.String("output", "reactor.yaml", "Path to write the default configuration")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	if err := config.WriteConfig(*output, config.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing configuration: %v\n", err)
		return 1
	}
	fmt.Printf("Wrote default configuration to %s\n", *output)
	return 0
}

// configShowCmd loads -config (or the built-in defaults) and prints the
// effective configuration as YAML.
func configShowCmd(args []string) int {
	fs := flag.NewFlagSet("config show", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configFile := fs.String("config", "", "Path to configuration file (optional)")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg, err := loadConfigOrDefault(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return 1
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting configuration: %v\n", err)
		return 1
	}
	fmt.Print(string(out))
	return 0
}

// configValidateCmd reports whether -config parses successfully.
func configValidateCmd(args []string) int {
	fs := flag.NewFlagSet("config validate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configFile := fs.String("config", "", "Path to configuration file (required)")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *configFile == "" {
		fmt.Fprintln(os.Stderr, "Error: -config is required")
		return 1
	}

	if _, err := config.LoadConfig(*configFile); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		return 1
	}
	fmt.Println("Configuration is valid.")
	return 0
}

func loadConfigOrDefault(path string) (*config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	return config.LoadConfig(path)
}
