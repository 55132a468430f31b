// Package main provides the entry point for the salary dashboard API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"salaries/internal/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "server",
		Short:         "Data-industry salary dashboard",
		Long:          "Loads the data-industry salary dataset and serves filtered metrics and chart data over a JSON API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "", "Path to a YAML config file")
	root.PersistentFlags().String("data-url", "", "Dataset location (http(s) URL or file path)")
	root.PersistentFlags().String("log-level", "", "Log level (trace, debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "", "Log format (json, console)")

	root.AddCommand(newServeCmd(), newReportCmd())
	return root
}

// loadConfig merges the config file, environment and command-line flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	overrides := map[string]*string{
		"data-url":   &cfg.DataURL,
		"log-level":  &cfg.LogLevel,
		"log-format": &cfg.LogFormat,
		"addr":       &cfg.Addr,
	}
	for name, dst := range overrides {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			*dst = f.Value.String()
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
