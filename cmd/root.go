package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"taskboard-service/config"
	"taskboard-service/logging"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "taskboard",
	Short: "Task and project board REST service",
	Long: `taskboard serves a JSON API for registering users and managing their
projects, tasks and task comments.

Configuration is read from the environment, optionally seeded from a .env file.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

// setup loads configuration and initializes the logger.
func setup() (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := logging.InitLogger(logging.Options{
		SystemName: "taskboard-service",
		File:       cfg.LogFile,
		Level:      cfg.LogLevel,
	}); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
