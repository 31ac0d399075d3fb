package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "vellum"
)

func rootCmd() *cobra.Command {
	var configDir string

	cmd := &cobra.Command{
		Use:   "vellum",
		Short: "Self-hosted content management",
		Long: `Vellum is a small self-hosted content-management system.

It serves pages from a SQLite database, runs Lua hooks over content on
save and render, and can publish page entities to a knowledge-graph
service over NATS.

Run "vellum init" once to create the configuration directory and the
first admin account, then "vellum serve" to start the server.`,
	}

	defaultDir, err := defaultConfigDir()
	if err != nil {
		defaultDir = ".vellum"
	}
	cmd.PersistentFlags().StringVar(&configDir, "config-dir", defaultDir, "Configuration directory")

	cmd.AddCommand(serveCmd(&configDir))
	cmd.AddCommand(initCmd(&configDir))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

func defaultConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving user config dir : %w", err)
	}
	return filepath.Join(base, appName), nil
}
