// Package main is the entry point for the chore tracker API.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/choretracker/choretracker/internal/config"
)

func main() {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Running the binary without a
// subcommand starts the server.
func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:           "choretracker",
		Short:         "Chore tracker REST API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML, JSON or TOML); environment variables take precedence")

	load := func() (*config.Config, error) {
		return config.LoadFile(cfgFile)
	}

	serve := newServeCmd(load)
	root.RunE = serve.RunE
	root.AddCommand(serve, newMigrateCmd(load))

	return root
}
