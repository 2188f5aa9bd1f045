// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for playpack.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"playpack-cli/internal/config"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables debug-level logging
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "playpack",
		Short: "Package playbooks into self-executing bundles",
		Long: TitleStyle.Render("playpack") + SubtitleStyle.Render(" - Package playbooks into self-executing bundles") + `

playpack stages a playbook together with its local roles, galaxy
requirements, variable files, and extra dependencies, then packs the
result into a single self-extracting archive. Running the produced file
on a target machine unpacks it and executes the embedded entrypoint.

Builds are reproducible: two builds from identical inputs produce
byte-identical bundles.

` + SubtitleStyle.Render("Examples:") + `
  playpack build --playbook-file site.yml
  playpack build --playbook-file site.yml --ansible-version 2.14.1
  playpack inspect site.run`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/playpack/config.toml)")

	// Add subcommands
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(inspectCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). Interrupts cancel the
// command context so a running build still releases its staging area.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// initRootConfig wires the --config flag into the config loader.
func initRootConfig() {
	if cfgFile != "" {
		config.SetConfigFilePathOverride(cfgFile)
	}
}

// newLogger creates the stage logger, honoring the verbose flag.
func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "playpack",
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}
