package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mleduque/modda/internal/errs"
	"github.com/mleduque/modda/internal/logging"
)

var configOverride string

var rootCmd = &cobra.Command{
	Use:           "modda",
	Short:         "Reproducible mod installation orchestrator for Infinity Engine games",
	Long:          "modda drives archive fetching, extraction, mutation and weidu installation from a declarative manifest, so a party's mod list can be reproduced exactly on another machine.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(newLogger())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configOverride, "config", "", "override modda.yml discovery with this directory")
	rootCmd.AddCommand(installCmd, reverseCmd)
}

func newLogger() *slog.Logger {
	level, err := logging.ParseLevel(os.Getenv("RUST_LOG"))
	if err != nil {
		level = slog.LevelInfo
	}
	return logging.New(os.Stderr, level)
}

// Execute runs the root command and maps the returned error's taxonomy Kind
// to the process exit code: 0 success, 1 a mod/component failed, 2 a
// configuration or manifest problem, 3 a fetch or extraction failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		os.Exit(errs.ExitCode(err))
	}
}
