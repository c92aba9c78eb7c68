package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mleduque/modda/internal/errs"
	"github.com/mleduque/modda/internal/reverse"
)

var (
	reverseGameDir string
	reverseOutput  string
)

var reverseCmd = &cobra.Command{
	Use:   "reverse",
	Short: "Reconstruct a manifest fragment from an already-modded game directory",
	RunE:  runReverse,
}

func init() {
	reverseCmd.Flags().StringVar(&reverseGameDir, "game-dir", ".", "path to the modded game directory")
	reverseCmd.Flags().StringVar(&reverseOutput, "output", "", "path to write the generated manifest (default: stdout)")
}

func runReverse(cmd *cobra.Command, args []string) error {
	m, err := reverse.Generate(reverseGameDir)
	if err != nil {
		return errs.Wrap(errs.KindConfiguration, err)
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return errs.Wrap(errs.KindConfiguration, err)
	}

	if reverseOutput == "" {
		fmt.Print(string(data))
		return nil
	}

	if err := os.WriteFile(reverseOutput, data, 0o644); err != nil {
		return errs.Wrap(errs.KindConfiguration, fmt.Errorf("writing manifest: %w", err))
	}
	color.Green("Wrote manifest to %s (%d modules recovered from weidu.log)", reverseOutput, len(m.Modules))
	return nil
}
