package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/mleduque/modda/internal/cache"
	"github.com/mleduque/modda/internal/config"
	"github.com/mleduque/modda/internal/driver"
	"github.com/mleduque/modda/internal/errs"
	"github.com/mleduque/modda/internal/extract"
	"github.com/mleduque/modda/internal/fetch"
	"github.com/mleduque/modda/internal/manifest"
)

var (
	installManifestPath string
	installGameDir      string
	installPrefetch     bool
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Run the installation pipeline against a manifest",
	RunE:  runInstall,
}

func init() {
	installCmd.Flags().StringVar(&installManifestPath, "manifest", "", "path to the manifest YAML file")
	installCmd.Flags().StringVar(&installGameDir, "game-dir", "", "path to the game directory")
	installCmd.Flags().BoolVar(&installPrefetch, "prefetch", false, "resolve every module's archive concurrently before installing")
	installCmd.MarkFlagRequired("manifest")
}

func runInstall(cmd *cobra.Command, args []string) error {
	if installGameDir == "" {
		installGameDir = "."
	}

	m, err := manifest.Load(installManifestPath)
	if err != nil {
		return errs.Wrap(errs.KindManifest, err)
	}

	configDir, err := config.Locate(configOverride)
	if err != nil {
		return errs.Wrap(errs.KindConfiguration, err)
	}
	cfg, err := config.Load(config.ConfigPath(configDir))
	if err != nil {
		return errs.Wrap(errs.KindConfiguration, err)
	}
	creds, err := config.LoadCredentials(config.CredentialsPath(configDir))
	if err != nil {
		return errs.Wrap(errs.KindConfiguration, err)
	}

	archiveCache, err := cache.New(cfg.ArchiveCache)
	if err != nil {
		return errs.Wrap(errs.KindConfiguration, err)
	}

	bar, _ := pterm.DefaultProgressbar.WithTotal(len(m.Modules)).WithTitle("Installing mods").Start()
	seen := -1

	d := &driver.Driver{
		Manifest:  m,
		Config:    cfg,
		Resolver:  fetch.NewResolver(archiveCache, creds, nil),
		Extractor: extract.NewRegistry(cfg),
		GameDir:   installGameDir,
		Prefetch:  installPrefetch,
		Progress: func(ev driver.Event) {
			bar.UpdateTitle(fmt.Sprintf("%s: %s", ev.ModuleName, ev.Stage))
			if ev.ModuleIndex != seen {
				seen = ev.ModuleIndex
				bar.Increment()
			}
		},
	}

	runErr := d.Run(context.Background())
	bar.Stop()

	if runErr != nil {
		reportFailure(runErr, installGameDir)
	} else {
		pterm.Success.Println("Installation complete")
	}
	return runErr
}

// reportFailure prints the block of context ERROR HANDLING DESIGN promises:
// the failing module and index, the component if applicable, and the tail
// of its setup log.
func reportFailure(err error, gameDir string) {
	var cf *driver.ComponentFailure
	if errors.As(err, &cf) {
		fmt.Fprintln(os.Stderr, color.RedString("Module %d (%s), component %d failed: %s", cf.ModuleIndex, cf.ModuleName, cf.ComponentIndex, cf.Outcome))
		logPath := gameDir + "/setup-" + strings.ToLower(cf.ModuleName) + ".log"
		if tail, tailErr := logTail(logPath, 20); tailErr == nil {
			fmt.Fprintln(os.Stderr, color.YellowString("--- tail of %s ---", logPath))
			fmt.Fprintln(os.Stderr, tail)
		}
		return
	}
	fmt.Fprintln(os.Stderr, color.RedString("%v", err))
}

func logTail(path string, n int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if len(lines) > n {
			lines = lines[1:]
		}
	}
	return strings.Join(lines, "\n"), scanner.Err()
}
