// Package driver sequences the end-to-end installation of a manifest:
// fetch, extract, mutate and stage each mod, then drive weidu
// component-by-component, halting the whole run on the first failure.
package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/mleduque/modda/internal/config"
	"github.com/mleduque/modda/internal/errs"
	"github.com/mleduque/modda/internal/extract"
	"github.com/mleduque/modda/internal/fetch"
	"github.com/mleduque/modda/internal/manifest"
	"github.com/mleduque/modda/internal/mutate"
	"github.com/mleduque/modda/internal/pathutil"
	"github.com/mleduque/modda/internal/stage"
	"github.com/mleduque/modda/internal/weidu"
)

// ProgressFunc reports driver-level lifecycle events so the CLI layer can
// drive a spinner or progress bar without the driver knowing about
// terminals.
type ProgressFunc func(event Event)

// Event names a point in the install pipeline a caller may want to render.
type Event struct {
	ModuleIndex int
	ModuleName  string
	Stage       string // fetch, extract, mutate, stage, weidu
}

// Driver owns the collaborators needed to carry a manifest through to an
// installed game directory.
type Driver struct {
	Manifest  *manifest.Manifest
	Config    *config.Configuration
	Resolver  *fetch.Resolver
	Extractor *extract.Registry
	GameDir   string
	Progress  ProgressFunc
	// Prefetch, when true, resolves every module's archive concurrently
	// before the sequential install loop begins; installation itself is
	// always strictly sequential regardless of this setting.
	Prefetch bool
}

// ComponentFailure reports which module/component halted the run.
type ComponentFailure struct {
	ModuleIndex    int
	ModuleName     string
	ComponentIndex int
	Outcome        weidu.Outcome
}

func (f *ComponentFailure) Error() string {
	return fmt.Sprintf("module %d (%s), component %d: %s", f.ModuleIndex, f.ModuleName, f.ComponentIndex, f.Outcome)
}

// Run carries every module in the manifest through fetch/extract/mutate/
// stage/weidu, in order, stopping at the first failing component.
func (d *Driver) Run(ctx context.Context) error {
	weiduPath, err := weidu.Locate(d.Config.WeiduPath, d.GameDir)
	if err != nil {
		return errs.Wrap(errs.KindConfiguration, fmt.Errorf("setup: %w", err))
	}

	if d.Prefetch {
		if err := d.prefetchAll(ctx); err != nil {
			return errs.Wrap(errs.KindFetch, err)
		}
	}

	for i, mod := range d.Manifest.Modules {
		if err := d.runModule(ctx, weiduPath, i, mod); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) prefetchAll(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, mod := range d.Manifest.Modules {
		mod := mod
		if mod.Location == nil {
			continue
		}
		g.Go(func() error {
			_, err := d.Resolver.Resolve(ctx, mod.Location, nil)
			return err
		})
	}
	return g.Wait()
}

func (d *Driver) runModule(ctx context.Context, weiduPath string, index int, mod manifest.Module) error {
	d.report(index, mod.Name, "stage")

	if stage.AlreadyInstalled(d.GameDir, mod.Name) {
		modDir := filepath.Join(d.GameDir, pathutil.CanonicalName(mod.Name))
		return d.runComponents(ctx, weiduPath, index, mod, modDir)
	}

	if mod.Location == nil {
		return errs.Wrap(errs.KindConfiguration, fmt.Errorf("module %s has no location and is not already staged in the game directory", mod.Name))
	}

	d.report(index, mod.Name, "fetch")
	archivePath, err := d.Resolver.Resolve(ctx, mod.Location, nil)
	if err != nil {
		return errs.Wrap(errs.KindFetch, fmt.Errorf("fetching %s: %w", mod.Name, err))
	}

	d.report(index, mod.Name, "extract")
	stagingParent, err := os.MkdirTemp(d.Config.ExtractLocation, "modda-stage-")
	if err != nil {
		return errs.Wrap(errs.KindExtraction, fmt.Errorf("creating staging area for %s: %w", mod.Name, err))
	}
	defer os.RemoveAll(stagingParent)

	stagedRoot, err := d.Extractor.Unpack(archivePath, stagingParent, mod.Name)
	if err != nil {
		return errs.Wrap(errs.KindExtraction, fmt.Errorf("extracting %s: %w", mod.Name, err))
	}

	d.report(index, mod.Name, "mutate")
	if err := mutate.Apply(stagedRoot, d.Manifest.PatchRoot(), mod); err != nil {
		return errs.Wrap(errs.KindMutation, err)
	}

	d.report(index, mod.Name, "stage")
	modDir, err := stage.Promote(stagedRoot, d.GameDir, mod.Name)
	if err != nil {
		return errs.Wrap(errs.KindExtraction, err)
	}

	return d.runComponents(ctx, weiduPath, index, mod, modDir)
}

func (d *Driver) runComponents(ctx context.Context, weiduPath string, index int, mod manifest.Module, modDir string) error {
	if mod.Components.IsEmpty() {
		return nil
	}

	d.report(index, mod.Name, "weidu")

	tp2Path, ok := pathutil.HasTP2(modDir, mod.Name)
	if !ok {
		return errs.Wrap(errs.KindInstall, fmt.Errorf("module %s: no .tp2 found in %s", mod.Name, modDir))
	}

	langs, err := weidu.ListLanguages(ctx, weiduPath, d.GameDir, tp2Path)
	if err != nil {
		return errs.Wrap(errs.KindInstall, fmt.Errorf("module %s: %w", mod.Name, err))
	}
	langIndex, err := weidu.ResolveLanguageIndex(d.Manifest.Global.LangPreferences, langs)
	if err != nil {
		return errs.Wrap(errs.KindInstall, fmt.Errorf("module %s: %w", mod.Name, err))
	}

	logPath := filepath.Join(d.GameDir, "setup-"+pathutil.CanonicalName(mod.Name)+".log")

	if mod.Components.Ask {
		return d.runInvocation(ctx, index, mod, 0, weidu.Invocation{
			WeiduPath: weiduPath, GameDir: d.GameDir, TP2Path: tp2Path,
			LangIndex: langIndex, LangDir: d.Manifest.Global.LangDir,
			Component: "ask", IgnoreWarnings: mod.IgnoreWarnings,
			LogPath: logPath, Interactive: true,
		})
	}

	for ci, selector := range mod.Components.Selectors {
		component := fmt.Sprintf("%d", selector.Index)
		if err := d.runInvocation(ctx, index, mod, ci, weidu.Invocation{
			WeiduPath: weiduPath, GameDir: d.GameDir, TP2Path: tp2Path,
			LangIndex: langIndex, LangDir: d.Manifest.Global.LangDir,
			Component: component, IgnoreWarnings: mod.IgnoreWarnings,
			LogPath: logPath,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) runInvocation(ctx context.Context, moduleIndex int, mod manifest.Module, componentIndex int, inv weidu.Invocation) error {
	res, err := weidu.Run(ctx, inv)
	if err != nil {
		return errs.Wrap(errs.KindInstall, fmt.Errorf("module %s, component %s: %w", mod.Name, inv.Component, err))
	}
	if res.Outcome != weidu.Succeeded && res.Outcome != weidu.WarnAccepted {
		return errs.Wrap(errs.KindInstall, &ComponentFailure{
			ModuleIndex: moduleIndex, ModuleName: mod.Name,
			ComponentIndex: componentIndex, Outcome: res.Outcome,
		})
	}
	return nil
}

func (d *Driver) report(moduleIndex int, moduleName, stageName string) {
	if d.Progress != nil {
		d.Progress(Event{ModuleIndex: moduleIndex, ModuleName: moduleName, Stage: stageName})
	}
}
