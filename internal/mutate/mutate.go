// Package mutate applies a module's declared transformations to its staged
// tree, in the fixed order patch, then replace, then add_conf.
package mutate

import (
	"fmt"

	"github.com/mleduque/modda/internal/manifest"
)

// Apply runs every patch, replace and add_conf entry for mod against its
// staged tree at modRoot. patchRoot resolves PatchSpec.Relative, per
// global.local_patches when set, the manifest directory otherwise.
func Apply(modRoot, patchRoot string, mod manifest.Module) error {
	if mod.Location != nil {
		for _, spec := range mod.Location.Patch() {
			if err := ApplyPatch(modRoot, patchRoot, spec); err != nil {
				return fmt.Errorf("applying patch to %s: %w", mod.Name, err)
			}
		}
		for _, op := range mod.Location.ReplaceOps() {
			if err := ApplyReplace(modRoot, op); err != nil {
				return fmt.Errorf("applying replace to %s: %w", mod.Name, err)
			}
		}
	}
	if mod.AddConf != nil {
		if err := ApplyAddConf(modRoot, *mod.AddConf); err != nil {
			return fmt.Errorf("applying add_conf to %s: %w", mod.Name, err)
		}
	}
	return nil
}
