package mutate

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mleduque/modda/internal/manifest"
)

// ApplyAddConf writes conf.Content verbatim to conf.FileName inside
// modRoot, overwriting any pre-existing file of that name.
func ApplyAddConf(modRoot string, conf manifest.AddConf) error {
	path := filepath.Join(modRoot, conf.FileName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", conf.FileName, err)
	}
	if err := os.WriteFile(path, []byte(conf.Content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", conf.FileName, err)
	}
	return nil
}
