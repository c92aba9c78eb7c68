package reverse

import (
	"fmt"
	"path/filepath"

	"github.com/mleduque/modda/internal/manifest"
)

// Generate builds a manifest fragment from a game directory's weidu.log and
// weidu.conf, ready to be written out for the user to fill in Location
// entries by hand (reverse generation only ever recovers component
// selections and language settings, never mod origins).
func Generate(gameDir string) (*manifest.Manifest, error) {
	modules, err := ParseWeiduLog(filepath.Join(gameDir, "weidu.log"))
	if err != nil {
		return nil, fmt.Errorf("reverse generating manifest: %w", err)
	}

	global := manifest.Global{}
	if langDir, err := ParseWeiduConf(filepath.Join(gameDir, "weidu.conf")); err == nil && langDir != "" {
		global.LangDir = langDir
		global.LangPreferences = GuessLangPreferences(langDir)
	}

	return &manifest.Manifest{
		Version: "1",
		Global:  global,
		Modules: modules,
	}, nil
}
