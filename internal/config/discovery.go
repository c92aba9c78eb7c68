package config

import (
	"os"
	"path/filepath"
)

// Locate returns the effective config directory the discovery order uses:
// ./modda.yml first, then <config>/modda/modda.yml, unless overridden.
// The override, when non-empty, is used verbatim.
func Locate(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if _, err := os.Stat("modda.yml"); err == nil {
		return ".", nil
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "modda"), nil
}

// ConfigPath returns the modda.yml path for a resolved config directory.
func ConfigPath(dir string) string {
	return filepath.Join(dir, "modda.yml")
}

// CredentialsPath returns the modda-credentials.yml path for a resolved
// config directory — discovered in the same location as modda.yml.
func CredentialsPath(dir string) string {
	return filepath.Join(dir, "modda-credentials.yml")
}
