package fetch

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// LocalFetcher resolves a path already present on disk. It never touches
// the archive cache: the resolved path is used in place.
type LocalFetcher struct {
	Path string
}

// Resolve expands a leading "~" and verifies the path exists.
func (f *LocalFetcher) Resolve() (string, error) {
	expanded, err := expandHome(f.Path)
	if err != nil {
		return "", fmt.Errorf("resolving local location %q: %w", f.Path, err)
	}
	if _, err := os.Stat(expanded); err != nil {
		return "", fmt.Errorf("local location %q: %w", expanded, err)
	}
	return expanded, nil
}

func expandHome(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		u, err := user.Current()
		if err != nil {
			return "", err
		}
		return filepath.Join(u.HomeDir, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}
