// Package stage promotes a staged, mutated mod tree into the game
// directory, unless the game directory already has the mod installed.
package stage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mleduque/modda/internal/pathutil"
)

// AlreadyInstalled reports whether gameDir already contains modName's tp2,
// meaning fetch, extract, mutate and promotion should all be skipped.
func AlreadyInstalled(gameDir, modName string) bool {
	modDir := filepath.Join(gameDir, pathutil.CanonicalName(modName))
	_, ok := pathutil.HasTP2(modDir, modName)
	return ok
}

// Promote copies stagedRoot into gameDir under the mod's canonical name,
// preserving file modification times. It is not transactional: on a
// partial failure the caller is responsible for reporting the error, since
// weidu cannot run against a half-copied mod tree either way.
func Promote(stagedRoot, gameDir, modName string) (string, error) {
	dest := filepath.Join(gameDir, pathutil.CanonicalName(modName))
	if err := copyTree(stagedRoot, dest); err != nil {
		return "", fmt.Errorf("promoting %s into game directory: %w", modName, err)
	}
	return dest, nil
}

func copyTree(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if info.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFilePreservingMtime(path, target, info)
	})
}

func copyFilePreservingMtime(src, dst string, info os.FileInfo) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", dst, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode())
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", dst, err)
	}

	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("setting mtime on %s: %w", dst, err)
	}
	return nil
}
