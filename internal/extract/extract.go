// Package extract unpacks a fetched archive into a staging directory and
// computes the effective mod root: the single top-level directory when it
// holds the mod's tp2 file, otherwise the staging directory itself, renamed
// to the mod's canonical name.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/mleduque/modda/internal/config"
	"github.com/mleduque/modda/internal/pathutil"
)

// Extractor unpacks one archive format into a destination directory.
type Extractor interface {
	Extract(archivePath, destDir string) error
}

// Registry dispatches by file extension to a built-in or externally
// configured extractor.
type Registry struct {
	cfg *config.Configuration
}

// NewRegistry builds a Registry that consults cfg for external extractor
// commands when an extension has no built-in handler.
func NewRegistry(cfg *config.Configuration) *Registry {
	return &Registry{cfg: cfg}
}

// compoundExtensions lists multi-segment suffixes that must be matched
// before filepath.Ext's single-segment view would shadow them.
var compoundExtensions = []string{".tar.gz", ".tar.bz2", ".tar.xz", ".tgz"}

// detect returns the canonical lowercase extension used for dispatch.
func detect(archivePath string) string {
	lower := strings.ToLower(archivePath)
	for _, ext := range compoundExtensions {
		if strings.HasSuffix(lower, ext) {
			return ext
		}
	}
	return strings.ToLower(filepath.Ext(lower))
}

// Unpack extracts archivePath into a fresh staging directory under
// stagingParent, then normalizes the result to the canonical mod root and
// renames it to modName. It returns the final mod root path.
func (r *Registry) Unpack(archivePath, stagingParent, modName string) (string, error) {
	// A random suffix keeps two Unpack calls that share a stagingParent from
	// racing on the same scratch directory before the result is renamed to
	// its canonical name below.
	staging := filepath.Join(stagingParent, "staging-"+pathutil.CanonicalName(modName)+"-"+uuid.NewString())
	if err := os.RemoveAll(staging); err != nil {
		return "", fmt.Errorf("clearing staging directory %s: %w", staging, err)
	}
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return "", fmt.Errorf("creating staging directory %s: %w", staging, err)
	}

	extractor, err := r.lookup(archivePath)
	if err != nil {
		os.RemoveAll(staging)
		return "", err
	}

	if err := extractor.Extract(archivePath, staging); err != nil {
		os.RemoveAll(staging)
		return "", fmt.Errorf("extracting %s: %w", archivePath, err)
	}

	root, err := effectiveRoot(staging, modName)
	if err != nil {
		return "", err
	}

	finalPath := filepath.Join(stagingParent, pathutil.CanonicalName(modName))
	if root != finalPath {
		if err := os.RemoveAll(finalPath); err != nil {
			return "", fmt.Errorf("clearing prior staged mod %s: %w", finalPath, err)
		}
		if err := os.Rename(root, finalPath); err != nil {
			return "", fmt.Errorf("renaming %s to %s: %w", root, finalPath, err)
		}
	}

	return finalPath, nil
}

func (r *Registry) lookup(archivePath string) (Extractor, error) {
	ext := detect(archivePath)
	switch ext {
	case ".zip":
		return &zipExtractor{}, nil
	case ".tar":
		return &tarExtractor{compression: compressionNone}, nil
	case ".tar.gz", ".tgz":
		return &tarExtractor{compression: compressionGzip}, nil
	case ".tar.bz2":
		return &tarExtractor{compression: compressionBzip2}, nil
	}

	if r.cfg != nil {
		if cmd, ok := r.cfg.ExtractorFor(ext); ok {
			return &externalExtractor{cmd: cmd}, nil
		}
	}
	return nil, fmt.Errorf("no extractor configured for extension %q", ext)
}

// effectiveRoot decides whether staging itself, or its single top-level
// entry, is the mod root: the latter only when that entry is a directory
// containing the mod's tp2 file.
func effectiveRoot(staging, modName string) (string, error) {
	entries, err := os.ReadDir(staging)
	if err != nil {
		return "", fmt.Errorf("reading staging directory %s: %w", staging, err)
	}
	if len(entries) == 1 && entries[0].IsDir() {
		candidate := filepath.Join(staging, entries[0].Name())
		if _, ok := pathutil.HasTP2(candidate, modName); ok {
			return candidate, nil
		}
	}
	return staging, nil
}
