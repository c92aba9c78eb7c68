// Package pathutil provides path canonicalization and archive-entry safety
// checks shared by the extractors, mutators and stager.
package pathutil

import (
	"fmt"
	"path/filepath"
	"strings"
)

// CanonicalName case-folds a mod or component identifier so that two names
// differing only in case resolve to the same on-disk directory or weidu
// reference.
func CanonicalName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// SafeJoin joins root and entry, rejecting any entry whose normalized path
// is absolute or escapes root via a ".." segment. It mirrors the zip-slip
// guard a archive extractor needs, but is also used by the patch mutator
// validating the target paths named in a diff.
func SafeJoin(root, entry string) (string, error) {
	clean := filepath.Clean(entry)
	if filepath.IsAbs(clean) {
		return "", fmt.Errorf("path traversal: absolute entry %q", entry)
	}

	joined := filepath.Join(root, clean)
	rootWithSep := filepath.Clean(root) + string(filepath.Separator)
	if joined != filepath.Clean(root) && !strings.HasPrefix(joined, rootWithSep) {
		return "", fmt.Errorf("path traversal: entry %q escapes root", entry)
	}

	return joined, nil
}

// HasTP2 reports whether dir contains the mod's .tp2 script, checking both
// the `<name>.tp2` and `setup-<name>.tp2` naming conventions weidu accepts.
func HasTP2(dir, modName string) (string, bool) {
	canon := CanonicalName(modName)
	for _, candidate := range []string{canon + ".tp2", "setup-" + canon + ".tp2"} {
		full := filepath.Join(dir, candidate)
		if fileExists(full) {
			return full, true
		}
	}
	return "", false
}
