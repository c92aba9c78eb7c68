package mutate

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/mleduque/modda/internal/manifest"
)

// ApplyReplace glob-expands op.FileGlobs under modRoot and runs a regex
// substitution over each matched file. An empty match set is not an error;
// the operation is a no-op for that file.
func ApplyReplace(modRoot string, op manifest.ReplaceOp) error {
	re, err := regexp.Compile(op.Replace)
	if err != nil {
		return fmt.Errorf("compiling replace pattern %q: %w", op.Replace, err)
	}

	var matched []string
	for _, pattern := range op.FileGlobs {
		files, err := filepath.Glob(filepath.Join(modRoot, pattern))
		if err != nil {
			return fmt.Errorf("expanding glob %q: %w", pattern, err)
		}
		matched = append(matched, files...)
	}

	for _, path := range matched {
		if err := replaceInFile(path, re, op.With); err != nil {
			return fmt.Errorf("replacing in %s: %w", path, err)
		}
	}
	return nil
}

func replaceInFile(path string, re *regexp.Regexp, with string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	text, usedFallback, err := decodeAdvisory(raw)
	if err != nil {
		return err
	}
	if usedFallback {
		slog.Warn("replace: file was not valid UTF-8, used WIN1252 fallback", "file", path)
	}

	updated := re.ReplaceAllString(text, with)
	return os.WriteFile(path, []byte(updated), 0o644)
}
