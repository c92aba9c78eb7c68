package mutate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/mleduque/modda/internal/manifest"
	"github.com/mleduque/modda/internal/pathutil"
)

// ApplyPatch applies one unified-diff file to the staged mod tree. The diff
// may cover several target files; each is read, decoded, patched and
// written back independently. Hunk context must match the target file
// exactly — diffmatchpatch's fuzzy matching is disabled so any mismatch is
// reported rather than silently accepted.
func ApplyPatch(modRoot, patchRoot string, spec manifest.PatchSpec) error {
	diffPath := filepath.Join(patchRoot, spec.Relative)
	raw, err := os.ReadFile(diffPath)
	if err != nil {
		return fmt.Errorf("reading patch file %s: %w", diffPath, err)
	}

	files, err := splitUnifiedDiff(string(raw))
	if err != nil {
		return fmt.Errorf("parsing patch file %s: %w", diffPath, err)
	}

	for _, fd := range files {
		if err := applyFileDiff(modRoot, fd, spec.Encoding); err != nil {
			return fmt.Errorf("patch file %s, target %s: %w", spec.Relative, fd.target, err)
		}
	}
	return nil
}

type fileDiff struct {
	target string
	hunks  string
}

// splitUnifiedDiff breaks a multi-file unified diff into one fileDiff per
// "--- "/"+++ " header pair, keeping only the "@@" hunk bodies that follow,
// which is the shape diffmatchpatch's PatchFromText expects.
func splitUnifiedDiff(text string) ([]fileDiff, error) {
	lines := strings.Split(text, "\n")
	var files []fileDiff
	var target string
	var hunks strings.Builder
	flush := func() {
		if target != "" && hunks.Len() > 0 {
			files = append(files, fileDiff{target: target, hunks: hunks.String()})
		}
		hunks.Reset()
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		switch {
		case strings.HasPrefix(line, "--- "):
			flush()
			target = ""
		case strings.HasPrefix(line, "+++ "):
			target = parseDiffHeaderPath(line)
		default:
			if target != "" {
				hunks.WriteString(strings.TrimSuffix(line, "\r"))
				hunks.WriteString("\n")
			}
		}
	}
	flush()

	if len(files) == 0 {
		return nil, fmt.Errorf("no file hunks found in patch")
	}
	return files, nil
}

// parseDiffHeaderPath extracts the path from a "+++ path\t<timestamp>" or
// "+++ b/path" style header line, stripping the common a/ b/ prefixes git
// adds.
func parseDiffHeaderPath(line string) string {
	path := strings.TrimSuffix(strings.TrimPrefix(line, "+++ "), "\r")
	if tab := strings.IndexByte(path, '\t'); tab >= 0 {
		path = path[:tab]
	}
	path = strings.TrimSpace(path)
	path = strings.TrimPrefix(path, "a/")
	path = strings.TrimPrefix(path, "b/")
	return path
}

func applyFileDiff(modRoot string, fd fileDiff, enc manifest.Encoding) error {
	targetPath, err := pathutil.SafeJoin(modRoot, fd.target)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(targetPath)
	if err != nil {
		return fmt.Errorf("reading target: %w", err)
	}
	text, err := decodeText(raw, enc)
	if err != nil {
		return err
	}

	// The target's own line endings are preserved in the output regardless
	// of how the patch file was encoded: both the target and the (already
	// CRLF-stripped) hunk text are matched against as LF-only, then CRLF is
	// restored afterward if that's what the target originally used.
	crlf := strings.Contains(text, "\r\n")
	text = strings.ReplaceAll(text, "\r\n", "\n")

	dmp := diffmatchpatch.New()
	dmp.MatchThreshold = 0
	dmp.MatchDistance = 0
	dmp.PatchDeleteThreshold = 0

	patches, err := dmp.PatchFromText(fd.hunks)
	if err != nil {
		return fmt.Errorf("parsing hunks: %w", err)
	}

	patched, results := dmp.PatchApply(patches, text)
	for i, ok := range results {
		if !ok {
			return fmt.Errorf("hunk %d did not match file context exactly", i+1)
		}
	}

	if crlf {
		patched = strings.ReplaceAll(patched, "\n", "\r\n")
	}

	out, err := encodeText(patched, enc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(targetPath, out, 0o644); err != nil {
		return fmt.Errorf("writing target: %w", err)
	}
	return nil
}
