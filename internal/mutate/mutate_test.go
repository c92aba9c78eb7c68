package mutate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mleduque/modda/internal/manifest"
)

func TestApplyReplaceSubstitutesAcrossGlobMatches(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.tra"), []byte("hello world"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.tra"), []byte("goodbye world"), 0o644))

	op := manifest.ReplaceOp{FileGlobs: []string{"*.tra"}, Replace: "world", With: "there"}
	require.NoError(t, ApplyReplace(root, op))

	a, err := os.ReadFile(filepath.Join(root, "a.tra"))
	require.NoError(t, err)
	assert.Equal(t, "hello there", string(a))

	b, err := os.ReadFile(filepath.Join(root, "b.tra"))
	require.NoError(t, err)
	assert.Equal(t, "goodbye there", string(b))
}

func TestApplyReplaceEmptyMatchSetIsNotAnError(t *testing.T) {
	root := t.TempDir()
	op := manifest.ReplaceOp{FileGlobs: []string{"*.nonexistent"}, Replace: "x", With: "y"}
	assert.NoError(t, ApplyReplace(root, op))
}

func TestApplyReplaceSupportsBackreferences(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "f.tra"), []byte("STRING 100 text"), 0o644))

	op := manifest.ReplaceOp{FileGlobs: []string{"*.tra"}, Replace: `STRING (\d+)`, With: "STR_$1"}
	require.NoError(t, ApplyReplace(root, op))

	data, err := os.ReadFile(filepath.Join(root, "f.tra"))
	require.NoError(t, err)
	assert.Equal(t, "STR_100 text", string(data))
}

func TestApplyAddConfWritesVerbatimAndOverwrites(t *testing.T) {
	root := t.TempDir()
	conf := manifest.AddConf{FileName: "weidu.conf", Content: "lang_dir = en_US\n"}
	require.NoError(t, ApplyAddConf(root, conf))

	require.NoError(t, ApplyAddConf(root, manifest.AddConf{FileName: "weidu.conf", Content: "lang_dir = fr_FR\n"}))

	data, err := os.ReadFile(filepath.Join(root, "weidu.conf"))
	require.NoError(t, err)
	assert.Equal(t, "lang_dir = fr_FR\n", string(data))
}

func TestApplyPatchSingleFileHunk(t *testing.T) {
	root := t.TempDir()
	patchRoot := t.TempDir()

	original := "line one\nline two\nline three\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "readme.txt"), []byte(original), 0o644))

	diff := "--- readme.txt\n" +
		"+++ readme.txt\n" +
		"@@ -1,3 +1,3 @@\n" +
		" line one\n" +
		"-line two\n" +
		"+line TWO\n" +
		" line three\n"
	require.NoError(t, os.WriteFile(filepath.Join(patchRoot, "change.diff"), []byte(diff), 0o644))

	spec := manifest.PatchSpec{Relative: "change.diff", Encoding: manifest.EncodingUTF8}
	require.NoError(t, ApplyPatch(root, patchRoot, spec))

	data, err := os.ReadFile(filepath.Join(root, "readme.txt"))
	require.NoError(t, err)
	assert.Equal(t, "line one\nline TWO\nline three\n", string(data))
}

func TestApplyPatchCRLFPatchPreservesLFTargetEndings(t *testing.T) {
	root := t.TempDir()
	patchRoot := t.TempDir()

	original := "line one\nline two\nline three\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "readme.txt"), []byte(original), 0o644))

	diff := "--- readme.txt\r\n" +
		"+++ readme.txt\r\n" +
		"@@ -1,3 +1,3 @@\r\n" +
		" line one\r\n" +
		"-line two\r\n" +
		"+line TWO\r\n" +
		" line three\r\n"
	require.NoError(t, os.WriteFile(filepath.Join(patchRoot, "change.diff"), []byte(diff), 0o644))

	spec := manifest.PatchSpec{Relative: "change.diff", Encoding: manifest.EncodingUTF8}
	require.NoError(t, ApplyPatch(root, patchRoot, spec))

	data, err := os.ReadFile(filepath.Join(root, "readme.txt"))
	require.NoError(t, err)
	assert.Equal(t, "line one\nline TWO\nline three\n", string(data))
}

func TestApplyPatchLFPatchPreservesCRLFTargetEndings(t *testing.T) {
	root := t.TempDir()
	patchRoot := t.TempDir()

	original := "line one\r\nline two\r\nline three\r\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "readme.txt"), []byte(original), 0o644))

	diff := "--- readme.txt\n" +
		"+++ readme.txt\n" +
		"@@ -1,3 +1,3 @@\n" +
		" line one\n" +
		"-line two\n" +
		"+line TWO\n" +
		" line three\n"
	require.NoError(t, os.WriteFile(filepath.Join(patchRoot, "change.diff"), []byte(diff), 0o644))

	spec := manifest.PatchSpec{Relative: "change.diff", Encoding: manifest.EncodingUTF8}
	require.NoError(t, ApplyPatch(root, patchRoot, spec))

	data, err := os.ReadFile(filepath.Join(root, "readme.txt"))
	require.NoError(t, err)
	assert.Equal(t, "line one\r\nline TWO\r\nline three\r\n", string(data))
}

func TestApplyPatchMismatchedContextFails(t *testing.T) {
	root := t.TempDir()
	patchRoot := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(root, "readme.txt"), []byte("totally different content\n"), 0o644))

	diff := "--- readme.txt\n" +
		"+++ readme.txt\n" +
		"@@ -1,3 +1,3 @@\n" +
		" line one\n" +
		"-line two\n" +
		"+line TWO\n" +
		" line three\n"
	require.NoError(t, os.WriteFile(filepath.Join(patchRoot, "change.diff"), []byte(diff), 0o644))

	spec := manifest.PatchSpec{Relative: "change.diff", Encoding: manifest.EncodingUTF8}
	err := ApplyPatch(root, patchRoot, spec)
	assert.Error(t, err)
}
