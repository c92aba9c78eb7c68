package extract

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func writeTarGz(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		hdr := &tar.Header{Name: name, Mode: 0o644, Size: int64(len(content))}
		require.NoError(t, tw.WriteHeader(hdr))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
}

func TestDetectCompoundExtensions(t *testing.T) {
	assert.Equal(t, ".tar.gz", detect("mymod.tar.gz"))
	assert.Equal(t, ".tgz", detect("mymod.tgz"))
	assert.Equal(t, ".zip", detect("MyMod.ZIP"))
	assert.Equal(t, ".tar.bz2", detect("mymod.tar.bz2"))
}

func TestUnpackZipWithSingleRootContainingTP2(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "mymod.zip")
	writeZip(t, archivePath, map[string]string{
		"mymod/mymod.tp2":     "// tp2",
		"mymod/readme.txt":    "hello",
		"mymod/sub/file.data": "x",
	})

	registry := NewRegistry(nil)
	root, err := registry.Unpack(archivePath, dir, "mymod")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "mymod"), root)

	data, err := os.ReadFile(filepath.Join(root, "mymod.tp2"))
	require.NoError(t, err)
	assert.Equal(t, "// tp2", string(data))
}

func TestUnpackZipWithoutSingleRootUsesStagingAsRoot(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "flatmod.zip")
	writeZip(t, archivePath, map[string]string{
		"flatmod.tp2": "// tp2",
		"readme.txt":  "hello",
	})

	registry := NewRegistry(nil)
	root, err := registry.Unpack(archivePath, dir, "flatmod")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "flatmod"), root)
	_, err = os.Stat(filepath.Join(root, "flatmod.tp2"))
	require.NoError(t, err)
}

func TestUnpackTarGz(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "mymod.tar.gz")
	writeTarGz(t, archivePath, map[string]string{
		"mymod/setup-mymod.tp2": "// tp2",
	})

	registry := NewRegistry(nil)
	root, err := registry.Unpack(archivePath, dir, "mymod")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "setup-mymod.tp2"))
	require.NoError(t, err)
}

func TestUnpackRejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "evil.zip")
	writeZip(t, archivePath, map[string]string{
		"../../etc/passwd": "pwned",
	})

	registry := NewRegistry(nil)
	_, err := registry.Unpack(archivePath, dir, "evil")
	assert.Error(t, err)
}

func TestUnknownExtensionWithoutExternalConfigFails(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "mymod.7z")
	require.NoError(t, os.WriteFile(archivePath, []byte("not really 7z"), 0o644))

	registry := NewRegistry(nil)
	_, err := registry.Unpack(archivePath, dir, "mymod")
	assert.Error(t, err)
}

func TestZipExtractorRejectsSymlinkEntry(t *testing.T) {
	// archive/zip does not provide a direct symlink-writing API in this
	// test, so we assert the guard function directly via its mode check.
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	hdr := &zip.FileHeader{Name: "link", Method: zip.Store}
	hdr.SetMode(os.ModeSymlink | 0o777)
	w, err := zw.CreateHeader(hdr)
	require.NoError(t, err)
	_, err = w.Write([]byte("target"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	r, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	err = extractZipEntry(r.File[0], t.TempDir())
	assert.Error(t, err)
}
