package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mleduque/modda/internal/cache"
	"github.com/mleduque/modda/internal/manifest"
)

func TestResolveHTTPCachesAcrossCalls(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("archive-bytes"))
	}))
	defer server.Close()

	archiveCache, err := cache.New(t.TempDir())
	require.NoError(t, err)
	resolver := NewResolver(archiveCache, nil, server.Client())

	loc := &manifest.Location{Kind: manifest.LocationHTTP, HTTP: &manifest.HTTPLocation{
		URL:    server.URL + "/mod.zip",
		Rename: "mod.zip",
	}}

	path1, err := resolver.Resolve(context.Background(), loc, nil)
	require.NoError(t, err)
	data, err := os.ReadFile(path1)
	require.NoError(t, err)
	assert.Equal(t, "archive-bytes", string(data))
	assert.Equal(t, 1, hits)

	path2, err := resolver.Resolve(context.Background(), loc, nil)
	require.NoError(t, err)
	assert.Equal(t, path1, path2)
	assert.Equal(t, 1, hits, "second resolve must not hit the network")
}

func TestResolveHTTPNon2xxIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	archiveCache, err := cache.New(t.TempDir())
	require.NoError(t, err)
	resolver := NewResolver(archiveCache, nil, server.Client())

	loc := &manifest.Location{Kind: manifest.LocationHTTP, HTTP: &manifest.HTTPLocation{URL: server.URL + "/mod.zip"}}
	_, err = resolver.Resolve(context.Background(), loc, nil)
	assert.Error(t, err)
}

func TestResolveLocalDoesNotTouchCache(t *testing.T) {
	dir := t.TempDir()
	modFile := filepath.Join(dir, "mod.zip")
	require.NoError(t, os.WriteFile(modFile, []byte("x"), 0644))

	archiveCache, err := cache.New(t.TempDir())
	require.NoError(t, err)
	resolver := NewResolver(archiveCache, nil, nil)

	loc := &manifest.Location{Kind: manifest.LocationLocal, Local: &manifest.LocalLocation{Path: modFile}}
	path, err := resolver.Resolve(context.Background(), loc, nil)
	require.NoError(t, err)
	assert.Equal(t, modFile, path)
}

func TestFilenameForHTTPUsesRenameOverDispositionOrURL(t *testing.T) {
	assert.Equal(t, "chosen.zip", filenameForHTTP("https://example.com/real.zip", "chosen.zip"))
	assert.Equal(t, "real.zip", filenameForHTTP("https://example.com/path/real.zip", ""))
}
