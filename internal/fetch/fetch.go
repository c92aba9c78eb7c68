// Package fetch resolves a manifest Location into a local archive path,
// going through the shared archive cache so a second fetch for the same
// origin is pure cache I/O.
package fetch

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"path/filepath"

	"github.com/mleduque/modda/internal/cache"
	"github.com/mleduque/modda/internal/config"
	"github.com/mleduque/modda/internal/manifest"
)

// Progress reports download byte counts so the CLI layer can drive a
// progress bar off it without the fetch package knowing about terminals.
type Progress struct {
	TotalBytes int64
	Downloaded int64
}

// ProgressFunc is invoked periodically during a streaming download.
type ProgressFunc func(Progress)

// Fetcher resolves one Location variant into a local file, reserving and
// completing a cache entry around the actual transfer.
type Fetcher interface {
	// Key returns the cache key this fetch would occupy, without touching
	// the network — used to check the cache before doing any I/O.
	Key() cache.Key
	// Fetch performs the transfer into dst (the reservation's partial
	// path). It does not consult the cache itself; the Resolver calls it
	// only when the cache doesn't already hold the key.
	Fetch(ctx context.Context, dst string, progress ProgressFunc) error
}

// Resolver builds the concrete Fetcher for a Location and owns the shared
// collaborators (HTTP client, credentials, archive cache).
type Resolver struct {
	HTTPClient *http.Client
	Creds      *config.Credentials
	Cache      *cache.Cache
}

// NewResolver creates a Resolver with sane defaults; a nil httpClient
// falls back to a client built on http.DefaultTransport's settings with
// DefaultConnectTimeout and DefaultIdleTimeout applied.
func NewResolver(archiveCache *cache.Cache, creds *config.Credentials, httpClient *http.Client) *Resolver {
	if httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.DialContext = (&net.Dialer{Timeout: DefaultConnectTimeout}).DialContext
		transport.IdleConnTimeout = DefaultIdleTimeout
		httpClient = &http.Client{Transport: transport}
	}
	return &Resolver{HTTPClient: httpClient, Creds: creds, Cache: archiveCache}
}

// Resolve returns the local archive path for loc, fetching it if not
// already cached. Local locations are resolved in place (with `~`
// expansion) and never go through the cache.
func (r *Resolver) Resolve(ctx context.Context, loc *manifest.Location, progress ProgressFunc) (string, error) {
	// Local locations never touch the cache: the path is used in place, and
	// LocalFetcher has no cache key to reserve in the first place.
	if loc.Kind == manifest.LocationLocal {
		local := &LocalFetcher{Path: loc.Local.Path}
		return local.Resolve()
	}

	fetcher, err := r.build(loc)
	if err != nil {
		return "", err
	}

	key := fetcher.Key()
	if path, ok := r.Cache.Lookup(key); ok {
		return path, nil
	}

	reservation, err := r.Cache.Reserve(key)
	if err != nil {
		return "", fmt.Errorf("reserving cache slot: %w", err)
	}

	// A concurrent fetch for the same key may have completed while we
	// waited for the lock; check again before downloading.
	if path, ok := r.Cache.Lookup(key); ok {
		reservation.Abort()
		return path, nil
	}

	if err := fetcher.Fetch(ctx, reservation.PartialPath(), progress); err != nil {
		reservation.Abort()
		return "", err
	}

	if err := reservation.Complete(); err != nil {
		return "", err
	}

	return reservation.Path(), nil
}

// build constructs the cache-backed Fetcher for loc. Local locations are
// handled by the caller before build is reached, since LocalFetcher doesn't
// implement Fetcher: it has no cache key and nothing to transfer.
func (r *Resolver) build(loc *manifest.Location) (Fetcher, error) {
	switch loc.Kind {
	case manifest.LocationHTTP:
		return newHTTPFetcher(r.HTTPClient, loc.HTTP), nil
	case manifest.LocationGitHub:
		return newGitHubFetcher(r.HTTPClient, r.Creds, loc.GitHub)
	default:
		return nil, fmt.Errorf("location has no populated variant")
	}
}

// filenameForHTTP picks the archive filename: the rename override, or the
// last percent-decoded path segment of the URL, or a hash-based fallback.
func filenameForHTTP(rawURL, rename string) string {
	if rename != "" {
		return rename
	}
	if name := lastSegment(rawURL); name != "" {
		return name
	}
	return hashName(rawURL)
}

func lastSegment(rawURL string) string {
	base := filepath.Base(decodedPath(rawURL))
	if base == "." || base == "/" || base == `\` {
		return ""
	}
	return base
}
