package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/mleduque/modda/internal/cache"
	"github.com/mleduque/modda/internal/manifest"
)

// DefaultConnectTimeout and DefaultIdleTimeout are the default timeouts for
// the plain HTTP fetcher; callers may override by configuring the
// Resolver's HTTPClient.
const (
	DefaultConnectTimeout = 30 * time.Second
	DefaultIdleTimeout    = 300 * time.Second
)

// HTTPFetcher downloads an archive from a plain URL via a streaming GET,
// writing into a cache.Reservation's partial path.
type HTTPFetcher struct {
	client *http.Client
	url    string
	rename string
}

func newHTTPFetcher(client *http.Client, loc *manifest.HTTPLocation) *HTTPFetcher {
	return &HTTPFetcher{client: client, url: loc.URL, rename: loc.Rename}
}

// Key returns the cache key, built from the final filename (rename or the
// URL's last path segment).
func (f *HTTPFetcher) Key() cache.Key {
	return cache.HTTPKey(f.url, filenameForHTTP(f.url, f.rename))
}

// Fetch streams the body to dst. Redirects are followed by the http.Client
// default policy; any non-2xx status is a fatal fetch error, no retry.
func (f *HTTPFetcher) Fetch(ctx context.Context, dst string, progress ProgressFunc) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", f.url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", f.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("fetch error: %s returned %s", f.url, resp.Status)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	defer out.Close()

	reader := &progressReader{r: resp.Body, total: resp.ContentLength, fn: progress}
	if _, err := io.Copy(out, reader); err != nil {
		return fmt.Errorf("downloading %s: %w", f.url, err)
	}

	return nil
}

type progressReader struct {
	r         io.Reader
	total     int64
	completed int64
	fn        ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 && p.fn != nil {
		p.completed += int64(n)
		p.fn(Progress{TotalBytes: p.total, Downloaded: p.completed})
	}
	return n, err
}

func decodedPath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Path
}

func hashName(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return "archive-" + hex.EncodeToString(sum[:8])
}
