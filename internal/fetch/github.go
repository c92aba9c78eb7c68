package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/google/go-github/v56/github"
	"golang.org/x/oauth2"

	"github.com/mleduque/modda/internal/cache"
	"github.com/mleduque/modda/internal/config"
	"github.com/mleduque/modda/internal/manifest"
)

// GitHubFetcher resolves a github_user/repository location to an archive:
// either a named asset on a tagged release, or a source tarball at a
// tag/commit/branch reference.
type GitHubFetcher struct {
	client     *github.Client
	httpClient *http.Client
	user, repo string
	coordKind  string
	coordValue string
	release    string
	asset      string
	token      string
}

func newGitHubFetcher(httpClient *http.Client, creds *config.Credentials, loc *manifest.GitHubLocation) (*GitHubFetcher, error) {
	coordKind, coordValue, err := loc.Coordinate()
	if err != nil {
		return nil, err
	}

	var token string
	if loc.Auth != "" {
		name, ok := strings.CutPrefix(loc.Auth, "PAT ")
		if !ok {
			return nil, fmt.Errorf("github location auth must be of the form \"PAT <name>\", got %q", loc.Auth)
		}
		if creds == nil {
			return nil, fmt.Errorf("github location references credential %q but no credentials were loaded", name)
		}
		tok, err := creds.PersonalToken(name)
		if err != nil {
			return nil, err
		}
		token = tok
	}

	client := buildGitHubClient(httpClient, token)

	return &GitHubFetcher{
		client:     client,
		httpClient: httpClient,
		user:       loc.GithubUser,
		repo:       loc.Repository,
		coordKind:  coordKind,
		coordValue: coordValue,
		release:    loc.Release,
		asset:      loc.Asset,
		token:      token,
	}, nil
}

// buildGitHubClient wires an authenticated github.Client via
// golang.org/x/oauth2's static-token source when a PAT is present, or an
// anonymous client otherwise.
func buildGitHubClient(httpClient *http.Client, token string) *github.Client {
	if token == "" {
		return github.NewClient(httpClient)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return github.NewClient(oauth2.NewClient(context.Background(), ts))
}

// Key returns the cache key, built from user/repo and the chosen
// coordinate.
func (f *GitHubFetcher) Key() cache.Key {
	return cache.GitHubKey(f.user, f.repo, f.coordKind, f.coordValue)
}

// Fetch resolves the release/asset or ref and streams the binary to dst.
// Rate-limit responses and missing releases/assets/tags surface as fatal
// fetch errors; the token is never included in any returned error.
func (f *GitHubFetcher) Fetch(ctx context.Context, dst string, progress ProgressFunc) error {
	switch f.coordKind {
	case "release":
		return f.fetchReleaseAsset(ctx, dst, progress)
	default:
		return f.fetchRefTarball(ctx, dst, progress)
	}
}

func (f *GitHubFetcher) fetchReleaseAsset(ctx context.Context, dst string, progress ProgressFunc) error {
	release, _, err := f.client.Repositories.GetReleaseByTag(ctx, f.user, f.repo, f.release)
	if err != nil {
		return fmt.Errorf("resolving release %s for %s/%s: %w", f.release, f.user, f.repo, err)
	}

	var assetID int64 = -1
	for _, a := range release.Assets {
		if a.GetName() == f.asset {
			assetID = a.GetID()
			break
		}
	}
	if assetID < 0 {
		return fmt.Errorf("asset %q not found in release %s of %s/%s", f.asset, f.release, f.user, f.repo)
	}

	rc, redirectURL, err := f.client.Repositories.DownloadReleaseAsset(ctx, f.user, f.repo, assetID, f.httpClient)
	if err != nil {
		return fmt.Errorf("downloading asset %s: %w", f.asset, err)
	}
	if rc == nil && redirectURL != "" {
		return f.streamURL(ctx, redirectURL, dst, progress)
	}
	defer rc.Close()
	return writeStream(rc, -1, dst, progress)
}

func (f *GitHubFetcher) fetchRefTarball(ctx context.Context, dst string, progress ProgressFunc) error {
	archiveURL, _, err := f.client.Repositories.GetArchiveLink(ctx, f.user, f.repo, github.Tarball, &github.RepositoryContentGetOptions{Ref: f.coordValue}, 3)
	if err != nil {
		return fmt.Errorf("resolving archive for %s/%s@%s: %w", f.user, f.repo, f.coordValue, err)
	}
	return f.streamURL(ctx, archiveURL.String(), dst, progress)
}

func (f *GitHubFetcher) streamURL(ctx context.Context, rawURL, dst string, progress ProgressFunc) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("downloading: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("github rate limit or access denied: %s", resp.Status)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("github fetch error: %s", resp.Status)
	}

	return writeStream(resp.Body, resp.ContentLength, dst, progress)
}

func writeStream(r io.Reader, total int64, dst string, progress ProgressFunc) error {
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	defer out.Close()

	pr := &progressReader{r: r, total: total, fn: progress}
	if _, err := io.Copy(out, pr); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	return nil
}
