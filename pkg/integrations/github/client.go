package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/releasestats/pkg/cache"
	apperrors "github.com/matzehuels/releasestats/pkg/errors"
	"github.com/matzehuels/releasestats/pkg/integrations"
)

const (
	// DefaultBaseURL is the GitHub REST API root.
	DefaultBaseURL = "https://api.github.com"

	// PageSize is the number of releases GitHub returns per page when no
	// per_page parameter is sent. A shorter page is the last one.
	PageSize = 30

	// FirstPage is the index of the first releases page.
	FirstPage = 1
)

// Options configures a [Client].
type Options struct {
	Token      string        // Bearer token sent on every request
	BaseURL    string        // API root, DefaultBaseURL if empty
	UserAgent  string        // User-Agent header, integrations.DefaultUserAgent if empty
	Store      cache.Store   // Raw page cache; nil disables caching
	Timeout    time.Duration // Per-request timeout; 0 means none
	HTTPClient *http.Client  // Overrides the token-authenticated client (tests)
}

// Client fetches release pages from the GitHub API.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a GitHub releases client.
// The token is attached as a bearer credential; validating its presence is
// the caller's job, so an empty token simply sends an empty credential.
func NewClient(opts Options) (*Client, error) {
	baseURL := strings.TrimSuffix(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if err := apperrors.ValidateURL(baseURL); err != nil {
		return nil, err
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = integrations.DefaultUserAgent
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = integrations.NewAuthHTTPClient(opts.Token, opts.Timeout)
	}

	headers := map[string]string{
		"Accept":     "application/vnd.github+json",
		"User-Agent": userAgent,
	}

	return &Client{
		Client:  integrations.NewClient(httpClient, opts.Store, headers),
		baseURL: baseURL,
	}, nil
}

// ReleasesURL returns the URL of one page of a repository's releases.
func (c *Client) ReleasesURL(owner, repo string, page int) string {
	return fmt.Sprintf("%s/repos/%s/%s/releases?page=%d",
		c.baseURL, url.PathEscape(owner), url.PathEscape(repo), page)
}

// PageKey returns the cache key of a releases page: <repo>-downloads-<page>.json.
// With the default file store this is /tmp/<repo>-downloads-<page>.json.
func PageKey(repo string, page int) string {
	return fmt.Sprintf("%s-downloads-%d.json", repo, page)
}

// PageKeyPattern matches every cached page key of repo.
func PageKeyPattern(repo string) string {
	return repo + "-downloads-*.json"
}

// FetchPage returns one page of releases, newest first.
//
// If the page's cache entry is fresh, no request is made and the cached body
// is parsed instead. Otherwise exactly one GET is issued and its raw body is
// written to the cache before parsing. A body that fails to parse is removed
// from the cache again so the next run refetches it.
func (c *Client) FetchPage(ctx context.Context, owner, repo string, page int) ([]Release, error) {
	if err := ValidateRepoRef(owner, repo); err != nil {
		return nil, err
	}

	key := PageKey(repo, page)
	body, _, err := c.Cached(ctx, key, false, func() ([]byte, error) {
		return c.GetBytes(ctx, c.ReleasesURL(owner, repo, page))
	})
	if err != nil {
		return nil, fmt.Errorf("fetch page %d: %w", page, err)
	}

	releases, err := ParseReleases(body)
	if err != nil {
		_ = c.Store().Delete(ctx, key)
		return nil, fmt.Errorf("page %d: %w", page, err)
	}
	return releases, nil
}

// FetchPages fetches successive pages starting at [FirstPage] while the most
// recent page held exactly [PageSize] releases, stopping at the first short
// page. Pages are requested one after another and returned in fetch order.
// Any failure aborts the whole fetch.
func (c *Client) FetchPages(ctx context.Context, owner, repo string) ([][]Release, error) {
	var pages [][]Release
	for page := FirstPage; ; page++ {
		releases, err := c.FetchPage(ctx, owner, repo, page)
		if err != nil {
			return nil, err
		}
		pages = append(pages, releases)
		if len(releases) != PageSize {
			return pages, nil
		}
	}
}

// FetchAll returns every release of the repository, concatenated in fetch
// order (page 1 first, so newest release first).
func (c *Client) FetchAll(ctx context.Context, owner, repo string) ([]Release, error) {
	pages, err := c.FetchPages(ctx, owner, repo)
	if err != nil {
		return nil, err
	}
	return Flatten(pages), nil
}

// Flatten concatenates pages in order.
func Flatten(pages [][]Release) []Release {
	n := 0
	for _, p := range pages {
		n += len(p)
	}
	out := make([]Release, 0, n)
	for _, p := range pages {
		out = append(out, p...)
	}
	return out
}

// ParseReleases decodes a raw releases page. Empty bodies, JSON null and
// anything that is not an array of releases are parse errors.
func ParseReleases(body []byte) ([]Release, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeParse, "empty response body")
	}
	if bytes.Equal(trimmed, []byte("null")) {
		return nil, apperrors.New(apperrors.ErrCodeParse, "response body is null")
	}

	var releases []Release
	if err := json.Unmarshal(trimmed, &releases); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeParse, err, "decode releases")
	}
	return releases, nil
}
