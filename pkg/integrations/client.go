package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/go-github/v82/github"

	"github.com/matzehuels/releasestats/pkg/cache"
	apperrors "github.com/matzehuels/releasestats/pkg/errors"
	"github.com/matzehuels/releasestats/pkg/observability"
)

// Client provides shared HTTP functionality for remote API clients.
// It handles response caching, common request headers and error classification.
type Client struct {
	http    *http.Client
	store   cache.Store
	headers map[string]string
}

// NewClient creates a Client with the given HTTP client, cache store and default headers.
// Headers are applied to all requests made through this client.
// A nil httpClient uses [NewHTTPClient] without timeout; a nil store disables caching.
func NewClient(httpClient *http.Client, store cache.Store, headers map[string]string) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient(0)
	}
	if store == nil {
		store = cache.NewNullStore()
	}
	return &Client{
		http:    httpClient,
		store:   store,
		headers: headers,
	}
}

// Store returns the cache store backing [Client.Cached].
func (c *Client) Store() cache.Store { return c.store }

// Cached returns the raw bytes stored under key if they are fresh, reporting
// hit=true. Otherwise (or when refresh is set) it calls fetch, writes the
// result under key and returns it. Store errors are returned, not ignored.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, fetch func() ([]byte, error)) ([]byte, bool, error) {
	if !refresh {
		fresh, err := c.store.IsFresh(ctx, key)
		if err != nil {
			return nil, false, apperrors.Wrap(apperrors.ErrCodeFilesystem, err, "check cache %s", key)
		}
		if fresh {
			data, err := c.store.Read(ctx, key)
			if err != nil {
				return nil, false, apperrors.Wrap(apperrors.ErrCodeFilesystem, err, "read cache %s", key)
			}
			observability.Cache().OnCacheHit(ctx, key)
			return data, true, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, key)

	data, err := fetch()
	if err != nil {
		return nil, false, err
	}
	if err := c.store.Write(ctx, key, data); err != nil {
		return nil, false, apperrors.Wrap(apperrors.ErrCodeFilesystem, err, "write cache %s", key)
	}
	observability.Cache().OnCacheSet(ctx, key, len(data))
	return data, false, nil
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
func (c *Client) Get(ctx context.Context, rawURL string, v any) error {
	data, err := c.GetBytes(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeParse, err, "decode %s", rawURL)
	}
	return nil
}

// GetBytes performs exactly one HTTP GET request and returns the full response body.
func (c *Client) GetBytes(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "build request")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	host, path := hostPath(rawURL)
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, apperrors.Wrap(apperrors.ErrCodeNetwork, err, "GET %s", rawURL)
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkResponse(resp); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeNetwork, err, "read body of %s", rawURL)
	}
	return data, nil
}

// checkResponse classifies non-2xx responses using go-github's error decoding,
// which understands GitHub's rate-limit headers and JSON error bodies.
func checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	err := github.CheckResponse(resp)
	if err == nil {
		err = fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	switch {
	case errors.As(err, &rateErr):
		return apperrors.Wrap(apperrors.ErrCodeRateLimited, &apperrors.RateLimitedError{
			RetryAfter: int(time.Until(rateErr.Rate.Reset.Time).Seconds()),
			Message:    rateErr.Message,
		}, "GitHub API rate limit exceeded")
	case errors.As(err, &abuseErr):
		retry := 0
		if abuseErr.RetryAfter != nil {
			retry = int(abuseErr.RetryAfter.Seconds())
		}
		return apperrors.Wrap(apperrors.ErrCodeRateLimited, &apperrors.RateLimitedError{
			RetryAfter: retry,
			Message:    abuseErr.Message,
		}, "GitHub API secondary rate limit exceeded")
	case resp.StatusCode == http.StatusUnauthorized:
		return apperrors.Wrap(apperrors.ErrCodeUnauthorized, err, "GitHub rejected the token (check GH_TOKEN)")
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.Wrap(apperrors.ErrCodeNotFound, err, "resource not found")
	default:
		return apperrors.Wrap(apperrors.ErrCodeNetwork, err, "status %d", resp.StatusCode)
	}
}

func hostPath(rawURL string) (string, string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", rawURL
	}
	return u.Host, u.Path
}
