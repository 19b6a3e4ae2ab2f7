package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/releasestats/pkg/cache"
	apperrors "github.com/matzehuels/releasestats/pkg/errors"
)

// releasesServer serves /repos/owner/repo/releases with the given page sizes.
// Release tags count down so page 1 holds the newest releases.
func releasesServer(t *testing.T, sizes []int, requests *atomic.Int32) *httptest.Server {
	t.Helper()
	total := 0
	for _, n := range sizes {
		total += n
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Path != "/repos/owner/repo/releases" {
			http.NotFound(w, r)
			return
		}
		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil || page < 1 || page > len(sizes) {
			w.Write([]byte(`[]`))
			return
		}

		offset := 0
		for _, n := range sizes[:page-1] {
			offset += n
		}
		base := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
		out := make([]Release, sizes[page-1])
		for i := range out {
			idx := total - offset - i
			out[i] = Release{
				TagName:     fmt.Sprintf("v%d", idx),
				PublishedAt: base.AddDate(0, 0, idx),
				Assets:      []Asset{{Name: "app-win.exe", DownloadCount: idx}},
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	}))
}

func testClient(t *testing.T, serverURL string, store cache.Store) *Client {
	t.Helper()
	c, err := NewClient(Options{Token: "test-token", BaseURL: serverURL, Store: store})
	require.NoError(t, err)
	return c
}

func TestFetchAll_Pagination(t *testing.T) {
	var requests atomic.Int32
	server := releasesServer(t, []int{30, 30, 12}, &requests)
	defer server.Close()

	c := testClient(t, server.URL, nil)

	releases, err := c.FetchAll(context.Background(), "owner", "repo")
	require.NoError(t, err)

	assert.Len(t, releases, 72)
	assert.Equal(t, int32(3), requests.Load())
	assert.Equal(t, "v72", releases[0].TagName, "page 1 results come first")
	assert.Equal(t, "v1", releases[71].TagName)
}

func TestFetchPages_StopsAtShortPage(t *testing.T) {
	tests := []struct {
		name      string
		sizes     []int
		wantPages int
		wantTotal int
	}{
		{"single short page", []int{5}, 1, 5},
		{"no releases", []int{0}, 1, 0},
		{"exact multiple needs empty page", []int{30, 0}, 2, 30},
		{"three pages", []int{30, 30, 12}, 3, 72},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var requests atomic.Int32
			server := releasesServer(t, tt.sizes, &requests)
			defer server.Close()

			pages, err := testClient(t, server.URL, nil).FetchPages(context.Background(), "owner", "repo")
			require.NoError(t, err)
			assert.Len(t, pages, tt.wantPages)
			assert.Len(t, Flatten(pages), tt.wantTotal)
			assert.Equal(t, int32(tt.wantPages), requests.Load())
		})
	}
}

func TestFetchAll_FreshCacheSkipsNetwork(t *testing.T) {
	var requests atomic.Int32
	server := releasesServer(t, []int{30, 30, 12}, &requests)
	defer server.Close()

	store, err := cache.NewFileStore(t.TempDir(), cache.DefaultTTL)
	require.NoError(t, err)

	first, err := testClient(t, server.URL, store).FetchAll(context.Background(), "owner", "repo")
	require.NoError(t, err)
	require.Equal(t, int32(3), requests.Load())

	for page := 1; page <= 3; page++ {
		assert.FileExists(t, store.Path(PageKey("repo", page)))
	}

	second, err := testClient(t, server.URL, store).FetchAll(context.Background(), "owner", "repo")
	require.NoError(t, err)
	assert.Equal(t, int32(3), requests.Load(), "fresh pages must not be refetched")
	assert.Equal(t, first, second)
}

func TestFetchPage_StaleCacheRefetches(t *testing.T) {
	var requests atomic.Int32
	server := releasesServer(t, []int{3}, &requests)
	defer server.Close()

	store, err := cache.NewFileStore(t.TempDir(), cache.DefaultTTL)
	require.NoError(t, err)

	key := PageKey("repo", 1)
	require.NoError(t, store.Write(context.Background(), key, []byte(`[{"tag_name":"stale"}]`)))
	old := time.Now().Add(-25 * time.Hour)
	require.NoError(t, os.Chtimes(store.Path(key), old, old))

	releases, err := testClient(t, server.URL, store).FetchPage(context.Background(), "owner", "repo", 1)
	require.NoError(t, err)
	assert.Equal(t, int32(1), requests.Load())
	assert.Len(t, releases, 3)
}

func TestFetchPage_Headers(t *testing.T) {
	var auth, ua, query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		ua = r.Header.Get("User-Agent")
		query = r.URL.RawQuery
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c, err := NewClient(Options{Token: "abc123", BaseURL: server.URL + "/", UserAgent: "request"})
	require.NoError(t, err)

	_, err = c.FetchPage(context.Background(), "owner", "repo", 2)
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc123", auth)
	assert.Equal(t, "request", ua)
	assert.Equal(t, "page=2", query)
}

func TestFetchPage_ParseErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"whitespace", "  \n"},
		{"null", "null"},
		{"truncated", `[{"tag_name":`},
		{"object", `{"message":"Bad credentials"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			store, err := cache.NewFileStore(t.TempDir(), cache.DefaultTTL)
			require.NoError(t, err)

			_, err = testClient(t, server.URL, store).FetchPage(context.Background(), "owner", "repo", 1)
			assert.True(t, apperrors.Is(err, apperrors.ErrCodeParse), "got %v", err)

			fresh, err := store.IsFresh(context.Background(), PageKey("repo", 1))
			require.NoError(t, err)
			assert.False(t, fresh, "unparseable page must not stay cached")
		})
	}
}

func TestFetchAll_AbortsOnPageFailure(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Query().Get("page") == "2" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		out := make([]Release, PageSize)
		json.NewEncoder(w).Encode(out)
	}))
	defer server.Close()

	_, err := testClient(t, server.URL, nil).FetchAll(context.Background(), "owner", "repo")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeNetwork), "got %v", err)
	assert.Equal(t, int32(2), requests.Load(), "no retries")
}

func TestFetchPage_InvalidRepoRef(t *testing.T) {
	c := testClient(t, "http://127.0.0.1:1", nil)
	_, err := c.FetchPage(context.Background(), "owner", "../../etc", 1)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeInvalidInput))
}

func TestParseReleases(t *testing.T) {
	body := `[
		{"tag_name":"v1.1.0","published_at":"2021-01-11T00:00:00Z","prerelease":false,
		 "assets":[{"name":"app-win.exe","download_count":5},{"name":"app-win.exe.blockmap","download_count":2}]},
		{"tag_name":"v1.1.0-rc1","published_at":"2021-01-05T00:00:00Z","prerelease":true,"assets":[]}
	]`

	releases, err := ParseReleases([]byte(body))
	require.NoError(t, err)
	require.Len(t, releases, 2)

	assert.Equal(t, "v1.1.0", releases[0].TagName)
	assert.Equal(t, time.Date(2021, 1, 11, 0, 0, 0, 0, time.UTC), releases[0].PublishedAt)
	assert.False(t, releases[0].Prerelease)
	assert.Equal(t, []Asset{{"app-win.exe", 5}, {"app-win.exe.blockmap", 2}}, releases[0].Assets)
	assert.True(t, releases[1].Prerelease)
}

func TestReleasesURLAndPageKey(t *testing.T) {
	c := testClient(t, "https://api.github.com", nil)
	assert.Equal(t, "https://api.github.com/repos/LiskHQ/lisk-hub/releases?page=3", c.ReleasesURL("LiskHQ", "lisk-hub", 3))
	assert.Equal(t, "lisk-hub-downloads-3.json", PageKey("lisk-hub", 3))
	assert.Equal(t, "lisk-hub-downloads-*.json", PageKeyPattern("lisk-hub"))
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := NewClient(Options{Token: "t"})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.baseURL)

	_, err = NewClient(Options{BaseURL: "ftp://example.com"})
	assert.Error(t, err)
}
