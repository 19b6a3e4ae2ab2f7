package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/matzehuels/releasestats/pkg/errors"
	"github.com/matzehuels/releasestats/pkg/observability"
)

// countingServer fails the test if the command reaches the network when it
// should not, and otherwise serves a single short page of releases.
func countingServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{"tag_name":"v1.1.0","published_at":"2021-01-11T00:00:00Z","prerelease":false,
			 "assets":[{"name":"app-win.exe","download_count":5}]},
			{"tag_name":"v1.0.0","published_at":"2021-01-01T00:00:00Z","prerelease":false,
			 "assets":[{"name":"app-win.exe","download_count":10},{"name":"app-win.exe.blockmap","download_count":99}]}
		]`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// execute runs the root command with env as the environment.
func execute(t *testing.T, env map[string]string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Cleanup(observability.Reset)

	var logs bytes.Buffer
	c := New(&logs, LogInfo)
	c.Getenv = func(k string) string { return env[k] }

	var out bytes.Buffer
	root := c.RootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRoot_TooFewArgs(t *testing.T) {
	var hits atomic.Int32
	srv := countingServer(t, &hits)
	env := map[string]string{tokenEnv: "secret"}

	for _, args := range [][]string{{}, {"LiskHQ"}} {
		out, err := execute(t, env, append(args, "--api-url", srv.URL)...)
		require.Error(t, err)
		assert.Equal(t, apperrors.ExitUsage, apperrors.ExitCode(err))
		assert.Equal(t, 1, apperrors.ExitCode(err))
		assert.Contains(t, out, "Usage:")
	}
	assert.Zero(t, hits.Load())
}

func TestRoot_TooFewArgsWithoutToken(t *testing.T) {
	_, err := execute(t, nil, "LiskHQ")
	require.Error(t, err)
	assert.Equal(t, 1, apperrors.ExitCode(err), "argument check comes first")
}

func TestRoot_MissingToken(t *testing.T) {
	var hits atomic.Int32
	srv := countingServer(t, &hits)

	_, err := execute(t, nil, "LiskHQ", "lisk-hub", "--api-url", srv.URL, "--no-cache")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeMissingToken))
	assert.Equal(t, 2, apperrors.ExitCode(err))
	assert.Contains(t, apperrors.UserMessage(err), "GH_TOKEN")
	assert.Zero(t, hits.Load())
}

func TestRoot_WritesReport(t *testing.T) {
	var hits atomic.Int32
	srv := countingServer(t, &hits)
	out := filepath.Join(t.TempDir(), "stats.csv")

	_, err := execute(t, map[string]string{tokenEnv: "secret"},
		"acme", "app", "--api-url", srv.URL, "--no-cache", "-o", out)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load(), "a short first page ends pagination")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "release,published_at,win,"))
	assert.True(t, strings.HasPrefix(lines[1], "v1.0.0,2021-01-01T00:00:00Z,10,0,0,0,0,10.00,1.00,"))
}

func TestRoot_CachedPagesSkipNetwork(t *testing.T) {
	var hits atomic.Int32
	srv := countingServer(t, &hits)
	cacheDir := t.TempDir()
	outDir := t.TempDir()
	env := map[string]string{tokenEnv: "secret"}

	for i := 0; i < 2; i++ {
		_, err := execute(t, env, "acme", "app", "--api-url", srv.URL,
			"--cache-dir", cacheDir, "-o", filepath.Join(outDir, "app.csv"))
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), hits.Load())
	assert.FileExists(t, filepath.Join(cacheDir, "app-downloads-1.json"))
}

func TestRoot_InvalidFormat(t *testing.T) {
	_, err := execute(t, map[string]string{tokenEnv: "secret"}, "acme", "app", "--format", "xml")
	require.Error(t, err)
	assert.Equal(t, 1, apperrors.ExitCode(err))
}

func TestRoot_Version(t *testing.T) {
	out, err := execute(t, nil, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, appName+" version dev")
}
