package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/releasestats/pkg/observability"
)

// logHooks reports pipeline, cache and HTTP events as debug log lines.
type logHooks struct {
	logger *log.Logger
}

func installHooks(logger *log.Logger) {
	h := logHooks{logger: logger}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h logHooks) OnFetchStart(_ context.Context, owner, repo string) {
	h.logger.Debug("fetching releases", "repo", owner+"/"+repo)
}

func (h logHooks) OnFetchComplete(_ context.Context, owner, repo string, pages, releases int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("fetch failed", "repo", owner+"/"+repo, "pages", pages, "err", err)
		return
	}
	h.logger.Debug("fetch complete", "repo", owner+"/"+repo, "pages", pages, "releases", releases, "duration", d)
}

func (h logHooks) OnTransformComplete(_ context.Context, releases, records int) {
	h.logger.Debug("transform complete", "releases", releases, "records", records)
}

func (h logHooks) OnExportComplete(_ context.Context, format, target string, records int, err error) {
	if err != nil {
		h.logger.Debug("export failed", "format", format, "target", target, "err", err)
		return
	}
	h.logger.Debug("export complete", "format", format, "target", target, "records", records)
}

func (h logHooks) OnCacheHit(_ context.Context, key string) {
	h.logger.Debug("cache hit", "key", key)
}

func (h logHooks) OnCacheMiss(_ context.Context, key string) {
	h.logger.Debug("cache miss", "key", key)
}

func (h logHooks) OnCacheSet(_ context.Context, key string, size int) {
	h.logger.Debug("cache write", "key", key, "bytes", size)
}

func (h logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("request", "method", method, "host", host, "path", path)
}

func (h logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "path", path, "status", status, "duration", d)
}

func (h logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("request failed", "method", method, "host", host, "path", path, "err", err)
}
