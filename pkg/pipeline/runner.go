package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	apperrors "github.com/matzehuels/releasestats/pkg/errors"
	"github.com/matzehuels/releasestats/pkg/integrations/github"
	"github.com/matzehuels/releasestats/pkg/observability"
	"github.com/matzehuels/releasestats/pkg/report"
	"github.com/matzehuels/releasestats/pkg/stats"
)

// Runner executes the pipeline. It holds no per-run state, so one Runner
// may serve concurrent runs as long as its Fetcher does.
type Runner struct {
	Fetcher Fetcher
	Sinks   []Sink
	Clock   func() time.Time
	Logger  *log.Logger
}

// NewRunner creates a runner using the wall clock.
// If logger is nil, log.Default() is used.
func NewRunner(f Fetcher, logger *log.Logger, sinks ...Sink) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Fetcher: f, Sinks: sinks, Clock: time.Now, Logger: logger}
}

func (r *Runner) now() time.Time {
	if r.Clock == nil {
		return time.Now()
	}
	return r.Clock()
}

// Execute fetches, transforms and exports in every requested format.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	result, err := r.Collect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := r.Export(ctx, result, opts); err != nil {
		return nil, err
	}
	return result, nil
}

// Collect fetches and transforms without writing anything.
func (r *Runner) Collect(ctx context.Context, opts Options) (*Result, error) {
	if err := github.ValidateRepoRef(opts.Owner, opts.Repo); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	result := &Result{
		Owner: opts.Owner,
		Repo:  opts.Repo,
		Files: make(map[string]string),
		Sinks: make(map[string]int64),
	}

	// Stage 1: Fetch
	hooks.OnFetchStart(ctx, opts.Owner, opts.Repo)
	fetchStart := time.Now()
	pages, err := r.Fetcher.FetchPages(ctx, opts.Owner, opts.Repo)
	releases := github.Flatten(pages)
	result.Stats.FetchTime = time.Since(fetchStart)
	result.Stats.Pages = len(pages)
	result.Stats.Releases = len(releases)
	hooks.OnFetchComplete(ctx, opts.Owner, opts.Repo, len(pages), len(releases), result.Stats.FetchTime, err)
	if err != nil {
		return nil, fmt.Errorf("fetch %s/%s: %w", opts.Owner, opts.Repo, err)
	}

	r.Logger.Info("fetched releases",
		"repo", opts.Owner+"/"+opts.Repo,
		"pages", len(pages),
		"releases", len(releases),
		"duration", result.Stats.FetchTime)

	// Stage 2: Transform
	transformStart := time.Now()
	result.Records = stats.ToRecordsWithOptions(releases, stats.Options{Now: r.now(), MinDays: opts.MinDays})
	result.Summary = stats.Summarize(result.Records)
	result.Stats.TransformTime = time.Since(transformStart)
	hooks.OnTransformComplete(ctx, len(releases), len(result.Records))

	r.Logger.Debug("computed records",
		"records", len(result.Records),
		"prereleases", len(releases)-len(result.Records),
		"duration", result.Stats.TransformTime)

	return result, nil
}

// Export writes result to the files selected by opts and pushes it to the
// runner's sinks. opts must have passed ValidateAndSetDefaults.
func (r *Runner) Export(ctx context.Context, result *Result, opts Options) error {
	hooks := observability.Pipeline()
	start := time.Now()

	for _, format := range opts.Formats {
		path := opts.OutputPath(format)
		err := report.Export(result.Records, format, path)
		hooks.OnExportComplete(ctx, format, path, len(result.Records), err)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrCodeFilesystem, err, "write %s", path)
		}
		result.Files[format] = path
		r.Logger.Debug("wrote report", "format", format, "path", path)
	}

	for _, sink := range r.Sinks {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := sink.Export(ctx, result.Owner, result.Repo, result.Records)
		hooks.OnExportComplete(ctx, sink.Name(), result.Owner+"/"+result.Repo, len(result.Records), err)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrCodeNetwork, err, "export to %s", sink.Name())
		}
		result.Sinks[sink.Name()] = n
	}

	result.Stats.ExportTime = time.Since(start)
	r.Logger.Info("exported report",
		"records", len(result.Records),
		"formats", opts.Formats,
		"duration", result.Stats.ExportTime)
	return nil
}
