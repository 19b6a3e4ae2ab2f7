// Package pipeline runs the fetch → transform → export flow for one
// repository.
//
// It is shared by the command-line report, the HTTP server and the
// interactive viewer so that all three derive identical records.
//
//	runner := pipeline.NewRunner(client, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Owner:   "LiskHQ",
//	    Repo:    "lisk-hub",
//	    Formats: []string{"csv"},
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Files["csv"]) // ./lisk-hub-downloads.csv
package pipeline

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"time"

	apperrors "github.com/matzehuels/releasestats/pkg/errors"
	"github.com/matzehuels/releasestats/pkg/integrations/github"
	"github.com/matzehuels/releasestats/pkg/report"
	"github.com/matzehuels/releasestats/pkg/stats"
)

// DefaultFormat is written when no format is requested.
const DefaultFormat = report.FormatCSV

// Fetcher returns all release pages of a repository, newest first.
// *github.Client implements it.
type Fetcher interface {
	FetchPages(ctx context.Context, owner, repo string) ([][]github.Release, error)
}

// Sink receives the records of a run in addition to file exports.
type Sink interface {
	Name() string
	Export(ctx context.Context, owner, repo string, records []stats.Record) (int64, error)
}

// Options selects a repository and how its report is written.
type Options struct {
	Owner string
	Repo  string

	// Formats to write; see report.Formats.
	Formats []string

	// Output overrides the file path. Only valid with a single format.
	Output string

	// OutputDir holds the "<repo>-downloads.<ext>" files. Defaults to ".".
	OutputDir string

	// MinDays floors the per-day denominator; 0 keeps the raw division.
	MinDays float64
}

// ValidateFormat reports whether format is supported.
func ValidateFormat(format string) error {
	if !slices.Contains(report.Formats, format) {
		return apperrors.New(apperrors.ErrCodeInvalidInput,
			"invalid format %q (want one of %s)", format, strings.Join(report.Formats, ", "))
	}
	return nil
}

// ValidateFormats validates every entry of formats.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated list, dropping blanks and duplicates.
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// ValidateAndSetDefaults checks o and fills unset fields.
func (o *Options) ValidateAndSetDefaults() error {
	if err := github.ValidateRepoRef(o.Owner, o.Repo); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Output != "" && len(o.Formats) > 1 {
		return apperrors.New(apperrors.ErrCodeInvalidInput,
			"--output needs a single format, got %s", strings.Join(o.Formats, ","))
	}
	if o.OutputDir == "" {
		o.OutputDir = "."
	}
	if o.MinDays < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "min days must not be negative")
	}
	return nil
}

// OutputPath returns where format is written.
func (o Options) OutputPath(format string) string {
	if o.Output != "" {
		return o.Output
	}
	if o.OutputDir == "." || o.OutputDir == "" {
		return "./" + report.Filename(o.Repo, format)
	}
	return filepath.Join(o.OutputDir, report.Filename(o.Repo, format))
}

// Result is the outcome of a run.
type Result struct {
	Owner   string
	Repo    string
	Records []stats.Record
	Summary stats.Summary

	// Files maps format to the written path.
	Files map[string]string

	// Sinks maps sink name to the number of documents written.
	Sinks map[string]int64

	Stats Stats
}

// Stats records sizes and timings of a run.
type Stats struct {
	Pages         int
	Releases      int
	FetchTime     time.Duration
	TransformTime time.Duration
	ExportTime    time.Duration
}
