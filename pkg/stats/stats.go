package stats

import (
	"math"
	"slices"
	"time"

	"github.com/matzehuels/releasestats/pkg/integrations/github"
)

// Options tunes [ToRecordsWithOptions].
type Options struct {
	// Now closes the window of the newest release.
	Now time.Time

	// MinDays, when positive, is the smallest denominator used for per-day
	// rates. Zero reproduces the unguarded division.
	MinDays float64
}

// ToRecords derives download statistics from releases as they come from the
// API (newest first). now closes the window of the newest release.
func ToRecords(releases []github.Release, now time.Time) []Record {
	return ToRecordsWithOptions(releases, Options{Now: now})
}

// ToRecordsWithOptions is [ToRecords] with an explicit per-day floor.
func ToRecordsWithOptions(releases []github.Release, opts Options) []Record {
	records := make([]Record, 0, len(releases))
	for _, r := range releases {
		if r.Prerelease {
			continue
		}
		rec := Record{Release: r.TagName, PublishedAt: r.PublishedAt}
		for _, p := range Platforms {
			rec.setTotal(p, p.Downloads(r))
		}
		records = append(records, rec)
	}

	// The API lists newest first; reversing yields ascending order, and the
	// stable sort only matters for input that was not ordered to begin with.
	slices.Reverse(records)
	slices.SortStableFunc(records, func(a, b Record) int {
		return a.PublishedAt.Compare(b.PublishedAt)
	})

	for i := range records {
		end := opts.Now
		if i+1 < len(records) {
			end = records[i+1].PublishedAt
		}
		records[i].LatestForNDays = Round2(Days(end.Sub(records[i].PublishedAt)))

		denom := records[i].LatestForNDays
		if opts.MinDays > 0 && denom < opts.MinDays {
			denom = opts.MinDays
		}
		for _, p := range Platforms {
			records[i].setPerDay(p, Round2(float64(records[i].Total(p))/denom))
		}
	}
	return records
}

// Days converts a duration to fractional days.
func Days(d time.Duration) float64 {
	return float64(d) / float64(24*time.Hour)
}

// Round2 rounds to 2 decimal places, half away from zero.
// Infinities and NaN are returned unchanged.
func Round2(x float64) float64 {
	if math.IsInf(x, 0) || math.IsNaN(x) {
		return x
	}
	return math.Round(x*100) / 100
}

// Summary aggregates a record set.
type Summary struct {
	Releases int
	Totals   map[string]int // keyed by Platform.Column
	First    time.Time
	Last     time.Time
}

// Summarize totals downloads per platform across records.
func Summarize(records []Record) Summary {
	s := Summary{Releases: len(records), Totals: make(map[string]int, len(Platforms))}
	for _, p := range Platforms {
		s.Totals[p.Column] = 0
	}
	for _, r := range records {
		for _, p := range Platforms {
			s.Totals[p.Column] += r.Total(p)
		}
	}
	if len(records) > 0 {
		s.First = records[0].PublishedAt
		s.Last = records[len(records)-1].PublishedAt
	}
	return s
}
