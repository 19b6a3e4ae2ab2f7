package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/matzehuels/releasestats/pkg/stats"
)

// Supported output formats.
const (
	FormatCSV   = "csv"
	FormatJSON  = "json"
	FormatTable = "table"
)

// Formats lists every format understood by [Write].
var Formats = []string{FormatCSV, FormatJSON, FormatTable}

// Header is the CSV header row.
var Header = func() []string {
	h := []string{"release", "published_at"}
	for _, p := range stats.Platforms {
		h = append(h, p.Column)
	}
	h = append(h, "latest_for_n_days")
	for _, p := range stats.Platforms {
		h = append(h, p.PerDayColumn())
	}
	return h
}()

// Filename returns the default output file name for repo in the given format.
func Filename(repo, format string) string {
	ext := format
	if format == FormatTable {
		ext = "txt"
	}
	return fmt.Sprintf("%s-downloads.%s", repo, ext)
}

// DefaultPath returns "./<repo>-downloads.csv".
func DefaultPath(repo string) string {
	return "./" + Filename(repo, FormatCSV)
}

// Row formats a record as CSV fields, in [Header] order.
func Row(r stats.Record) []string {
	row := []string{r.Release, FormatTime(r.PublishedAt)}
	for _, p := range stats.Platforms {
		row = append(row, strconv.Itoa(r.Total(p)))
	}
	row = append(row, FormatFloat(r.LatestForNDays))
	for _, p := range stats.Platforms {
		row = append(row, FormatFloat(r.PerDay(p)))
	}
	return row
}

// FormatFloat writes v with two decimals. Infinities and NaN are spelled
// "Infinity", "-Infinity" and "NaN".
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// FormatTime writes t as RFC 3339 in UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// WriteCSV writes the header and one row per record to w.
func WriteCSV(w io.Writer, records []stats.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(Row(r)); err != nil {
			return fmt.Errorf("write %s: %w", r.Release, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSV writes records to path, replacing any existing file.
func ExportCSV(records []stats.Record, path string) error {
	return writeFile(path, func(w io.Writer) error { return WriteCSV(w, records) })
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}
