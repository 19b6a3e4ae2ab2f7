package report

import (
	"encoding/json"
	"io"

	"github.com/matzehuels/releasestats/pkg/stats"
)

// Document is the JSON and MongoDB representation of a record.
// Float fields use the same formatting as the CSV output so that undefined
// rates survive encoding.
type Document struct {
	Release        string            `json:"release" bson:"release"`
	PublishedAt    string            `json:"published_at" bson:"published_at"`
	Downloads      map[string]int    `json:"downloads" bson:"downloads"`
	LatestForNDays string            `json:"latest_for_n_days" bson:"latest_for_n_days"`
	PerDay         map[string]string `json:"per_day" bson:"per_day"`
}

// NewDocument converts a record.
func NewDocument(r stats.Record) Document {
	d := Document{
		Release:        r.Release,
		PublishedAt:    FormatTime(r.PublishedAt),
		Downloads:      make(map[string]int, len(stats.Platforms)),
		LatestForNDays: FormatFloat(r.LatestForNDays),
		PerDay:         make(map[string]string, len(stats.Platforms)),
	}
	for _, p := range stats.Platforms {
		d.Downloads[p.Column] = r.Total(p)
		d.PerDay[p.Column] = FormatFloat(r.PerDay(p))
	}
	return d
}

// WriteJSON writes records to w as an indented JSON array.
func WriteJSON(w io.Writer, records []stats.Record) error {
	docs := make([]Document, len(records))
	for i, r := range records {
		docs[i] = NewDocument(r)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(docs)
}

// ExportJSON writes records to path, replacing any existing file.
func ExportJSON(records []stats.Record, path string) error {
	return writeFile(path, func(w io.Writer) error { return WriteJSON(w, records) })
}
