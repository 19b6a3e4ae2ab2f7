// Package report writes release download statistics in tabular form.
//
// The canonical output is a CSV file named "<repo>-downloads.csv" with one
// header row followed by one row per [stats.Record], oldest release first:
//
//	release,published_at,win,mac,linux,win_check_updates,mac_check_updates,latest_for_n_days,win_per_day,...
//
// Rates and day counts are written with two decimals. Timestamps are RFC 3339
// in UTC. Undefined rates (a zero-day window) are written as "Infinity" or
// "NaN".
//
// The same rows can also be written as JSON ([WriteJSON]), rendered as a
// terminal table ([Render]), or upserted into MongoDB ([MongoSink]).
package report
