// Package stats turns raw releases into per-release download statistics.
//
// [ToRecords] is a pure function of its input and the supplied clock:
//
//  1. Prereleases are dropped.
//  2. Each release's asset download counts are summed per [Platform]. An
//     asset counts towards a platform when its name contains the platform's
//     marker and does not contain "blockmap". An asset may count towards
//     more than one platform.
//  3. Records are put in ascending publication order.
//  4. LatestForNDays is the time until the next release was published (or
//     until now for the newest release), in days, rounded to 2 decimals.
//  5. Each per-day rate is the platform total divided by the rounded
//     LatestForNDays, rounded to 2 decimals.
//
// # Near-zero windows
//
// A release published moments before the report runs has a LatestForNDays
// of 0.00, and its per-day rates become +Inf (or NaN for a zero total).
// This is reproduced by default. Setting [Options.MinDays] divides by at
// least that many days instead; LatestForNDays itself is never altered.
package stats
