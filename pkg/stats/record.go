package stats

import "time"

// Record is the download statistics of one non-prerelease release.
type Record struct {
	Release     string
	PublishedAt time.Time

	Win             int
	Mac             int
	Linux           int
	WinCheckUpdates int
	MacCheckUpdates int

	// LatestForNDays is how long, in days, this was the newest release.
	LatestForNDays float64

	WinPerDay             float64
	MacPerDay             float64
	LinuxPerDay           float64
	WinCheckUpdatesPerDay float64
	MacCheckUpdatesPerDay float64
}

// Total returns the download total for p.
func (r Record) Total(p Platform) int {
	switch p {
	case Win:
		return r.Win
	case Mac:
		return r.Mac
	case Linux:
		return r.Linux
	case WinCheckUpdates:
		return r.WinCheckUpdates
	case MacCheckUpdates:
		return r.MacCheckUpdates
	}
	return 0
}

// PerDay returns the per-day rate for p.
func (r Record) PerDay(p Platform) float64 {
	switch p {
	case Win:
		return r.WinPerDay
	case Mac:
		return r.MacPerDay
	case Linux:
		return r.LinuxPerDay
	case WinCheckUpdates:
		return r.WinCheckUpdatesPerDay
	case MacCheckUpdates:
		return r.MacCheckUpdatesPerDay
	}
	return 0
}

func (r *Record) setTotal(p Platform, n int) {
	switch p {
	case Win:
		r.Win = n
	case Mac:
		r.Mac = n
	case Linux:
		r.Linux = n
	case WinCheckUpdates:
		r.WinCheckUpdates = n
	case MacCheckUpdates:
		r.MacCheckUpdates = n
	}
}

func (r *Record) setPerDay(p Platform, v float64) {
	switch p {
	case Win:
		r.WinPerDay = v
	case Mac:
		r.MacPerDay = v
	case Linux:
		r.LinuxPerDay = v
	case WinCheckUpdates:
		r.WinCheckUpdatesPerDay = v
	case MacCheckUpdates:
		r.MacCheckUpdatesPerDay = v
	}
}
