package stats

import (
	"strings"

	"github.com/matzehuels/releasestats/pkg/integrations/github"
)

// ExcludeMarker disqualifies an asset from every platform when its name contains it.
// Electron builders publish "<installer>.blockmap" delta files next to installers.
const ExcludeMarker = "blockmap"

// Platform is a reporting category identified by a substring of asset names.
type Platform struct {
	Column string // CSV column holding the total
	Marker string // Substring an asset name must contain
}

// The five reporting categories.
var (
	Win             = Platform{Column: "win", Marker: "win"}
	Mac             = Platform{Column: "mac", Marker: "mac-"}
	Linux           = Platform{Column: "linux", Marker: "AppImage"}
	WinCheckUpdates = Platform{Column: "win_check_updates", Marker: "latest.yml"}
	MacCheckUpdates = Platform{Column: "mac_check_updates", Marker: "latest-mac.yml"}
)

// Platforms lists the categories in column order.
var Platforms = []Platform{Win, Mac, Linux, WinCheckUpdates, MacCheckUpdates}

// PerDayColumn returns the column name of the platform's per-day rate.
func (p Platform) PerDayColumn() string {
	return p.Column + "_per_day"
}

// Matches reports whether an asset name belongs to the platform.
func (p Platform) Matches(name string) bool {
	return strings.Contains(name, p.Marker) && !strings.Contains(name, ExcludeMarker)
}

// Downloads sums the download counts of the release's assets matching p.
func (p Platform) Downloads(r github.Release) int {
	sum := 0
	for _, a := range r.Assets {
		if p.Matches(a.Name) {
			sum += a.DownloadCount
		}
	}
	return sum
}
