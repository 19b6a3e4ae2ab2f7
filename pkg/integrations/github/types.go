package github

import "time"

// Release is a published version of a repository with its downloadable files.
// Only the fields needed for download statistics are decoded.
type Release struct {
	TagName     string    `json:"tag_name"`
	PublishedAt time.Time `json:"published_at"`
	Prerelease  bool      `json:"prerelease"`
	Assets      []Asset   `json:"assets"`
}

// Asset is a single downloadable file attached to a release.
type Asset struct {
	Name          string `json:"name"`
	DownloadCount int    `json:"download_count"`
}
