// Package model defines the domain types used across the application.
package model

import "time"

// DownloadStatus records the outcome of a single downloader invocation.
type DownloadStatus string

// Possible download outcomes.
const (
	DownloadOK     DownloadStatus = "ok"
	DownloadFailed DownloadStatus = "failed"
)

// Download represents one dispatch of a media link to an external downloader.
type Download struct {
	ID         int64
	FeedURL    string
	Link       string
	Downloader string
	Status     DownloadStatus
	Error      string
	CreatedAt  time.Time
}
