// package tasks implements bulk song download operations.
//
// The core abstraction is DownloadEngine, which fans track downloads out to
// a rate-limited worker pool. Operations emit progress updates via channels
// for non-blocking status reporting to the CLI layer.
package tasks

import (
	"github.com/SyedSaifuddin045/spolist/internal/models"
)

// ProgressUpdate is a non-blocking status report emitted during a bulk
// operation.
type ProgressUpdate struct {
	Stage     string // queued, downloading, done
	Completed int
	Total     int
	Message   string
}

// TrackDownloadResult is the outcome of downloading a single track.
type TrackDownloadResult struct {
	Track    models.Track
	FilePath string
	Success  bool
	Error    error
}

// BulkDownloadResult aggregates a bulk download run.
type BulkDownloadResult struct {
	TotalTracks  int
	SuccessCount int
	FailedCount  int
	OutputDir    string
	Results      []TrackDownloadResult
}
