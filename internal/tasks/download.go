package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/SyedSaifuddin045/spolist/internal/models"
	"github.com/SyedSaifuddin045/spolist/internal/shared"
	"github.com/SyedSaifuddin045/spolist/internal/storage"
)

// SongDownloader is the slice of the download proxy client the engine needs.
type SongDownloader interface {
	Download(ctx context.Context, track models.Track, outputDir string) (string, error)
}

// HistoryRecorder records completed downloads; satisfied by
// [*storage.SQLiteSlot]. A nil recorder skips history.
type HistoryRecorder interface {
	RecordDownload(rec storage.DownloadRecord) error
}

// DownloadOpts contains configuration for bulk downloads.
type DownloadOpts struct {
	OutputDir  string  // Destination directory (default: downloads_{epoch})
	NumWorkers int     // Concurrent workers (default: 3)
	RateLimit  float64 // Proxy requests per second (default: 2)
}

// DownloadEngine fans track downloads out to a rate-limited worker pool.
type DownloadEngine struct {
	downloader SongDownloader
	history    HistoryRecorder
}

// NewDownloadEngine creates an engine over the proxy client and optional
// history recorder.
func NewDownloadEngine(downloader SongDownloader, history HistoryRecorder) *DownloadEngine {
	return &DownloadEngine{downloader: downloader, history: history}
}

// Run downloads the given tracks concurrently, respecting the proxy rate
// limit and recording each success in the download history.
//
// Partial failures do not abort the run; they are reported per track in the
// result.
func (e *DownloadEngine) Run(ctx context.Context, prog chan<- ProgressUpdate, tracks []models.Track, opts DownloadOpts) (*BulkDownloadResult, error) {
	if e.downloader == nil {
		return nil, fmt.Errorf("%w: downloader not initialized", shared.ErrServiceUnavailable)
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: no tracks to download", shared.ErrInvalidInput)
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("downloads_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 3
	}
	if opts.NumWorkers > 8 {
		opts.NumWorkers = 8
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 2.0
	}

	result := &BulkDownloadResult{
		TotalTracks: len(tracks),
		OutputDir:   opts.OutputDir,
		Results:     make([]TrackDownloadResult, 0, len(tracks)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan models.Track, len(tracks))
	results := make(chan TrackDownloadResult, len(tracks))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.worker(ctx, &wg, limiter, jobs, results, opts.OutputDir)
	}

	for _, track := range tracks {
		jobs <- track
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		e.sendProgress(prog, ProgressUpdate{
			Stage:     "downloading",
			Completed: completed,
			Total:     len(tracks),
			Message:   res.Track.Title,
		})

		if res.Success {
			result.SuccessCount++
			e.record(res)
		} else {
			result.FailedCount++
		}
		result.Results = append(result.Results, res)
	}

	e.sendProgress(prog, ProgressUpdate{Stage: "done", Completed: completed, Total: len(tracks)})

	return result, nil
}

func (e *DownloadEngine) worker(ctx context.Context, wg *sync.WaitGroup, limiter *rate.Limiter, jobs <-chan models.Track, results chan<- TrackDownloadResult, outputDir string) {
	defer wg.Done()

	for track := range jobs {
		if err := limiter.Wait(ctx); err != nil {
			results <- TrackDownloadResult{Track: track, Error: err}
			continue
		}

		path, err := e.downloader.Download(ctx, track, outputDir)
		if err != nil {
			results <- TrackDownloadResult{Track: track, Error: err}
			continue
		}

		results <- TrackDownloadResult{Track: track, FilePath: path, Success: true}
	}
}

func (e *DownloadEngine) record(res TrackDownloadResult) {
	if e.history == nil {
		return
	}

	// history is best effort; a failed insert must not fail the download
	e.history.RecordDownload(storage.DownloadRecord{
		ID:       shared.GenerateID(),
		TrackID:  res.Track.ID,
		Title:    res.Track.Title,
		Artist:   res.Track.Artist,
		FilePath: res.FilePath,
	})
}

func (e *DownloadEngine) sendProgress(prog chan<- ProgressUpdate, update ProgressUpdate) {
	if prog == nil {
		return
	}
	select {
	case prog <- update:
	default:
	}
}
