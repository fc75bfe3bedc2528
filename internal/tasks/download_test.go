package tasks

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/SyedSaifuddin045/spolist/internal/models"
	"github.com/SyedSaifuddin045/spolist/internal/shared"
	"github.com/SyedSaifuddin045/spolist/internal/storage"
)

type fakeDownloader struct {
	mu      sync.Mutex
	calls   int
	failIDs map[string]bool
}

func (f *fakeDownloader) Download(ctx context.Context, track models.Track, outputDir string) (string, error) {
	f.mu.Lock()
	f.calls++
	fail := f.failIDs[track.ID]
	f.mu.Unlock()

	if fail {
		return "", fmt.Errorf("%w: track %s", shared.ErrDownloadFailed, track.ID)
	}
	return filepath.Join(outputDir, track.ID+".mp3"), nil
}

type fakeRecorder struct {
	mu      sync.Mutex
	records []storage.DownloadRecord
}

func (f *fakeRecorder) RecordDownload(rec storage.DownloadRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec)
	return nil
}

func testTracks(n int) []models.Track {
	tracks := make([]models.Track, n)
	for i := range tracks {
		id := fmt.Sprintf("t%d", i+1)
		tracks[i] = models.Track{ID: id, Title: "Track " + id, Artist: "Artist"}
	}
	return tracks
}

func TestDownloadEngine(t *testing.T) {
	ctx := context.Background()

	// high rate limit keeps the pool from throttling the tests
	opts := DownloadOpts{OutputDir: "out", NumWorkers: 4, RateLimit: 1000}

	t.Run("All Succeed", func(t *testing.T) {
		downloader := &fakeDownloader{}
		recorder := &fakeRecorder{}
		engine := NewDownloadEngine(downloader, recorder)

		result, err := engine.Run(ctx, nil, testTracks(5), opts)
		if err != nil {
			t.Fatal(err)
		}

		if result.TotalTracks != 5 || result.SuccessCount != 5 || result.FailedCount != 0 {
			t.Errorf("unexpected counts %+v", result)
		}
		if downloader.calls != 5 {
			t.Errorf("expected 5 downloads, got %d", downloader.calls)
		}
		if len(recorder.records) != 5 {
			t.Errorf("expected 5 history records, got %d", len(recorder.records))
		}
		for _, rec := range recorder.records {
			if rec.ID == "" || rec.FilePath == "" {
				t.Errorf("incomplete history record %+v", rec)
			}
		}
	})

	t.Run("Partial Failure", func(t *testing.T) {
		downloader := &fakeDownloader{failIDs: map[string]bool{"t2": true, "t4": true}}
		recorder := &fakeRecorder{}
		engine := NewDownloadEngine(downloader, recorder)

		result, err := engine.Run(ctx, nil, testTracks(5), opts)
		if err != nil {
			t.Fatal(err)
		}

		if result.SuccessCount != 3 || result.FailedCount != 2 {
			t.Errorf("expected 3 successes and 2 failures, got %+v", result)
		}
		if len(result.Results) != 5 {
			t.Fatalf("expected a result per track, got %d", len(result.Results))
		}
		for _, res := range result.Results {
			if res.Success && res.Error != nil {
				t.Errorf("successful result carries an error: %+v", res)
			}
			if !res.Success && !errors.Is(res.Error, shared.ErrDownloadFailed) {
				t.Errorf("failed result missing cause: %+v", res)
			}
		}
		// failures never reach history
		if len(recorder.records) != 3 {
			t.Errorf("expected 3 history records, got %d", len(recorder.records))
		}
	})

	t.Run("No Tracks", func(t *testing.T) {
		engine := NewDownloadEngine(&fakeDownloader{}, nil)
		if _, err := engine.Run(ctx, nil, nil, opts); !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Missing Downloader", func(t *testing.T) {
		engine := NewDownloadEngine(nil, nil)
		if _, err := engine.Run(ctx, nil, testTracks(1), opts); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Fatalf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("Nil History Recorder", func(t *testing.T) {
		engine := NewDownloadEngine(&fakeDownloader{}, nil)
		result, err := engine.Run(ctx, nil, testTracks(2), opts)
		if err != nil {
			t.Fatal(err)
		}
		if result.SuccessCount != 2 {
			t.Errorf("expected history to be optional, got %+v", result)
		}
	})

	t.Run("Progress Updates", func(t *testing.T) {
		engine := NewDownloadEngine(&fakeDownloader{}, nil)
		prog := make(chan ProgressUpdate, 16)

		if _, err := engine.Run(ctx, prog, testTracks(3), opts); err != nil {
			t.Fatal(err)
		}
		close(prog)

		var last ProgressUpdate
		count := 0
		for update := range prog {
			count++
			last = update
		}
		if count == 0 {
			t.Fatal("expected progress updates")
		}
		if last.Stage != "done" || last.Completed != 3 || last.Total != 3 {
			t.Errorf("unexpected final update %+v", last)
		}
	})

	t.Run("Default Output Directory", func(t *testing.T) {
		engine := NewDownloadEngine(&fakeDownloader{}, nil)
		result, err := engine.Run(ctx, nil, testTracks(1), DownloadOpts{RateLimit: 1000})
		if err != nil {
			t.Fatal(err)
		}
		if result.OutputDir == "" {
			t.Error("expected a generated output directory")
		}
	})
}
