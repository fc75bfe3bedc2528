package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/SyedSaifuddin045/spolist/internal/models"
	"github.com/SyedSaifuddin045/spolist/internal/shared"
)

var testTrack = models.Track{
	ID:     "t1",
	Title:  "One More Time",
	Artist: "Daft Punk",
	URL:    "https://open.spotify.com/track/t1",
}

func TestDownloader(t *testing.T) {
	ctx := context.Background()

	t.Run("Download", func(t *testing.T) {
		var queued downloadRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/download_song" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if r.URL.Query().Get("songID") != "t1" {
				t.Errorf("unexpected songID %q", r.URL.Query().Get("songID"))
			}

			switch r.Method {
			case http.MethodPost:
				json.NewDecoder(r.Body).Decode(&queued)
				w.WriteHeader(http.StatusOK)
			case http.MethodGet:
				w.Write([]byte("audio-bytes"))
			default:
				t.Errorf("unexpected method %s", r.Method)
			}
		}))
		defer server.Close()

		d := NewDownloader(server.URL, nil)
		outputDir := t.TempDir()

		path, err := d.Download(ctx, testTrack, outputDir)
		if err != nil {
			t.Fatal(err)
		}

		if queued.SongID != "t1" || queued.SongLink != testTrack.URL {
			t.Errorf("unexpected queue payload %+v", queued)
		}

		want := filepath.Join(outputDir, "Daft Punk - One More Time.mp3")
		if path != want {
			t.Errorf("expected path %q, got %q", want, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(data, []byte("audio-bytes")) {
			t.Errorf("unexpected file contents %q", data)
		}
	})

	t.Run("Queue Rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		d := NewDownloader(server.URL, nil)
		if _, err := d.Download(ctx, testTrack, t.TempDir()); !errors.Is(err, shared.ErrDownloadFailed) {
			t.Fatalf("expected ErrDownloadFailed, got %v", err)
		}
	})

	t.Run("Fetch Failure Removes File", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				w.WriteHeader(http.StatusOK)
				return
			}
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		d := NewDownloader(server.URL, nil)
		outputDir := t.TempDir()

		if _, err := d.Download(ctx, testTrack, outputDir); !errors.Is(err, shared.ErrDownloadFailed) {
			t.Fatalf("expected ErrDownloadFailed, got %v", err)
		}

		entries, err := os.ReadDir(outputDir)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 0 {
			t.Errorf("expected no partial files, found %d", len(entries))
		}
	})

	t.Run("Transport Failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		d := NewDownloader(server.URL, nil)
		if err := d.Request(ctx, testTrack); !errors.Is(err, shared.ErrDownloadFailed) {
			t.Fatalf("expected ErrDownloadFailed, got %v", err)
		}
	})
}

func TestAudioFilename(t *testing.T) {
	cases := []struct {
		name  string
		track models.Track
		want  string
	}{
		{"artist and title", models.Track{Title: "Song", Artist: "Band"}, "Band - Song.mp3"},
		{"title only", models.Track{Title: "Song"}, "Song.mp3"},
		{"falls back to ID", models.Track{ID: "t1"}, "t1.mp3"},
		{"sanitizes separators", models.Track{Title: "A/B: C?", Artist: `X\Y`}, "X_Y - A_B_ C_.mp3"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := audioFilename(tc.track); got != tc.want {
				t.Errorf("audioFilename(%+v) = %q, want %q", tc.track, got, tc.want)
			}
		})
	}
}
