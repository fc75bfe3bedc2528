// Client for the song download proxy backend.
//
// The backend exposes a single endpoint: a POST queues a server-side
// download for a track, a subsequent GET streams the resulting audio.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/SyedSaifuddin045/spolist/internal/models"
	"github.com/SyedSaifuddin045/spolist/internal/shared"
)

// Downloader talks to the song download proxy.
type Downloader struct {
	baseURL    string
	httpClient *http.Client
}

// NewDownloader creates a Downloader for the proxy at baseURL.
func NewDownloader(baseURL string, client *http.Client) *Downloader {
	if baseURL == "" {
		baseURL = "http://localhost:8000/"
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &Downloader{
		baseURL:    baseURL,
		httpClient: client,
	}
}

// downloadRequest is the proxy's queue payload.
type downloadRequest struct {
	SongID   string `json:"songID"`
	SongLink string `json:"songLink"`
}

func (d *Downloader) songURL(trackID string) string {
	return d.baseURL + "download_song?songID=" + url.QueryEscape(trackID)
}

// Request asks the proxy to download the track server-side.
func (d *Downloader) Request(ctx context.Context, track models.Track) error {
	payload, err := json.Marshal(downloadRequest{SongID: track.ID, SongLink: track.URL})
	if err != nil {
		return fmt.Errorf("failed to encode download request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.songURL(track.ID), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", shared.ErrDownloadFailed, resp.StatusCode)
	}

	return nil
}

// Fetch streams the downloaded audio for the track into w.
func (d *Downloader) Fetch(ctx context.Context, trackID string, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.songURL(trackID), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", shared.ErrDownloadFailed, resp.StatusCode)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("%w: stream interrupted: %v", shared.ErrDownloadFailed, err)
	}

	return nil
}

// Download queues the track, fetches the audio and writes it under
// outputDir, returning the file path.
func (d *Downloader) Download(ctx context.Context, track models.Track, outputDir string) (string, error) {
	if err := d.Request(ctx, track); err != nil {
		return "", err
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(outputDir, audioFilename(track))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := d.Fetch(ctx, track.ID, f); err != nil {
		os.Remove(path)
		return "", err
	}

	return path, nil
}

// audioFilename builds a filesystem-safe "Artist - Title.mp3" name.
func audioFilename(track models.Track) string {
	name := track.Title
	if track.Artist != "" {
		name = track.Artist + " - " + name
	}
	if name == "" {
		name = track.ID
	}

	sanitized := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		default:
			return r
		}
	}, name)

	return sanitized + ".mp3"
}
