package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/SyedSaifuddin045/spolist/internal/models"
	"github.com/SyedSaifuddin045/spolist/internal/shared"
	"github.com/SyedSaifuddin045/spolist/internal/tasks"
	"github.com/SyedSaifuddin045/spolist/internal/ui"
)

// Profile fetches and prints the authenticated user's profile.
func (r *Runner) Profile(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureSession(ctx); err != nil {
		return err
	}

	profile, err := r.spotify.Profile(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(profile, cmd.Bool("pretty"))
	}

	r.writePlain("%s (%s)\n", profile.DisplayName, profile.ID)
	if profile.Email != "" {
		r.writePlain("Email: %s\n", profile.Email)
	}
	if profile.URL != "" {
		r.writePlain("Profile: %s\n", profile.URL)
	}
	return nil
}

// Search queries the track catalog and prints or picks results.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}

	if err := r.ensureSession(ctx); err != nil {
		return err
	}

	tracks, err := r.spotify.SearchTracks(ctx, query, int(cmd.Int("limit")))
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		return fmt.Errorf("%w: no results for %q", shared.ErrTrackNotFound, query)
	}

	if cmd.Bool("pick") {
		selected, err := ui.PickTrack(query, tracks)
		if err != nil {
			return err
		}
		if selected == nil {
			return r.writePlain("No track selected\n")
		}
		return r.downloadTracks(ctx, []models.Track{*selected})
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	for i, track := range tracks {
		r.writePlain("%2d. %s — %s", i+1, track.Title, track.Artist)
		if track.Album != "" {
			r.writePlain(" (%s)", track.Album)
		}
		r.writePlain("\n")
	}
	return nil
}

// Download searches for the query and downloads the first match through the
// proxy backend.
func (r *Runner) Download(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: track query", shared.ErrMissingArgument)
	}

	if err := r.ensureSession(ctx); err != nil {
		return err
	}

	tracks, err := r.spotify.SearchTracks(ctx, query, 1)
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		return fmt.Errorf("%w: no results for %q", shared.ErrTrackNotFound, query)
	}

	return r.downloadTracks(ctx, tracks[:1])
}

func (r *Runner) downloadTracks(ctx context.Context, tracks []models.Track) error {
	opts := tasks.DownloadOpts{
		OutputDir:  r.config.Downloader.OutputDir,
		NumWorkers: r.config.Downloader.NumWorkers,
		RateLimit:  r.config.Downloader.RateLimit,
	}

	prog := make(chan tasks.ProgressUpdate, len(tracks)+1)
	result, err := r.engine.Run(ctx, prog, tracks, opts)
	if err != nil {
		return err
	}

	for _, res := range result.Results {
		if res.Success {
			r.writePlain("✓ %s — %s\n  %s\n", res.Track.Title, res.Track.Artist, res.FilePath)
		} else {
			r.writePlain("✗ %s — %s: %v\n", res.Track.Title, res.Track.Artist, res.Error)
		}
	}

	if result.FailedCount > 0 {
		return fmt.Errorf("%w: %d of %d tracks failed", shared.ErrDownloadFailed, result.FailedCount, result.TotalTracks)
	}
	return nil
}

// PlaylistCreate creates a playlist, optionally seeding it with tracks.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	name := cmd.String("name")
	if name == "" {
		return fmt.Errorf("%w: --name", shared.ErrMissingArgument)
	}

	if err := r.ensureSession(ctx); err != nil {
		return err
	}

	playlist, err := r.spotify.CreatePlaylist(ctx, name, cmd.String("description"), cmd.Bool("public"))
	if err != nil {
		return err
	}

	if uris := cmd.StringSlice("track"); len(uris) > 0 {
		if err := r.spotify.AddTracks(ctx, playlist.ID, uris); err != nil {
			return err
		}
		playlist.TrackCount = len(uris)
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlist, cmd.Bool("pretty"))
	}

	r.writePlain("✓ Created playlist %q (%s)\n", playlist.Name, playlist.ID)
	if playlist.URL != "" {
		r.writePlain("%s\n", playlist.URL)
	}
	return nil
}

// History lists previously downloaded tracks.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	if r.history == nil {
		return fmt.Errorf("%w: download history requires the sqlite storage backend", shared.ErrInvalidConfig)
	}

	records, err := r.history.Downloads(int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(records, cmd.Bool("pretty"))
	}

	if len(records) == 0 {
		return r.writePlain("No downloads yet\n")
	}

	for _, rec := range records {
		r.writePlain("%s  %s — %s\n  %s\n", rec.DownloadedAt.Format("2006-01-02 15:04"), rec.Title, rec.Artist, rec.FilePath)
	}
	return nil
}
