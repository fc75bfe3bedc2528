// Spotify Web API implementation of [Service]
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/SyedSaifuddin045/spolist/internal/auth"
	"github.com/SyedSaifuddin045/spolist/internal/models"
	"github.com/SyedSaifuddin045/spolist/internal/shared"
)

const spotifyBaseURL = "https://api.spotify.com/v1"

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID           string         `json:"id"`
	DisplayName  string         `json:"display_name"`
	Email        string         `json:"email"`
	URI          string         `json:"uri"`
	ExternalURLs externalURLs   `json:"external_urls"`
	Images       []SpotifyImage `json:"images"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []SpotifyImage `json:"images"`
	URI    string         `json:"uri"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Artists      []SpotifyArtist `json:"artists"`
	Album        SpotifyAlbum    `json:"album"`
	DurationMS   int             `json:"duration_ms"`
	URI          string          `json:"uri"`
	ExternalURLs externalURLs    `json:"external_urls"`
}

// SpotifyPlaylist represents a Spotify playlist.
type SpotifyPlaylist struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Public       bool         `json:"public"`
	URI          string       `json:"uri"`
	ExternalURLs externalURLs `json:"external_urls"`
	Tracks       struct {
		Total int `json:"total"`
	} `json:"tracks"`
}

// SpotifyService implements [Service] for the Spotify Web API.
//
// Every request goes through the [auth.Gate], so a call either runs with a
// currently valid access token or fails before touching the network.
type SpotifyService struct {
	gate       *auth.Gate
	baseURL    string
	httpClient *http.Client
}

// NewSpotifyService creates a SpotifyService behind the given gate.
//
// An empty baseURL targets the production API; tests point it at a local
// server.
func NewSpotifyService(gate *auth.Gate, baseURL string, client *http.Client) *SpotifyService {
	if baseURL == "" {
		baseURL = spotifyBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &SpotifyService{
		gate:       gate,
		baseURL:    baseURL,
		httpClient: client,
	}
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// doRequest performs a gated, authenticated request against the API.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body any, result any) error {
	return s.gate.WithValidToken(ctx, func(accessToken string) error {
		var reqBody *bytes.Reader
		if body != nil {
			data, err := json.Marshal(body)
			if err != nil {
				return fmt.Errorf("failed to encode request body: %w", err)
			}
			reqBody = bytes.NewReader(data)
		} else {
			reqBody = bytes.NewReader(nil)
		}

		req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, reqBody)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+accessToken)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("%w: spotify API status %d", shared.ErrAPIRequest, resp.StatusCode)
		}

		if result != nil {
			if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
				return fmt.Errorf("failed to decode response: %w", err)
			}
		}

		return nil
	})
}

// Profile retrieves the current authenticated user's profile.
func (s *SpotifyService) Profile(ctx context.Context) (*models.UserProfile, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}

	profile := &models.UserProfile{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		URI:         user.URI,
		URL:         user.ExternalURLs.Spotify,
	}
	for _, img := range user.Images {
		profile.Images = append(profile.Images, img.URL)
	}

	return profile, nil
}

// SearchTracks searches the catalog for tracks matching query.
func (s *SpotifyService) SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", shared.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	endpoint := "/search?q=" + url.QueryEscape(query) + "&type=track&limit=" + strconv.Itoa(limit)

	var response struct {
		Tracks struct {
			Items []SpotifyTrack `json:"items"`
		} `json:"tracks"`
	}

	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(response.Tracks.Items))
	for _, item := range response.Tracks.Items {
		tracks = append(tracks, mapTrack(item))
	}

	return tracks, nil
}

// CreatePlaylist creates a playlist owned by the authenticated user.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, name, description string, public bool) (*models.Playlist, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: playlist name required", shared.ErrInvalidInput)
	}

	profile, err := s.Profile(ctx)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"name":        name,
		"description": description,
		"public":      public,
	}

	var created SpotifyPlaylist
	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(profile.ID))
	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, &created); err != nil {
		return nil, err
	}

	return &models.Playlist{
		ID:          created.ID,
		Name:        created.Name,
		Description: created.Description,
		Public:      created.Public,
		TrackCount:  created.Tracks.Total,
		URI:         created.URI,
		URL:         created.ExternalURLs.Spotify,
	}, nil
}

// AddTracks appends track URIs to a playlist in a single request.
func (s *SpotifyService) AddTracks(ctx context.Context, playlistID string, trackURIs []string) error {
	if playlistID == "" {
		return fmt.Errorf("%w: playlist ID required", shared.ErrInvalidInput)
	}
	if len(trackURIs) == 0 {
		return fmt.Errorf("%w: no track URIs provided", shared.ErrInvalidInput)
	}
	if len(trackURIs) > 100 {
		return fmt.Errorf("%w: maximum 100 track URIs per request", shared.ErrInvalidInput)
	}

	body := map[string]any{"uris": trackURIs}
	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))

	return s.doRequest(ctx, http.MethodPost, endpoint, body, nil)
}

func mapTrack(item SpotifyTrack) models.Track {
	track := models.Track{
		ID:       item.ID,
		Title:    item.Name,
		Album:    item.Album.Name,
		Duration: item.DurationMS / 1000,
		URI:      item.URI,
		URL:      item.ExternalURLs.Spotify,
	}

	if len(item.Artists) > 0 {
		track.Artist = item.Artists[0].Name
	}
	if len(item.Album.Images) > 0 {
		track.AlbumArt = item.Album.Images[0].URL
	}

	return track
}
