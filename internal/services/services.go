// package services contains API clients for the streaming provider and the
// song download proxy.
package services

import (
	"context"

	"github.com/SyedSaifuddin045/spolist/internal/models"
)

// Service is the authenticated surface of the streaming provider.
//
// Every implementation obtains its access token through an
// [auth.Gate]; none talk to the provider's auth endpoints directly.
type Service interface {
	Name() string

	// Profile retrieves the authenticated user's profile.
	Profile(ctx context.Context) (*models.UserProfile, error)

	// SearchTracks searches the catalog for tracks matching query.
	SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error)

	// CreatePlaylist creates a playlist owned by the authenticated user.
	CreatePlaylist(ctx context.Context, name, description string, public bool) (*models.Playlist, error)

	// AddTracks appends track URIs to a playlist.
	AddTracks(ctx context.Context, playlistID string, trackURIs []string) error
}
