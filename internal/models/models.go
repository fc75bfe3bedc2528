// package models defines the data model shared across the client.
package models

// UserProfile represents the authenticated Spotify user.
type UserProfile struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	Email       string   `json:"email"`
	URI         string   `json:"uri"`
	URL         string   `json:"url"`
	Images      []string `json:"images"`
}

// Track represents a playable track from the provider.
type Track struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	Duration int    `json:"duration"` // seconds
	URI      string `json:"uri"`
	URL      string `json:"url"` // provider web link, sent to the download proxy
	AlbumArt string `json:"album_art,omitempty"`
}

// Playlist represents a user playlist on the provider.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
	TrackCount  int    `json:"track_count"`
	URI         string `json:"uri"`
	URL         string `json:"url"`
}
