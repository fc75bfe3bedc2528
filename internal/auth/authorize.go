package auth

import (
	"fmt"

	"github.com/SyedSaifuddin045/spolist/internal/shared"
	"github.com/SyedSaifuddin045/spolist/internal/storage"
	"golang.org/x/oauth2"
)

// Authorizer builds provider authorization URLs and hands the user over to
// the provider's consent page.
//
// Beginning an authorization overwrites any previously stored verifier, so
// only one attempt is ever in flight.
type Authorizer struct {
	config         *oauth2.Config
	slot           storage.Slot
	verifierLength int

	// open navigates to the consent page; swapped out in tests.
	open func(url string) error
}

// NewAuthorizer creates an Authorizer for the configured Spotify client.
func NewAuthorizer(cfg shared.SpotifyConfig, slot storage.Slot) *Authorizer {
	config := &oauth2.Config{
		ClientID:    cfg.ClientID,
		RedirectURL: cfg.RedirectURI,
		Scopes:      cfg.ScopeList(),
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &Authorizer{
		config:         config,
		slot:           slot,
		verifierLength: DefaultVerifierLength,
		open:           shared.OpenBrowser,
	}
}

// Begin generates and persists a fresh verifier and state, and returns the
// authorization URL carrying the S256 challenge.
//
// The URL includes client_id, response_type=code, redirect_uri, scope,
// code_challenge_method and code_challenge.
func (a *Authorizer) Begin(state string) (string, error) {
	if a.config.ClientID == "" {
		return "", fmt.Errorf("%w: client_id", shared.ErrMissingCredentials)
	}

	verifier, err := GenerateVerifier(a.verifierLength)
	if err != nil {
		return "", err
	}

	if err := a.slot.Set(storage.KeyVerifier, verifier); err != nil {
		return "", fmt.Errorf("failed to persist verifier: %w", err)
	}
	if err := a.slot.Set(storage.KeyState, state); err != nil {
		return "", fmt.Errorf("failed to persist state: %w", err)
	}

	authURL := a.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
		oauth2.SetAuthURLParam("code_challenge", Challenge(verifier)),
	)

	return authURL, nil
}

// Redirect begins an authorization attempt and opens the system browser on
// the consent page.
func (a *Authorizer) Redirect(state string) error {
	authURL, err := a.Begin(state)
	if err != nil {
		return err
	}

	return a.open(authURL)
}

// ExpectedState returns the state parameter of the in-flight attempt, used
// by the callback listener to reject forged redirects.
func (a *Authorizer) ExpectedState() (string, bool, error) {
	return a.slot.Get(storage.KeyState)
}
