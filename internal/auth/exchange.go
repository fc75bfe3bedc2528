package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SyedSaifuddin045/spolist/internal/shared"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"

	// requestTimeout bounds exchange and refresh calls so the coordinator
	// can never sit in ExchangePending or Refreshing indefinitely.
	requestTimeout = 10 * time.Second
)

// Exchanger talks to the provider's token endpoint for both the initial
// authorization-code exchange and later refreshes.
type Exchanger struct {
	endpoint   string
	httpClient *http.Client
	now        func() time.Time
}

// NewExchanger creates an Exchanger against the given token endpoint.
//
// An empty endpoint targets Spotify; a nil client gets a timeout-bounded
// default.
func NewExchanger(endpoint string, client *http.Client) *Exchanger {
	if endpoint == "" {
		endpoint = spotifyTokenURL
	}
	if client == nil {
		client = &http.Client{Timeout: requestTimeout}
	}

	return &Exchanger{
		endpoint:   endpoint,
		httpClient: client,
		now:        time.Now,
	}
}

// Exchange trades an authorization code plus the stored verifier for a
// token pair.
//
// Fails with [shared.ErrMissingVerifier] when no verifier accompanies the
// code, [shared.ErrProviderRejected] on a non-success response and
// [shared.ErrMalformedResponse] when the body lacks required fields. The
// returned token's expiry is fixed at receipt time; persisting it and
// clearing the consumed verifier is the caller's job.
func (e *Exchanger) Exchange(ctx context.Context, clientID, code, redirectURI, verifier string) (Token, error) {
	if verifier == "" {
		return Token{}, fmt.Errorf("%w: redirect step skipped or storage cleared", shared.ErrMissingVerifier)
	}

	form := url.Values{}
	form.Set("client_id", clientID)
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", redirectURI)
	form.Set("code_verifier", verifier)

	body, status, err := e.post(ctx, form)
	if err != nil {
		return Token{}, fmt.Errorf("%w: %v", shared.ErrProviderRejected, err)
	}
	if status < 200 || status >= 300 {
		return Token{}, fmt.Errorf("%w: status %d: %s", shared.ErrProviderRejected, status, strings.TrimSpace(string(body)))
	}

	return e.parseToken(body)
}

// Refresh obtains a fresh token pair using the refresh token.
//
// Fails with [shared.ErrRefreshTransport] when no response arrives (the
// stored token may still be good, callers may retry) and with
// [shared.ErrRefreshRejected] on a non-success status (terminal: the
// provider likely invalidated the refresh token).
func (e *Exchanger) Refresh(ctx context.Context, clientID string, token Token) (Token, error) {
	if token.RefreshToken == "" {
		return Token{}, fmt.Errorf("%w: no refresh token held", shared.ErrRefreshRejected)
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", token.RefreshToken)
	form.Set("client_id", clientID)

	body, status, err := e.post(ctx, form)
	if err != nil {
		return Token{}, fmt.Errorf("%w: %v", shared.ErrRefreshTransport, err)
	}
	if status < 200 || status >= 300 {
		return Token{}, fmt.Errorf("%w: status %d: %s", shared.ErrRefreshRejected, status, strings.TrimSpace(string(body)))
	}

	refreshed, err := e.parseToken(body)
	if err != nil {
		return Token{}, err
	}

	// Spotify omits refresh_token from refresh responses when the old one
	// stays valid.
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = token.RefreshToken
	}

	return refreshed, nil
}

func (e *Exchanger) post(ctx context.Context, form url.Values) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}

	return body, resp.StatusCode, nil
}

// parseToken decodes a token endpoint response body and fixes the absolute
// expiry at receipt time.
func (e *Exchanger) parseToken(body []byte) (Token, error) {
	var token Token
	if err := json.Unmarshal(body, &token); err != nil {
		return Token{}, fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
	}
	if token.AccessToken == "" || token.ExpiresIn <= 0 {
		return Token{}, fmt.Errorf("%w: missing access_token or expires_in", shared.ErrMalformedResponse)
	}

	token.ExpiryDate = e.now().Add(time.Duration(token.ExpiresIn) * time.Second)
	return token, nil
}
