package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authorization flow errors
	ErrInvalidParameter  = fmt.Errorf("invalid parameter")
	ErrMissingVerifier   = fmt.Errorf("no code verifier stored")
	ErrProviderRejected  = fmt.Errorf("provider rejected code exchange")
	ErrRefreshRejected   = fmt.Errorf("provider rejected token refresh")
	ErrRefreshTransport  = fmt.Errorf("token refresh transport failure")
	ErrMalformedResponse = fmt.Errorf("malformed provider response")

	// Session errors
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrDeferred         = fmt.Errorf("authorization in progress")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrTrackNotFound      = fmt.Errorf("track not found")
	ErrDownloadFailed     = fmt.Errorf("song download failed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
