package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/SyedSaifuddin045/spolist/internal/auth"
	"github.com/SyedSaifuddin045/spolist/internal/shared"
)

// AuthLogin completes the PKCE flow: redirect, callback, code exchange.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.config.Validate(); err != nil {
		return err
	}

	err := r.ensureSession(ctx)
	if errors.Is(err, shared.ErrNotAuthenticated) {
		// Invalid is terminal until an explicit retry; logging in is that
		// explicit retry, so reset and run the flow once more.
		r.logger.Info("stored session unusable, starting fresh authorization")
		if logoutErr := r.coordinator.Logout(); logoutErr != nil {
			return logoutErr
		}
		err = r.ensureSession(ctx)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, err)
	}

	token, _ := r.coordinator.Current()
	r.logger.Info("authentication successful", "expires", token.ExpiryDate.Format(time.RFC3339))

	return r.writePlain("✓ Logged in to Spotify\n")
}

// AuthStatus reports the coordinator state and token expiry.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	token, state := r.coordinator.Current()

	if state == auth.StateUninitialized {
		// peek at storage without triggering a redirect
		if err := r.describeStoredToken(); err != nil {
			return err
		}
		return nil
	}

	r.writePlain("State: %s\n", state)
	if token.AccessToken != "" {
		r.describeToken(token)
	}
	return nil
}

func (r *Runner) describeStoredToken() error {
	store := auth.NewStore(r.slot)
	token, ok, err := store.Retrieve()
	if err != nil {
		return err
	}
	if !ok {
		return r.writePlain("✗ Not authenticated (no stored session)\n")
	}

	r.describeToken(token)
	return nil
}

func (r *Runner) describeToken(token auth.Token) {
	if token.Valid(time.Now()) {
		r.writePlain("✓ Authenticated\n")
		r.writePlain("Token expires: %s\n", token.ExpiryDate.Format(time.RFC3339))
	} else {
		r.writePlain("✗ Access token expired (will refresh on next use)\n")
	}
}

// AuthLogout clears the persisted session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.coordinator.Logout(); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}

	r.logger.Info("session cleared")
	return r.writePlain("✓ Logged out\n")
}
