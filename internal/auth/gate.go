package auth

import (
	"context"

	"github.com/SyedSaifuddin045/spolist/internal/shared"
)

// Gate guards every dependent provider call behind a valid session.
//
// Consumers never read the coordinator's token for authorization decisions
// directly; they pass an operation here and receive the access token only
// while the coordinator is in StateValid.
type Gate struct {
	coordinator *Coordinator
}

// NewGate creates a Gate over the coordinator.
func NewGate(c *Coordinator) *Gate {
	return &Gate{coordinator: c}
}

// WithValidToken resolves the session and, if it settles Valid, invokes op
// with the current access token.
//
// While a redirect is pending the call is dropped with
// [shared.ErrDeferred]; from Invalid it fails with
// [shared.ErrNotAuthenticated]. op is never invoked with an expired token.
func (g *Gate) WithValidToken(ctx context.Context, op func(accessToken string) error) error {
	if err := g.coordinator.Resolve(ctx, ""); err != nil {
		return err
	}

	token, state := g.coordinator.Current()
	if state != StateValid {
		return shared.ErrNotAuthenticated
	}

	return op(token.AccessToken)
}
