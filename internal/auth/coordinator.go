package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/SyedSaifuddin045/spolist/internal/shared"
	"github.com/SyedSaifuddin045/spolist/internal/storage"
)

// State is the coordinator's position in the token lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateRedirectPending
	StateExchangePending
	StateValid
	StateRefreshing
	StateInvalid
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRedirectPending:
		return "redirect-pending"
	case StateExchangePending:
		return "exchange-pending"
	case StateValid:
		return "valid"
	case StateRefreshing:
		return "refreshing"
	case StateInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// RetrievalState records whether storage has been inspected yet.
type RetrievalState int

const (
	RetrievalUnchecked RetrievalState = iota
	RetrievalAbsent
	RetrievalPresent
)

// CodeExchanger trades an authorization code for a token pair.
type CodeExchanger interface {
	Exchange(ctx context.Context, clientID, code, redirectURI, verifier string) (Token, error)
}

// TokenRefresher obtains a fresh token pair from a refresh token.
type TokenRefresher interface {
	Refresh(ctx context.Context, clientID string, token Token) (Token, error)
}

// Redirector begins an authorization attempt and navigates to the provider.
type Redirector interface {
	Redirect(state string) error
}

type attemptKind int

const (
	attemptExchange attemptKind = iota
	attemptRefresh
)

// Coordinator is the token lifecycle state machine.
//
// On first resolution it decides whether to redirect to the provider,
// exchange a callback code, reuse a stored token, or refresh an expired
// one. All consumers go through [Coordinator.Resolve] (directly or via
// [Gate]); at most one exchange or refresh is in flight at a time, and
// concurrent callers observe that attempt's outcome instead of issuing
// their own.
type Coordinator struct {
	mu        sync.Mutex
	state     State
	token     Token
	haveToken bool
	retrieval RetrievalState

	// generation invalidates in-flight attempts across a logout, so an
	// abandoned response cannot resurrect a stale session.
	generation uint64
	pending    chan struct{}

	cfg        shared.SpotifyConfig
	slot       storage.Slot
	store      *Store
	redirector Redirector
	exchanger  CodeExchanger
	refresher  TokenRefresher
	logger     *log.Logger
	now        func() time.Time
}

// CoordinatorOpts contains the coordinator's collaborators.
//
// Exchanger, Refresher, Redirector and Now are optional; nil values get
// production defaults. Tests substitute fakes.
type CoordinatorOpts struct {
	Config     shared.SpotifyConfig
	Slot       storage.Slot
	Exchanger  CodeExchanger
	Refresher  TokenRefresher
	Redirector Redirector
	Logger     *log.Logger
	Now        func() time.Time
}

// NewCoordinator creates a Coordinator in StateUninitialized.
func NewCoordinator(opts CoordinatorOpts) *Coordinator {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	exchanger := NewExchanger("", nil)
	var ex CodeExchanger = exchanger
	var rf TokenRefresher = exchanger
	if opts.Exchanger != nil {
		ex = opts.Exchanger
	}
	if opts.Refresher != nil {
		rf = opts.Refresher
	}

	var rd Redirector = NewAuthorizer(opts.Config, opts.Slot)
	if opts.Redirector != nil {
		rd = opts.Redirector
	}

	return &Coordinator{
		state:      StateUninitialized,
		cfg:        opts.Config,
		slot:       opts.Slot,
		store:      NewStore(opts.Slot),
		redirector: rd,
		exchanger:  ex,
		refresher:  rf,
		logger:     shared.WithLogger(opts.Logger, "component", "coordinator"),
		now:        opts.Now,
	}
}

// Resolve is the single entry point driving the state machine.
//
// code is the authorization code captured from the provider redirect, or
// empty when a consumer merely needs a usable token. Returns nil when the
// session is Valid afterwards, [shared.ErrDeferred] while an authorization
// redirect is pending, [shared.ErrNotAuthenticated] from Invalid, and the
// underlying failure otherwise. Safe for concurrent use.
func (c *Coordinator) Resolve(ctx context.Context, code string) error {
	c.mu.Lock()

	if c.pending != nil {
		ch := c.pending
		c.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
		return c.outcome()
	}

	switch c.state {
	case StateValid:
		if c.token.Valid(c.now()) {
			c.mu.Unlock()
			return nil
		}
		// token aged out since the last resolution
		return c.runAttempt(ctx, attemptRefresh, "")
	case StateInvalid:
		c.mu.Unlock()
		return shared.ErrNotAuthenticated
	case StateRedirectPending:
		// the callback code completes the pending redirect
		if code != "" && !c.haveToken {
			return c.runAttempt(ctx, attemptExchange, code)
		}
		// drop policy for code-less resolutions: rely on the pending
		// redirect, never queue
		c.mu.Unlock()
		return shared.ErrDeferred
	}

	// Uninitialized: inspect the callback code and storage.
	if code != "" && !c.haveToken {
		return c.runAttempt(ctx, attemptExchange, code)
	}

	stored, ok, err := c.store.Retrieve()
	if err != nil {
		c.mu.Unlock()
		return err
	}

	if ok {
		c.retrieval = RetrievalPresent
		c.token = stored
		c.haveToken = true
		if stored.Valid(c.now()) {
			c.state = StateValid
			c.mu.Unlock()
			return nil
		}
		return c.runAttempt(ctx, attemptRefresh, "")
	}

	c.retrieval = RetrievalAbsent
	c.state = StateRedirectPending
	c.mu.Unlock()

	c.logger.Info("no stored session, redirecting to provider")
	if err := c.redirector.Redirect(shared.GenerateID()); err != nil {
		c.mu.Lock()
		c.state = StateUninitialized
		c.mu.Unlock()
		return fmt.Errorf("authorization redirect failed: %w", err)
	}

	return shared.ErrDeferred
}

// runAttempt performs a single exchange or refresh. Called with c.mu held;
// releases it around the network call.
func (c *Coordinator) runAttempt(ctx context.Context, kind attemptKind, code string) error {
	gen := c.generation
	ch := make(chan struct{})
	c.pending = ch
	if kind == attemptExchange {
		c.state = StateExchangePending
	} else {
		c.state = StateRefreshing
	}
	current := c.token
	c.mu.Unlock()

	var fresh Token
	var err error
	switch kind {
	case attemptExchange:
		var verifier string
		var ok bool
		verifier, ok, err = c.slot.Get(storage.KeyVerifier)
		if err == nil && !ok {
			err = fmt.Errorf("%w: redirect step skipped or storage cleared", shared.ErrMissingVerifier)
		}
		if err == nil {
			c.logger.Debug("exchanging authorization code")
			fresh, err = c.exchanger.Exchange(ctx, c.cfg.ClientID, code, c.cfg.RedirectURI, verifier)
		}
	case attemptRefresh:
		c.logger.Debug("refreshing access token")
		fresh, err = c.refresher.Refresh(ctx, c.cfg.ClientID, current)
	}

	c.mu.Lock()
	if c.generation != gen {
		// session was reset while the request was in flight; the result,
		// success or failure, belongs to a flow the user abandoned
		if c.pending == ch {
			c.pending = nil
		}
		c.mu.Unlock()
		close(ch)
		return shared.ErrDeferred
	}
	c.pending = nil

	if err != nil {
		c.settleFailure(kind, err)
		c.mu.Unlock()
		close(ch)
		return err
	}

	if saveErr := c.store.Save(fresh); saveErr != nil {
		c.logger.Error("failed to persist token", "err", saveErr)
	}
	if kind == attemptExchange {
		// the verifier is single-use
		if delErr := c.slot.Delete(storage.KeyVerifier); delErr != nil {
			c.logger.Warn("failed to clear consumed verifier", "err", delErr)
		}
	}

	c.token = fresh
	c.haveToken = true
	c.retrieval = RetrievalPresent
	c.state = StateValid
	c.mu.Unlock()
	close(ch)

	return nil
}

// settleFailure picks the post-failure state. Called with c.mu held.
func (c *Coordinator) settleFailure(kind attemptKind, err error) {
	switch {
	case kind == attemptRefresh && errors.Is(err, shared.ErrRefreshTransport):
		// the stored token may still be good server-side; keep it and let a
		// later resolution retry
		c.logger.Warn("token refresh transport failure", "err", err)
		c.state = StateUninitialized
	case kind == attemptRefresh:
		// terminal: the provider likely invalidated the refresh token, and a
		// blind retry risks a loop
		c.logger.Error("token refresh rejected, clearing session", "err", err)
		if clearErr := c.store.Clear(); clearErr != nil {
			c.logger.Warn("failed to clear stored token", "err", clearErr)
		}
		c.token = Token{}
		c.haveToken = false
		c.state = StateInvalid
	default:
		// exchange failed: surface the error without auto-redirecting, so a
		// malformed code cannot cause a redirect loop
		c.logger.Error("code exchange failed", "err", err)
		c.state = StateInvalid
	}
}

// outcome maps the settled state to a resolution result for callers that
// waited on another caller's attempt.
func (c *Coordinator) outcome() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateValid:
		return nil
	case StateInvalid:
		return shared.ErrNotAuthenticated
	default:
		return shared.ErrDeferred
	}
}

// Current returns a snapshot of the token and state for display purposes.
//
// Authorization decisions must go through [Gate], never this snapshot.
func (c *Coordinator) Current() (Token, State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, c.state
}

// Retrieval reports whether storage has been checked and what it held.
func (c *Coordinator) Retrieval() RetrievalState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.retrieval
}

// Logout clears the persisted session and returns the machine to
// StateUninitialized. Any in-flight attempt's result is discarded.
func (c *Coordinator) Logout() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.token = Token{}
	c.haveToken = false
	c.retrieval = RetrievalUnchecked
	c.state = StateUninitialized

	if err := c.store.Clear(); err != nil {
		return err
	}
	if err := c.slot.Delete(storage.KeyVerifier); err != nil {
		return err
	}
	return c.slot.Delete(storage.KeyState)
}
