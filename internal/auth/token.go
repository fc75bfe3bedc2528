package auth

import (
	"encoding/json"
	"time"

	"github.com/SyedSaifuddin045/spolist/internal/storage"
)

// Token is a provider token pair with its computed absolute expiry.
//
// ExpiryDate is fixed once, at the instant the token is received; validity
// is never stored, it is recomputed on every read via [Token.Valid].
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int       `json:"expires_in"`
	ExpiryDate   time.Time `json:"expiry_date"`
}

// Valid reports whether the token authorizes requests at the given instant.
//
// The expiry instant itself counts as expired.
func (t Token) Valid(now time.Time) bool {
	return t.AccessToken != "" && now.Before(t.ExpiryDate)
}

// Store persists a single [Token] in a [storage.Slot].
//
// A save always supersedes the prior token, never merges with it.
type Store struct {
	slot storage.Slot
	now  func() time.Time
}

// NewStore creates a token store over the given slot.
func NewStore(slot storage.Slot) *Store {
	return &Store{slot: slot, now: time.Now}
}

// Save serializes the token into the "token" slot.
//
// The absolute expiry is computed here from expires_in when the caller has
// not already fixed it at receipt time.
func (s *Store) Save(token Token) error {
	if token.ExpiryDate.IsZero() {
		token.ExpiryDate = s.now().Add(time.Duration(token.ExpiresIn) * time.Second)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return err
	}

	return s.slot.Set(storage.KeyToken, string(data))
}

// Retrieve loads the stored token, if any.
//
// A missing slot or an unparseable record is absence (ok == false), not an
// error; corrupt storage must not break startup. The error return is
// reserved for backend failures.
func (s *Store) Retrieve() (Token, bool, error) {
	raw, ok, err := s.slot.Get(storage.KeyToken)
	if err != nil {
		return Token{}, false, err
	}
	if !ok {
		return Token{}, false, nil
	}

	var token Token
	if err := json.Unmarshal([]byte(raw), &token); err != nil {
		return Token{}, false, nil
	}

	return token, true, nil
}

// Clear removes the stored token (logout).
func (s *Store) Clear() error {
	return s.slot.Delete(storage.KeyToken)
}
