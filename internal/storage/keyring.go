package storage

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const defaultKeyringService = "spolist"

// KeyringSlot implements [Slot] on the operating system keyring.
//
// Tokens land in the platform credential store instead of a file on disk,
// at the cost of requiring an unlocked keyring session.
type KeyringSlot struct {
	service string
}

// NewKeyringSlot creates a keyring-backed store under the given service name.
func NewKeyringSlot(service string) *KeyringSlot {
	if service == "" {
		service = defaultKeyringService
	}
	return &KeyringSlot{service: service}
}

func (s *KeyringSlot) Get(key string) (string, bool, error) {
	value, err := keyring.Get(s.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("keyring read failed for %q: %w", key, err)
	}
	return value, true, nil
}

func (s *KeyringSlot) Set(key, value string) error {
	if err := keyring.Set(s.service, key, value); err != nil {
		return fmt.Errorf("keyring write failed for %q: %w", key, err)
	}
	return nil
}

func (s *KeyringSlot) Delete(key string) error {
	err := keyring.Delete(s.service, key)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keyring delete failed for %q: %w", key, err)
	}
	return nil
}
