// package storage provides the persistence slots backing the auth session.
//
// A [Slot] store is the scoped key-value storage the token lifecycle writes
// its "verifier" and "token" slots to. Backends: SQLite (default), the OS
// keyring, and an in-memory map for tests.
package storage

import (
	"fmt"
	"sync"

	"github.com/SyedSaifuddin045/spolist/internal/shared"
)

// Slot is a scoped key-value store surviving process restarts.
//
// Get returns ok == false for a missing key; an error is reserved for
// backend failures, never for absence.
type Slot interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
}

// Keys used by the authorization flow.
const (
	KeyVerifier = "verifier"
	KeyToken    = "token"
	KeyState    = "state"
)

// MemorySlot is an in-memory [Slot] for tests and the "memory" backend.
type MemorySlot struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMemorySlot creates an empty [MemorySlot].
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{data: make(map[string]string)}
}

func (s *MemorySlot) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *MemorySlot) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *MemorySlot) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Open creates a [Slot] for the configured backend.
//
// The SQLite backend also exposes download history; callers needing it
// should type-assert to [*SQLiteSlot].
func Open(cfg shared.StorageConfig) (Slot, error) {
	switch cfg.Backend {
	case "", "sqlite":
		db, err := shared.NewDatabase(cfg.Path)
		if err != nil {
			return nil, err
		}
		shared.ConfigureDatabase(db, cfg.MaxOpenConns, cfg.MaxIdleConns)
		return NewSQLiteSlot(db)
	case "keyring":
		return NewKeyringSlot(""), nil
	case "memory":
		return NewMemorySlot(), nil
	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q", shared.ErrInvalidConfig, cfg.Backend)
	}
}
