// Package memory keeps credentials in process memory. Nothing survives a restart.
package memory

import (
	"context"
	"sync"

	domainErrors "github.com/polkiloo/marketclient/internal/domain/errors"
)

// Storage implements repository.CredentialRepository on a map.
type Storage struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// New creates an empty storage.
func New() *Storage {
	return &Storage{items: make(map[string][]byte)}
}

func (s *Storage) Load(_ context.Context, deviceID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sealed, ok := s.items[deviceID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return append([]byte(nil), sealed...), nil
}

func (s *Storage) Save(_ context.Context, deviceID string, sealed []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[deviceID] = append([]byte(nil), sealed...)
	return nil
}

func (s *Storage) Delete(_ context.Context, deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, deviceID)
	return nil
}
