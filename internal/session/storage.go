// Package session owns the authentication token and cached user record.
// It is the single source of truth for "is a user authenticated, and
// who are they", and the only component that reads or writes the
// persisted session keys.
package session

import (
	"context"
	"sync"
)

// Fixed storage keys for the persisted session pair.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// ErrNotFound is returned by a Storage when a key has no value.
type notFoundError struct{}

func (notFoundError) Error() string { return "session key not found" }

// ErrNotFound is the sentinel for a missing storage key.
var ErrNotFound error = notFoundError{}

// Storage is the durable key/value backend the session manager
// persists through. Implementations must return ErrNotFound for
// missing keys and tolerate deletes of absent keys.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}

// MemoryStorage is an in-process Storage for tests and ephemeral use.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: map[string][]byte{}}
}

func (m *MemoryStorage) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *MemoryStorage) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = v
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}
