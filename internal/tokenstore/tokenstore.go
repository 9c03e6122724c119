// Package tokenstore persists the single backend bearer token. The token is
// the only durable client-side state the gateway keeps: saved on login,
// cleared on logout, read on every upstream call.
package tokenstore

import (
	"context"
	"errors"
	"sync"
)

// ErrNoToken is returned when no token has been stored yet.
var ErrNoToken = errors.New("no token stored")

// Config holds Valkey connection settings. An empty Addr selects the
// in-memory store.
type Config struct {
	Addr     string
	Password string
	Key      string
}

// Store holds the backend bearer token.
type Store interface {
	Token(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Memory is a process-local Store, used when no Valkey address is
// configured and in tests.
type Memory struct {
	mu    sync.Mutex
	token string
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" {
		return "", ErrNoToken
	}
	return m.token, nil
}

func (m *Memory) Save(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
