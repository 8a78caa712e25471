package store

import (
	"context"
	"sync"

	"github.com/tinifier/tinifier/internal/shortener"
)

// MemoryStore is an in-memory implementation of shortener.Store. Nothing
// survives the process.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]shortener.Entry
}

// NewMemoryStore creates a new in-memory entry store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]shortener.Entry),
	}
}

func (m *MemoryStore) Insert(_ context.Context, code string, e shortener.Entry) (*shortener.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[code]; ok {
		return nil, shortener.ErrExists
	}

	m.entries[code] = e

	return &e, nil
}

func (m *MemoryStore) Get(_ context.Context, code string) (*shortener.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[code]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	return &e, nil
}

func (m *MemoryStore) Remove(_ context.Context, code string) (*shortener.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[code]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	delete(m.entries, code)

	return &e, nil
}

func (m *MemoryStore) Contains(_ context.Context, code string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.entries[code]

	return ok, nil
}

// Compile-time check.
var _ shortener.Store = (*MemoryStore)(nil)
