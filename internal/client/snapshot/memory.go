package snapshot

import (
	"context"
	"sync"
)

// MemoryStore keeps snapshots in a map. Used by tests and throwaway sessions.
type MemoryStore struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	saves   map[string]int
	saveErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		blobs: make(map[string][]byte),
		saves: make(map[string]int),
	}
}

func (m *MemoryStore) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.blobs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

func (m *MemoryStore) Save(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveErr != nil {
		return m.saveErr
	}
	m.blobs[key] = append([]byte(nil), data...)
	m.saves[key]++
	return nil
}

// FailSaves makes every following Save return err. A nil err heals the store.
func (m *MemoryStore) FailSaves(err error) {
	m.mu.Lock()
	m.saveErr = err
	m.mu.Unlock()
}

// Saves reports how many successful saves key has seen.
func (m *MemoryStore) Saves(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves[key]
}
