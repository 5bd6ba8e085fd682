package repository

import (
	"context"
	"sync"

	"github.com/fasterr/marketplace/internal/store"
)

// memStore is an in-memory store.Store for repository tests. failNextSet
// makes the next write report a capacity rejection.
type memStore struct {
	mu          sync.Mutex
	data        map[string]string
	failNextSet bool
	setCalls    int
}

func newMemStore() *memStore {
	return &memStore{data: map[string]string{}}
}

func (m *memStore) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls++
	if m.failNextSet {
		m.failNextSet = false
		return store.ErrCapacityExceeded
	}
	m.data[key] = value
	return nil
}

func (m *memStore) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
