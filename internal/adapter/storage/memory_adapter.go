package storage

import (
	"context"
	"sync"

	"github.com/rl1809/cake-orders/internal/port"
)

// MemoryAdapter keeps drafts in process memory; they do not survive a restart.
type MemoryAdapter struct {
	mu     sync.RWMutex
	drafts map[string][]byte
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{drafts: make(map[string][]byte)}
}

func (m *MemoryAdapter) Save(_ context.Context, key string, blob []byte) error {
	cp := make([]byte, len(blob))
	copy(cp, blob)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.drafts[key] = cp
	return nil
}

func (m *MemoryAdapter) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	blob, ok := m.drafts[key]
	if !ok {
		return nil, port.ErrDraftNotFound
	}
	cp := make([]byte, len(blob))
	copy(cp, blob)
	return cp, nil
}

func (m *MemoryAdapter) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drafts, key)
	return nil
}

func (m *MemoryAdapter) Ping(context.Context) error {
	return nil
}
