package cart

import (
	"context"
	"encoding/json"
	"sync"
)

// Store keeps carts between requests.
type Store interface {
	Get(ctx context.Context, id string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps carts in process memory. They are lost on restart.
// Carts are stored encoded so callers never share a Lines slice.
type MemoryStore struct {
	mu    sync.Mutex
	carts map[string][]byte
}

// NewMemoryStore returns an empty in-process cart store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string][]byte)}
}

// Get returns a copy of the stored cart
func (m *MemoryStore) Get(_ context.Context, id string) (*Cart, error) {
	m.mu.Lock()
	data, ok := m.carts[id]
	m.mu.Unlock()
	if !ok {
		return nil, ErrCartNotFound
	}

	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Save stores a cart, replacing any previous version
func (m *MemoryStore) Save(_ context.Context, c *Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.carts[c.ID] = data
	m.mu.Unlock()
	return nil
}

// Delete removes a cart
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.carts[id]; !ok {
		return ErrCartNotFound
	}
	delete(m.carts, id)
	return nil
}
