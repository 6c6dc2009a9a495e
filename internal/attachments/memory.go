package attachments

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore is an in-process Store for tests and local development.
type MemoryStore struct {
	mu    sync.Mutex
	lists map[Parent][]Attachment
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{lists: make(map[Parent][]Attachment)}
}

func (m *MemoryStore) List(ctx context.Context, parent Parent) ([]Attachment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.lists[parent]), nil
}

func (m *MemoryStore) Insert(ctx context.Context, parent Parent, a Attachment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists[parent] = append([]Attachment{a}, m.lists[parent]...)
	return nil
}

func (m *MemoryStore) RemoveAt(ctx context.Context, parent Parent, index int) (Attachment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := m.lists[parent]
	if index < 0 || index >= len(items) {
		return Attachment{}, ErrInvalidIndex
	}

	target := items[index]
	m.lists[parent] = slices.Delete(slices.Clone(items), index, index+1)
	return target, nil
}

func (m *MemoryStore) RemoveAll(ctx context.Context, parent Parent) ([]Attachment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := m.lists[parent]
	delete(m.lists, parent)
	return items, nil
}

var _ Store = (*MemoryStore)(nil)
