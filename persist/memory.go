package persist

import "sync"

// MemStorage is the in-process Storage backend, used in tests and for
// stores that want rehydration semantics without a durable medium.
type MemStorage struct {
	lock  sync.Mutex
	items map[string][]byte
}

func NewMemStorage() *MemStorage {
	return &MemStorage{items: make(map[string][]byte)}
}

func (m *MemStorage) GetItem(key string) ([]byte, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	val, ok := m.items[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MemStorage) SetItem(key string, value []byte) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	m.items[key] = stored
	return nil
}

func (m *MemStorage) RemoveItem(key string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.items, key)
	return nil
}

func (m *MemStorage) Clear() error {
	m.lock.Lock()
	defer m.lock.Unlock()
	clear(m.items)
	return nil
}

func (m *MemStorage) Purge() error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.items = make(map[string][]byte)
	return nil
}

// Len reports the number of stored items.
func (m *MemStorage) Len() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return len(m.items)
}
