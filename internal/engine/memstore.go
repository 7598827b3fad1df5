package engine

import (
	"sort"
	"sync"
)

// MemStore is an in-memory Backend with optional write-through to a Persistence file.
type MemStore struct {
	mu        sync.RWMutex
	data      map[string]string
	persister *Persistence
}

// NewMemStore initializes a store.
// It accepts existing data (from Persistence.Load) and a persister, both may be nil.
func NewMemStore(initialData map[string]string, p *Persistence) *MemStore {
	if initialData == nil {
		initialData = make(map[string]string)
	}
	return &MemStore{
		data:      initialData,
		persister: p,
	}
}

func (m *MemStore) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	val, ok := m.data[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return val, nil
}

func (m *MemStore) Set(key, val string) error {
	return m.SetMany(map[string]string{key: val})
}

// SetMany applies all writes and flushes once. If the flush fails the
// in-memory map is rolled back so memory and disk stay in agreement.
func (m *MemStore) SetMany(items map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev := make(map[string]*string, len(items))
	for k, v := range items {
		if old, ok := m.data[k]; ok {
			prev[k] = &old
		} else {
			prev[k] = nil
		}
		m.data[k] = v
	}

	if err := m.flush(); err != nil {
		m.rollback(prev)
		return err
	}
	return nil
}

func (m *MemStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.data[key]
	if !ok {
		return nil
	}
	delete(m.data, key)

	if err := m.flush(); err != nil {
		m.data[key] = old
		return err
	}
	return nil
}

func (m *MemStore) Keys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]string, 0, len(m.data))
	for k := range m.data {
		list = append(list, k)
	}
	sort.Strings(list)
	return list, nil
}

func (m *MemStore) Close() error { return nil }

// flush writes the whole map through the persister.
// It MUST be called while holding m.mu.Lock.
func (m *MemStore) flush() error {
	if m.persister == nil {
		return nil
	}
	return m.persister.Save(m.data)
}

func (m *MemStore) rollback(prev map[string]*string) {
	for k, v := range prev {
		if v == nil {
			delete(m.data, k)
			continue
		}
		m.data[k] = *v
	}
}
