package scratch

import (
	"errors"
	"sync"
)

// JobIDKey is the slot holding the id of the task currently being polled.
const JobIDKey = "docbaseId"

var ErrNotFound = errors.New("scratch key not found")

// Store is a small session scoped key/value area. Values are advisory and
// may be lost at any time.
type Store interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Remove(key string) error
}

type MemoryStore struct {
	lock   sync.Mutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

func (m *MemoryStore) Set(key, value string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Get(key string) (string, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryStore) Remove(key string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.values, key)
	return nil
}
