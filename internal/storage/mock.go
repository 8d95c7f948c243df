package storage

import (
	"sync"
)

// MockRegistry keeps all events in memory.
type MockRegistry struct {
	mutex  *sync.Mutex
	Events map[K][]interface{}
}

func NewMockRegistry() *MockRegistry {
	return &MockRegistry{
		mutex:  new(sync.Mutex),
		Events: make(map[K][]interface{}),
	}
}

func (m *MockRegistry) Add(key K, value interface{}) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.Events[key] = append(m.Events[key], value)
	return nil
}

// GetAll is not supported, tests inspect the Events field directly.
func (m *MockRegistry) GetAll(key K, values interface{}) error {
	return nil
}

// Get returns a copy of the events for the given key.
func (m *MockRegistry) Get(key K) []interface{} {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	ee := make([]interface{}, len(m.Events[key]))
	copy(ee, m.Events[key])
	return ee
}
