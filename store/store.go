package store

import (
	"context"
	"sync"
)

//Store durable key-value storage for JSON payloads. Implementations
//must tolerate absent keys and survive process restarts.
type Store interface {
	//Get returns the stored value and whether the key was present
	Get(ctx context.Context, key string) (string, bool, error)
	//Set stores the value, overwriting any prior one
	Set(ctx context.Context, key string, value string) error
	//Remove deletes the key; absent keys are not an error
	Remove(ctx context.Context, key string) error
}

//MemoryStore in-process Store, for tests and single-run tooling. It
//does not survive restarts.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

//NewMemoryStore new instance
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.data[key]
	return val, ok, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *MemoryStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}
