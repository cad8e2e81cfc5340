package store

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
)

// memoryStore is an in-process Store for tests and single-node runs.
type memoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() Store {
	return &memoryStore{
		docs:  make(map[string][]byte),
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *memoryStore) Get(ctx context.Context, key string, v any) error {
	s.mu.RLock()
	data, ok := s.docs[key]
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(data, v)
}

func (s *memoryStore) Set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.docs[key] = data
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.docs, key)
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) WithLock(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	s.locksMu.Lock()
	lock, ok := s.locks[name]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[name] = lock
	}
	s.locksMu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	return fn(ctx)
}

func (s *memoryStore) Actors(ctx context.Context, guild string) ([]string, error) {
	prefix := "guild:" + guild + ":actor:"

	s.mu.RLock()
	defer s.mu.RUnlock()

	var actors []string
	for key := range s.docs {
		if !strings.HasPrefix(key, prefix) || !strings.HasSuffix(key, ":record") {
			continue
		}
		actor := strings.TrimSuffix(strings.TrimPrefix(key, prefix), ":record")
		if actor != "" {
			actors = append(actors, actor)
		}
	}
	return actors, nil
}

func (s *memoryStore) Close() error {
	return nil
}
