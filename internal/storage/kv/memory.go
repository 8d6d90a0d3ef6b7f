package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is a process-local Store used as the fallback backend and in
// tests. Listing order matches the durable backend: lexical by key.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, key string, out interface{}) (bool, error) {
	s.mu.RLock()
	b, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if out != nil {
		if err := json.Unmarshal(b, out); err != nil {
			return false, fmt.Errorf("kv: decode %s: %w", key, err)
		}
	}
	return true, nil
}

// Set implements Store.
func (s *MemoryStore) Set(ctx context.Context, key string, value interface{}) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv: encode %s: %w", key, err)
	}
	s.mu.Lock()
	s.data[key] = b
	s.mu.Unlock()
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(ctx context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return 0, nil
	}
	delete(s.data, key)
	return 1, nil
}

// Keys implements Store.
func (s *MemoryStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	prefix, suffix, wild, err := splitPattern(pattern)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.data {
		if !wild {
			if k == pattern {
				keys = append(keys, k)
			}
			continue
		}
		if strings.HasPrefix(k, prefix) && matchRest(k, prefix, suffix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Reset clears all entries. Test hook.
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	s.data = make(map[string][]byte)
	s.mu.Unlock()
}
