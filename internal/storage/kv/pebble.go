package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"

	pebblestore "github.com/redscout/redscout/internal/storage/pebble"
)

// PebbleStore is the durable Store backed by a Pebble database.
type PebbleStore struct {
	db *pebblestore.DB
}

// NewPebbleStore wraps an open Pebble database.
func NewPebbleStore(db *pebblestore.DB) *PebbleStore {
	return &PebbleStore{db: db}
}

// Get implements Store.
func (s *PebbleStore) Get(ctx context.Context, key string, out interface{}) (bool, error) {
	b, err := s.db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, pebblestore.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("kv: get %s: %w", key, err)
	}
	if out != nil {
		if err := json.Unmarshal(b, out); err != nil {
			return false, fmt.Errorf("kv: decode %s: %w", key, err)
		}
	}
	return true, nil
}

// Set implements Store.
func (s *PebbleStore) Set(ctx context.Context, key string, value interface{}) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv: encode %s: %w", key, err)
	}
	if err := s.db.Set([]byte(key), b); err != nil {
		return fmt.Errorf("kv: set %s: %w", key, err)
	}
	return nil
}

// Delete implements Store.
func (s *PebbleStore) Delete(ctx context.Context, key string) (int, error) {
	// Pebble deletes are blind; probe first so callers get the 0|1 count.
	if _, err := s.db.Get([]byte(key)); err != nil {
		if errors.Is(err, pebblestore.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("kv: delete %s: %w", key, err)
	}
	if err := s.db.Delete([]byte(key)); err != nil {
		return 0, fmt.Errorf("kv: delete %s: %w", key, err)
	}
	return 1, nil
}

// Keys implements Store. Enumeration is in Pebble's lexical key order.
func (s *PebbleStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	prefix, suffix, wild, err := splitPattern(pattern)
	if err != nil {
		return nil, err
	}
	if !wild {
		if found, err := s.Get(ctx, pattern, nil); err != nil {
			return nil, err
		} else if found {
			return []string{pattern}, nil
		}
		return nil, nil
	}

	lo := []byte(prefix)
	hi := append(append([]byte{}, lo...), 0xFF)
	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: lo, UpperBound: hi})
	if err != nil {
		return nil, fmt.Errorf("kv: keys %s: %w", pattern, err)
	}
	defer iter.Close()

	var keys []string
	for ok := iter.First(); ok; ok = iter.Next() {
		k := string(iter.Key())
		if matchRest(k, prefix, suffix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}
