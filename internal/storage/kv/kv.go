package kv

import (
	"context"
	"fmt"
	"strings"
)

// Store is the uniform adapter over the backing medium. Values are
// structured records; implementations own serialization.
type Store interface {
	// Get unmarshals the value for key into out. Returns false (and no
	// error) when the key does not exist.
	Get(ctx context.Context, key string, out interface{}) (bool, error)

	// Set marshals value and writes it under key.
	Set(ctx context.Context, key string, value interface{}) error

	// Delete removes key, reporting how many entries were removed (0 or 1).
	Delete(ctx context.Context, key string) (int, error)

	// Keys returns all keys matching pattern, in the backend's listing
	// order. Pattern supports a single "*" wildcard.
	Keys(ctx context.Context, pattern string) ([]string, error)
}

// splitPattern splits a pattern on its single "*" wildcard. ok is false
// when the pattern contains no wildcard (exact-match enumeration).
func splitPattern(pattern string) (prefix, suffix string, ok bool, err error) {
	switch strings.Count(pattern, "*") {
	case 0:
		return pattern, "", false, nil
	case 1:
		i := strings.IndexByte(pattern, '*')
		return pattern[:i], pattern[i+1:], true, nil
	default:
		return "", "", false, fmt.Errorf("kv: pattern %q has more than one wildcard", pattern)
	}
}

// matchRest reports whether the part of key after prefix satisfies suffix.
func matchRest(key, prefix, suffix string) bool {
	rest := key[len(prefix):]
	if suffix == "" {
		return true
	}
	return len(rest) >= len(suffix) && strings.HasSuffix(rest, suffix)
}
