// Package keywords stores the monitored search terms. Each keyword is a
// record under kw/{name}; the poller enumerates them on every cycle.
package keywords

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redscout/redscout/internal/storage/kv"
)

// ErrInvalid marks a keyword that cannot be stored.
var ErrInvalid = errors.New("invalid keyword")

const keyPrefix = "kw/"

// Keyword is a monitored search term.
type Keyword struct {
	Name        string `json:"name"`
	CreatedAtMs int64  `json:"createdAtMs"`
}

// Registry manages keywords in the shared store.
type Registry struct {
	store kv.Store
}

// NewRegistry constructs a Registry over the given store.
func NewRegistry(store kv.Store) *Registry {
	return &Registry{store: store}
}

func keywordKey(name string) string { return keyPrefix + name }

// Normalize lowercases and trims a raw keyword. Keywords are matched
// case-insensitively, so the stored form is the canonical one.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func validate(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalid)
	}
	if strings.ContainsAny(name, "/*") {
		return fmt.Errorf("%w: %q contains reserved characters", ErrInvalid, name)
	}
	return nil
}

// Add stores a keyword, normalizing it first. Adding an existing keyword
// is a no-op that keeps the original creation time.
func (r *Registry) Add(ctx context.Context, raw string) (Keyword, error) {
	name := Normalize(raw)
	if err := validate(name); err != nil {
		return Keyword{}, err
	}
	var existing Keyword
	found, err := r.store.Get(ctx, keywordKey(name), &existing)
	if err != nil {
		return Keyword{}, err
	}
	if found {
		return existing, nil
	}
	kw := Keyword{Name: name, CreatedAtMs: time.Now().UnixMilli()}
	if err := r.store.Set(ctx, keywordKey(name), kw); err != nil {
		return Keyword{}, err
	}
	return kw, nil
}

// List returns all keywords sorted by name.
func (r *Registry) List(ctx context.Context) ([]Keyword, error) {
	keys, err := r.store.Keys(ctx, keyPrefix+"*")
	if err != nil {
		return nil, err
	}
	out := make([]Keyword, 0, len(keys))
	for _, k := range keys {
		var kw Keyword
		found, err := r.store.Get(ctx, k, &kw)
		if err != nil {
			return nil, err
		}
		if found {
			out = append(out, kw)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Remove deletes a keyword. Returns true when something was deleted.
func (r *Registry) Remove(ctx context.Context, raw string) (bool, error) {
	name := Normalize(raw)
	if err := validate(name); err != nil {
		return false, err
	}
	n, err := r.store.Delete(ctx, keywordKey(name))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
