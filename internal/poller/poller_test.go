package poller

import (
	"context"
	"errors"
	"testing"

	"github.com/redscout/redscout/internal/keywords"
	"github.com/redscout/redscout/internal/queue"
	"github.com/redscout/redscout/internal/reddit"
	"github.com/redscout/redscout/internal/storage/kv"
	"github.com/redscout/redscout/pkg/log"
)

type fakeFetcher struct {
	posts map[string][]reddit.Post
	errs  map[string]error
	calls int
}

func (f *fakeFetcher) Search(ctx context.Context, keyword string, limit int) ([]reddit.Post, error) {
	f.calls++
	if err := f.errs[keyword]; err != nil {
		return nil, err
	}
	return f.posts[keyword], nil
}

func newTestPoller(t *testing.T, fetcher Fetcher) (*Poller, *queue.Queue, kv.Store, *keywords.Registry) {
	t.Helper()
	store := kv.NewMemoryStore()
	registry := keywords.NewRegistry(store)
	logger := log.NewLogger(log.WithLevel(log.ErrorLevel))
	q := queue.New(store, logger, queue.Options{})
	return New(store, registry, fetcher, q, 25, logger), q, store, registry
}

func TestPollOnceEnqueuesNewPosts(t *testing.T) {
	fetcher := &fakeFetcher{posts: map[string][]reddit.Post{
		"golang": {
			{ID: "p1", Title: "goroutines", Body: "question"},
			{ID: "p2", Title: "generics", Body: ""},
		},
	}}
	p, q, store, registry := newTestPoller(t, fetcher)
	ctx := context.Background()
	_, _ = registry.Add(ctx, "golang")

	n, err := p.PollOnce(ctx)
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if n != 2 {
		t.Fatalf("enqueued: %d", n)
	}

	stats, _ := q.Stats(ctx)
	if stats.Pending != 2 {
		t.Fatalf("stats: %+v", stats)
	}

	var sp storedPost
	found, _ := store.Get(ctx, "post/p1", &sp)
	if !found || sp.Keyword != "golang" || sp.Title != "goroutines" {
		t.Fatalf("stored post: found=%v %+v", found, sp)
	}
	var seen seenMarker
	if found, _ = store.Get(ctx, "seen/p1", &seen); !found {
		t.Fatalf("seen marker missing")
	}
}

func TestPollOnceSkipsSeenPosts(t *testing.T) {
	fetcher := &fakeFetcher{posts: map[string][]reddit.Post{
		"golang": {{ID: "p1", Title: "t"}},
	}}
	p, q, _, registry := newTestPoller(t, fetcher)
	ctx := context.Background()
	_, _ = registry.Add(ctx, "golang")

	if n, _ := p.PollOnce(ctx); n != 1 {
		t.Fatalf("first cycle: %d", n)
	}
	if n, _ := p.PollOnce(ctx); n != 0 {
		t.Fatalf("second cycle re-enqueued: %d", n)
	}
	stats, _ := q.Stats(ctx)
	if stats.Total != 1 {
		t.Fatalf("stats: %+v", stats)
	}
}

func TestPollOnceContinuesPastKeywordErrors(t *testing.T) {
	fetcher := &fakeFetcher{
		posts: map[string][]reddit.Post{"rust": {{ID: "r1", Title: "t"}}},
		errs:  map[string]error{"golang": errors.New("rate limited")},
	}
	p, _, _, registry := newTestPoller(t, fetcher)
	ctx := context.Background()
	_, _ = registry.Add(ctx, "golang")
	_, _ = registry.Add(ctx, "rust")

	n, err := p.PollOnce(ctx)
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if n != 1 {
		t.Fatalf("enqueued: %d", n)
	}
	if fetcher.calls != 2 {
		t.Fatalf("fetch calls: %d", fetcher.calls)
	}
}

func TestPollOnceNoKeywords(t *testing.T) {
	p, _, _, _ := newTestPoller(t, &fakeFetcher{})
	n, err := p.PollOnce(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("empty registry: n=%d err=%v", n, err)
	}
}

func TestSeenDedupAcrossKeywords(t *testing.T) {
	// same post surfaces under two keywords; only the first wins
	fetcher := &fakeFetcher{posts: map[string][]reddit.Post{
		"golang": {{ID: "shared", Title: "t"}},
		"rust":   {{ID: "shared", Title: "t"}},
	}}
	p, q, _, registry := newTestPoller(t, fetcher)
	ctx := context.Background()
	_, _ = registry.Add(ctx, "golang")
	_, _ = registry.Add(ctx, "rust")

	if n, _ := p.PollOnce(ctx); n != 1 {
		t.Fatalf("enqueued: %d", n)
	}
	stats, _ := q.Stats(ctx)
	if stats.Total != 1 {
		t.Fatalf("stats: %+v", stats)
	}
}
