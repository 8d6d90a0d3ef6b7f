// Package poller drives the ingest cycle: fetch posts per keyword, drop
// the ones already seen, persist the rest, and hand them to the queue.
package poller

import (
	"context"
	"time"

	"github.com/redscout/redscout/internal/keywords"
	"github.com/redscout/redscout/internal/queue"
	"github.com/redscout/redscout/internal/reddit"
	"github.com/redscout/redscout/internal/storage/kv"
	"github.com/redscout/redscout/pkg/log"
)

const (
	seenPrefix = "seen/"
	postPrefix = "post/"
)

// Fetcher fetches posts for a keyword.
type Fetcher interface {
	Search(ctx context.Context, keyword string, limit int) ([]reddit.Post, error)
}

// Enqueuer accepts a batch of posts for classification.
type Enqueuer interface {
	Enqueue(ctx context.Context, payloads []queue.Payload, keyword string) (queue.EnqueueResult, error)
}

// seenMarker records when a post id was first observed.
type seenMarker struct {
	PostID   string `json:"postId"`
	SeenAtMs int64  `json:"seenAtMs"`
}

// storedPost is the durable copy of a fetched post, annotated with the
// keyword that surfaced it.
type storedPost struct {
	reddit.Post
	Keyword     string `json:"keyword"`
	FetchedAtMs int64  `json:"fetchedAtMs"`
}

// Poller polls all registered keywords on a fixed interval.
type Poller struct {
	store    kv.Store
	registry *keywords.Registry
	fetcher  Fetcher
	enqueuer Enqueuer
	logger   log.Logger

	fetchLimit int
}

// New constructs a Poller.
func New(store kv.Store, registry *keywords.Registry, fetcher Fetcher, enqueuer Enqueuer, fetchLimit int, logger log.Logger) *Poller {
	if logger == nil {
		logger = log.NewLogger(log.WithLevel(log.InfoLevel))
	}
	if fetchLimit <= 0 {
		fetchLimit = 25
	}
	return &Poller{
		store:      store,
		registry:   registry,
		fetcher:    fetcher,
		enqueuer:   enqueuer,
		logger:     logger.WithComponent("poller"),
		fetchLimit: fetchLimit,
	}
}

// PollOnce runs one full cycle over every registered keyword and returns
// the number of newly enqueued posts. Per-keyword failures are logged and
// skipped; the cycle itself only fails on registry or store errors.
func (p *Poller) PollOnce(ctx context.Context) (int, error) {
	kws, err := p.registry.List(ctx)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, kw := range kws {
		n, err := p.pollKeyword(ctx, kw.Name)
		if err != nil {
			p.logger.Warn("keyword poll failed", log.Str("keyword", kw.Name), log.Err(err))
			continue
		}
		total += n
	}
	if total > 0 {
		p.logger.Info("poll cycle enqueued posts", log.Int("count", total))
	}
	return total, nil
}

func (p *Poller) pollKeyword(ctx context.Context, keyword string) (int, error) {
	posts, err := p.fetcher.Search(ctx, keyword, p.fetchLimit)
	if err != nil {
		return 0, err
	}

	now := time.Now().UnixMilli()
	fresh := make([]queue.Payload, 0, len(posts))
	for _, post := range posts {
		var seen seenMarker
		found, err := p.store.Get(ctx, seenPrefix+post.ID, &seen)
		if err != nil {
			return 0, err
		}
		if found {
			continue
		}
		if err := p.store.Set(ctx, postPrefix+post.ID, storedPost{Post: post, Keyword: keyword, FetchedAtMs: now}); err != nil {
			return 0, err
		}
		if err := p.store.Set(ctx, seenPrefix+post.ID, seenMarker{PostID: post.ID, SeenAtMs: now}); err != nil {
			return 0, err
		}
		fresh = append(fresh, queue.Payload{ID: post.ID, Title: post.Title, Body: post.Body})
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	res, err := p.enqueuer.Enqueue(ctx, fresh, keyword)
	if err != nil {
		return 0, err
	}
	p.logger.Debug("enqueued new posts", log.Str("keyword", keyword), log.Int("count", res.Count))
	return res.Count, nil
}

// Run polls on the given interval until ctx is cancelled.
func (p *Poller) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.PollOnce(ctx); err != nil {
				p.logger.Error("poll cycle failed", log.Err(err))
			}
		}
	}
}
