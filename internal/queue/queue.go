package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redscout/redscout/internal/storage/kv"
	"github.com/redscout/redscout/pkg/id"
	"github.com/redscout/redscout/pkg/log"
)

// DefaultWorkerID is used when a claim or submit arrives without an
// explicit worker identity.
const DefaultWorkerID = "default-worker"

// Options tunes queue behavior.
type Options struct {
	// MaxAttempts dead-letters an item (status failed) once it has been
	// stuck-reset this many times. 0 disables dead-lettering.
	MaxAttempts int
}

// Queue is the classification work queue. All state lives in the injected
// kv.Store; the queue caches nothing across calls.
type Queue struct {
	store       kv.Store
	gen         *id.Generator
	logger      log.Logger
	maxAttempts int

	// claimMu serializes scan-and-lease so two claims cannot both observe
	// the same item as pending. See package doc.
	claimMu sync.Mutex

	sweepMu   sync.Mutex
	sweepStop chan struct{}
}

// New constructs a Queue over the given store.
func New(store kv.Store, logger log.Logger, opts Options) *Queue {
	if logger == nil {
		logger = log.NewLogger(log.WithLevel(log.InfoLevel))
	}
	return &Queue{
		store:       store,
		gen:         id.NewGenerator(),
		logger:      logger.WithComponent("queue"),
		maxAttempts: opts.MaxAttempts,
	}
}

// EnqueueResult reports what Enqueue wrote.
type EnqueueResult struct {
	Count int      `json:"count"`
	Keys  []string `json:"keys"`
}

// Enqueue writes one pending item per payload under a shared batch stamp
// and bumps the aggregate counters. Post ids must be unique within the
// batch (they share the stamp, so a repeat would collapse onto one key);
// re-enqueueing an id from an earlier batch creates a second, independent
// item, and dedup across batches is the caller's job. The item writes and
// the stats write are not atomic: a crash mid-batch leaves a partial
// batch with stats lagging (stats are advisory).
func (q *Queue) Enqueue(ctx context.Context, payloads []Payload, keyword string) (EnqueueResult, error) {
	if len(payloads) == 0 {
		return EnqueueResult{}, fmt.Errorf("%w: empty batch", ErrInvalid)
	}
	if keyword == "" {
		return EnqueueResult{}, fmt.Errorf("%w: missing keyword", ErrInvalid)
	}
	seen := make(map[string]struct{}, len(payloads))
	for i, p := range payloads {
		if p.ID == "" {
			return EnqueueResult{}, fmt.Errorf("%w: payload %d has no id", ErrInvalid, i)
		}
		if _, dup := seen[p.ID]; dup {
			return EnqueueResult{}, fmt.Errorf("%w: duplicate post id %q in batch", ErrInvalid, p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	stamp := q.gen.Next()
	now := stamp.Ms()
	keys := make([]string, 0, len(payloads))
	for _, p := range payloads {
		key := itemKey(stamp, p.ID)
		item := Item{
			Key:         key,
			PostID:      p.ID,
			Title:       p.Title,
			Body:        p.Body,
			Keyword:     keyword,
			Status:      StatusPending,
			CreatedAtMs: now,
		}
		if err := q.store.Set(ctx, key, item); err != nil {
			return EnqueueResult{}, err
		}
		keys = append(keys, key)
	}

	if err := q.mutateStats(ctx, func(s *Stats) {
		s.Total += len(keys)
		s.Pending += len(keys)
	}); err != nil {
		return EnqueueResult{}, err
	}

	q.logger.Debug("enqueued batch",
		log.Str("keyword", keyword),
		log.Int("count", len(keys)),
	)
	return EnqueueResult{Count: len(keys), Keys: keys}, nil
}

// ClaimNext leases the first pending item to workerID and returns it, or
// nil when nothing is pending. Enumeration follows the store's key listing;
// with sortable stamps that is effectively oldest-first, but callers must
// not rely on strict FIFO.
func (q *Queue) ClaimNext(ctx context.Context, workerID string) (*Item, error) {
	if workerID == "" {
		workerID = DefaultWorkerID
	}

	q.claimMu.Lock()
	defer q.claimMu.Unlock()

	keys, err := q.store.Keys(ctx, itemPattern())
	if err != nil {
		return nil, err
	}
	for _, key := range keys {
		var item Item
		found, err := q.store.Get(ctx, key, &item)
		if err != nil {
			return nil, err
		}
		if !found || item.Status != StatusPending {
			continue
		}

		now := time.Now().UnixMilli()
		item.Status = StatusLeased
		item.LeaseHolder = workerID
		item.LeaseStartedAtMs = now
		if err := q.store.Set(ctx, key, item); err != nil {
			return nil, err
		}
		marker := LeaseMarker{
			WorkerID:         workerID,
			PostID:           item.PostID,
			ItemKey:          key,
			Keyword:          item.Keyword,
			LeaseStartedAtMs: now,
		}
		if err := q.store.Set(ctx, leaseKey(workerID, item.PostID), marker); err != nil {
			return nil, err
		}
		if err := q.mutateStats(ctx, func(s *Stats) {
			s.Pending--
			s.Processing++
		}); err != nil {
			return nil, err
		}

		q.logger.Debug("claimed item",
			log.Str("key", key),
			log.Str("worker", workerID),
		)
		return &item, nil
	}
	return nil, nil
}

// SubmitResult completes the leased item under key with the worker's
// verdict. The submitting worker must hold the lease: a stale submit (item
// reset, reclaimed, or already completed) fails with ErrLeaseConflict and
// mutates nothing.
func (q *Queue) SubmitResult(ctx context.Context, key string, res Result, workerID string) (*Item, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: missing key", ErrInvalid)
	}
	if res.Confidence < 0 || res.Confidence > 1 {
		return nil, fmt.Errorf("%w: confidence %v outside [0,1]", ErrInvalid, res.Confidence)
	}
	if workerID == "" {
		workerID = DefaultWorkerID
	}

	var item Item
	found, err := q.store.Get(ctx, key, &item)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if item.Status != StatusLeased || item.LeaseHolder != workerID {
		return nil, fmt.Errorf("%w: item %s held by %q, submitted by %q in status %s",
			ErrLeaseConflict, key, item.LeaseHolder, workerID, item.Status)
	}

	holder := item.LeaseHolder
	now := time.Now().UnixMilli()
	item.Status = StatusCompleted
	item.Result = &res
	item.CompletedAtMs = now
	item.LeaseHolder = ""
	item.LeaseStartedAtMs = 0
	if err := q.store.Set(ctx, key, item); err != nil {
		return nil, err
	}

	record := ResultRecord{
		PostID:        item.PostID,
		Keyword:       item.Keyword,
		Relevant:      res.Relevant,
		Reasoning:     res.Reasoning,
		Confidence:    res.Confidence,
		CompletedAtMs: now,
	}
	if err := q.store.Set(ctx, resultKey(item.PostID), record); err != nil {
		return nil, err
	}
	if _, err := q.store.Delete(ctx, leaseKey(holder, item.PostID)); err != nil {
		return nil, err
	}
	if err := q.mutateStats(ctx, func(s *Stats) {
		s.Processing--
		s.Completed++
	}); err != nil {
		return nil, err
	}

	q.logger.Debug("completed item",
		log.Str("key", key),
		log.Str("worker", workerID),
		log.Bool("relevant", res.Relevant),
	)
	return &item, nil
}

// Result returns the durable verdict for a post id, if any.
func (q *Queue) Result(ctx context.Context, postID string) (*ResultRecord, error) {
	var rec ResultRecord
	found, err := q.store.Get(ctx, resultKey(postID), &rec)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: result for %s", ErrNotFound, postID)
	}
	return &rec, nil
}

// Stats returns the aggregate counters (zeros when never written).
func (q *Queue) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	if _, err := q.store.Get(ctx, statsKey, &s); err != nil {
		return Stats{}, err
	}
	return s, nil
}

// ActiveLeases lists lease markers for all workers.
func (q *Queue) ActiveLeases(ctx context.Context) ([]LeaseMarker, error) {
	keys, err := q.store.Keys(ctx, leasePattern())
	if err != nil {
		return nil, err
	}
	markers := make([]LeaseMarker, 0, len(keys))
	for _, k := range keys {
		var m LeaseMarker
		found, err := q.store.Get(ctx, k, &m)
		if err != nil {
			return nil, err
		}
		if found {
			markers = append(markers, m)
		}
	}
	return markers, nil
}

// mutateStats applies fn to the counters record with floor clamping. The
// read-modify-write is not atomic with the item writes around it; counters
// are advisory by design.
func (q *Queue) mutateStats(ctx context.Context, fn func(*Stats)) error {
	var s Stats
	if _, err := q.store.Get(ctx, statsKey, &s); err != nil {
		return err
	}
	fn(&s)
	if s.Pending < 0 {
		s.Pending = 0
	}
	if s.Processing < 0 {
		s.Processing = 0
	}
	return q.store.Set(ctx, statsKey, s)
}
