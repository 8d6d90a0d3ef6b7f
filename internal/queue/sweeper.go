package queue

import (
	"context"
	"math/rand"
	"time"

	"github.com/redscout/redscout/pkg/log"
)

// ResetStuck returns leased items whose lease is older than timeout to the
// pending state, clearing lease fields and markers so another worker can
// retry under the same key. Each reset increments the item's attempt
// counter; once the counter reaches MaxAttempts the item is dead-lettered
// as failed instead. Returns how many items were transitioned.
func (q *Queue) ResetStuck(ctx context.Context, timeout time.Duration) (int, error) {
	now := time.Now().UnixMilli()
	cutoff := timeout.Milliseconds()

	keys, err := q.store.Keys(ctx, itemPattern())
	if err != nil {
		return 0, err
	}

	reset, failed := 0, 0
	for _, key := range keys {
		var item Item
		found, err := q.store.Get(ctx, key, &item)
		if err != nil {
			return reset + failed, err
		}
		if !found || item.Status != StatusLeased {
			continue
		}
		if now-item.LeaseStartedAtMs < cutoff {
			continue
		}

		holder := item.LeaseHolder
		item.Attempts++
		item.LeaseHolder = ""
		item.LeaseStartedAtMs = 0
		deadLetter := q.maxAttempts > 0 && item.Attempts >= q.maxAttempts
		if deadLetter {
			item.Status = StatusFailed
		} else {
			item.Status = StatusPending
		}
		if err := q.store.Set(ctx, key, item); err != nil {
			return reset + failed, err
		}
		if holder != "" {
			if _, err := q.store.Delete(ctx, leaseKey(holder, item.PostID)); err != nil {
				return reset + failed, err
			}
		}
		if err := q.mutateStats(ctx, func(s *Stats) {
			s.Processing--
			if deadLetter {
				s.Failed++
			} else {
				s.Pending++
			}
		}); err != nil {
			return reset + failed, err
		}

		if deadLetter {
			failed++
			q.logger.Warn("dead-lettered stuck item",
				log.Str("key", key),
				log.Str("worker", holder),
				log.Int("attempts", item.Attempts),
			)
		} else {
			reset++
			q.logger.Info("reset stuck lease",
				log.Str("key", key),
				log.Str("worker", holder),
				log.Int("attempts", item.Attempts),
			)
		}
	}
	return reset + failed, nil
}

// Cleanup deletes completed items whose embedded creation stamp is at
// least maxAge old, the same age boundary ResetStuck applies to leases.
// Age comes from the key alone; the value is only read to check the
// status. Non-completed items (pending, leased, failed) survive
// regardless of age, as do result records. Returns how many items were
// purged.
func (q *Queue) Cleanup(ctx context.Context, maxAge time.Duration) (int, error) {
	now := time.Now().UnixMilli()
	limit := maxAge.Milliseconds()

	keys, err := q.store.Keys(ctx, itemPattern())
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, key := range keys {
		createdMs, _, err := parseItemKey(key)
		if err != nil {
			q.logger.Warn("skipping unparseable item key", log.Str("key", key), log.Err(err))
			continue
		}
		if now-createdMs < limit {
			continue
		}
		var item Item
		found, err := q.store.Get(ctx, key, &item)
		if err != nil {
			return purged, err
		}
		if !found || item.Status != StatusCompleted {
			continue
		}
		if _, err := q.store.Delete(ctx, key); err != nil {
			return purged, err
		}
		purged++
	}
	if purged > 0 {
		q.logger.Info("purged completed items", log.Int("count", purged))
	}
	return purged, nil
}

// StartSweeper runs both maintenance passes on a background ticker with a
// little jitter, until StopSweeper. An external scheduler can drive the
// same passes over HTTP instead.
func (q *Queue) StartSweeper(interval, leaseTimeout, maxAge time.Duration) {
	q.sweepMu.Lock()
	defer q.sweepMu.Unlock()
	if q.sweepStop != nil {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}
	stop := make(chan struct{})
	q.sweepStop = stop
	go func() {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		for {
			select {
			case <-stop:
				return
			case <-time.After(interval + time.Duration(rng.Int63n(int64(interval/10+1)))):
				if _, err := q.ResetStuck(context.Background(), leaseTimeout); err != nil {
					q.logger.Error("stuck-lease sweep failed", log.Err(err))
				}
				if _, err := q.Cleanup(context.Background(), maxAge); err != nil {
					q.logger.Error("retention sweep failed", log.Err(err))
				}
			}
		}
	}()
}

// StopSweeper stops the background sweeper.
func (q *Queue) StopSweeper() {
	q.sweepMu.Lock()
	defer q.sweepMu.Unlock()
	if q.sweepStop != nil {
		close(q.sweepStop)
		q.sweepStop = nil
	}
}
