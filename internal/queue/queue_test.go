package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/redscout/redscout/internal/storage/kv"
	"github.com/redscout/redscout/pkg/log"
)

func newTestQueue(t *testing.T, opts Options) (*Queue, *kv.MemoryStore) {
	t.Helper()
	store := kv.NewMemoryStore()
	logger := log.NewLogger(log.WithLevel(log.ErrorLevel))
	return New(store, logger, opts), store
}

func payloads(ids ...string) []Payload {
	out := make([]Payload, 0, len(ids))
	for _, id := range ids {
		out = append(out, Payload{ID: id, Title: "t-" + id, Body: "b-" + id})
	}
	return out
}

func TestEnqueueWritesPendingItemsAndStats(t *testing.T) {
	q, _ := newTestQueue(t, Options{})
	ctx := context.Background()

	res, err := q.Enqueue(ctx, payloads("a", "b", "c"), "golang")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if res.Count != 3 || len(res.Keys) != 3 {
		t.Fatalf("result: %+v", res)
	}

	stats, err := q.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 3 || stats.Pending != 3 {
		t.Fatalf("stats: %+v", stats)
	}

	for _, key := range res.Keys {
		var item Item
		found, err := q.store.Get(ctx, key, &item)
		if err != nil || !found {
			t.Fatalf("item %s: found=%v err=%v", key, found, err)
		}
		if item.Status != StatusPending {
			t.Fatalf("status: %s", item.Status)
		}
		if item.Keyword != "golang" {
			t.Fatalf("keyword: %s", item.Keyword)
		}
		if item.CreatedAtMs == 0 {
			t.Fatalf("createdAt unset")
		}
	}
}

func TestEnqueueValidation(t *testing.T) {
	q, _ := newTestQueue(t, Options{})
	ctx := context.Background()

	if _, err := q.Enqueue(ctx, nil, "golang"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("empty batch: %v", err)
	}
	if _, err := q.Enqueue(ctx, payloads("a"), ""); !errors.Is(err, ErrInvalid) {
		t.Fatalf("missing keyword: %v", err)
	}
	if _, err := q.Enqueue(ctx, []Payload{{Title: "no id"}}, "golang"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("missing id: %v", err)
	}
	// same id twice in one batch would collapse onto one key
	if _, err := q.Enqueue(ctx, payloads("dup", "dup"), "golang"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("duplicate id in batch: %v", err)
	}

	// validation failures leave no state behind
	stats, _ := q.Stats(ctx)
	if stats.Total != 0 {
		t.Fatalf("stats mutated: %+v", stats)
	}
	keys, _ := q.store.Keys(ctx, itemPattern())
	if len(keys) != 0 {
		t.Fatalf("items written by rejected batch: %v", keys)
	}
}

func TestEnqueueSameIDAcrossBatchesCreatesTwoItems(t *testing.T) {
	q, _ := newTestQueue(t, Options{})
	ctx := context.Background()

	r1, _ := q.Enqueue(ctx, payloads("dup"), "golang")
	r2, _ := q.Enqueue(ctx, payloads("dup"), "golang")
	if r1.Keys[0] == r2.Keys[0] {
		t.Fatalf("expected distinct keys, got %s twice", r1.Keys[0])
	}
	stats, _ := q.Stats(ctx)
	if stats.Total != 2 || stats.Pending != 2 {
		t.Fatalf("stats: %+v", stats)
	}
}

func TestClaimNextEmptyQueueReturnsNoWork(t *testing.T) {
	q, _ := newTestQueue(t, Options{})
	item, err := q.ClaimNext(context.Background(), "w1")
	if err != nil {
		t.Fatalf("claim on empty queue errored: %v", err)
	}
	if item != nil {
		t.Fatalf("expected no work, got %+v", item)
	}
}

func TestClaimNextLeasesFirstPending(t *testing.T) {
	q, _ := newTestQueue(t, Options{})
	ctx := context.Background()
	res, _ := q.Enqueue(ctx, payloads("a", "b"), "golang")

	item, err := q.ClaimNext(ctx, "w1")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if item == nil {
		t.Fatalf("expected work")
	}
	if item.Status != StatusLeased || item.LeaseHolder != "w1" {
		t.Fatalf("lease fields: %+v", item)
	}
	if item.LeaseStartedAtMs == 0 {
		t.Fatalf("lease start unset")
	}
	if item.Key != res.Keys[0] {
		t.Fatalf("expected first listed key %s, got %s", res.Keys[0], item.Key)
	}

	// marker exists for the holder
	markers, err := q.ActiveLeases(ctx)
	if err != nil {
		t.Fatalf("leases: %v", err)
	}
	if len(markers) != 1 || markers[0].WorkerID != "w1" || markers[0].ItemKey != item.Key {
		t.Fatalf("markers: %+v", markers)
	}

	stats, _ := q.Stats(ctx)
	if stats.Pending != 1 || stats.Processing != 1 {
		t.Fatalf("stats: %+v", stats)
	}
}

func TestClaimNextNeverHandsOutSameItemTwice(t *testing.T) {
	q, _ := newTestQueue(t, Options{})
	ctx := context.Background()
	_, _ = q.Enqueue(ctx, payloads("a", "b"), "golang")

	first, _ := q.ClaimNext(ctx, "w1")
	second, _ := q.ClaimNext(ctx, "w2")
	if first == nil || second == nil {
		t.Fatalf("expected two items")
	}
	if first.Key == second.Key {
		t.Fatalf("double lease of %s", first.Key)
	}
	third, err := q.ClaimNext(ctx, "w3")
	if err != nil || third != nil {
		t.Fatalf("expected no work after all leased, got %+v err=%v", third, err)
	}
}

func TestClaimNextDefaultsWorkerID(t *testing.T) {
	q, _ := newTestQueue(t, Options{})
	ctx := context.Background()
	_, _ = q.Enqueue(ctx, payloads("a"), "golang")

	item, err := q.ClaimNext(ctx, "")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if item.LeaseHolder != DefaultWorkerID {
		t.Fatalf("holder: %s", item.LeaseHolder)
	}
}

func TestSubmitResultCompletesItem(t *testing.T) {
	q, _ := newTestQueue(t, Options{})
	ctx := context.Background()
	_, _ = q.Enqueue(ctx, payloads("a"), "golang")
	item, _ := q.ClaimNext(ctx, "w1")

	verdict := Result{Relevant: true, Reasoning: "mentions goroutines", Confidence: 0.9}
	done, err := q.SubmitResult(ctx, item.Key, verdict, "w1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if done.Status != StatusCompleted || done.Result == nil || !done.Result.Relevant {
		t.Fatalf("completed item: %+v", done)
	}
	if done.LeaseHolder != "" || done.LeaseStartedAtMs != 0 {
		t.Fatalf("lease fields not cleared: %+v", done)
	}
	if done.CompletedAtMs == 0 {
		t.Fatalf("completedAt unset")
	}

	rec, err := q.Result(ctx, "a")
	if err != nil {
		t.Fatalf("result record: %v", err)
	}
	if !rec.Relevant || rec.Confidence != 0.9 || rec.Keyword != "golang" {
		t.Fatalf("record: %+v", rec)
	}

	markers, _ := q.ActiveLeases(ctx)
	if len(markers) != 0 {
		t.Fatalf("marker not removed: %+v", markers)
	}

	stats, _ := q.Stats(ctx)
	if stats.Processing != 0 || stats.Completed != 1 {
		t.Fatalf("stats: %+v", stats)
	}
}

func TestSubmitResultUnknownKey(t *testing.T) {
	q, _ := newTestQueue(t, Options{})
	ctx := context.Background()
	_, _ = q.Enqueue(ctx, payloads("a"), "golang")
	before, _ := q.Stats(ctx)

	_, err := q.SubmitResult(ctx, "q/item/ffffffffffffffffffffffffffffffff/nope", Result{Confidence: 0.5}, "w1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	after, _ := q.Stats(ctx)
	if after != before {
		t.Fatalf("stats changed: %+v -> %+v", before, after)
	}
}

func TestSubmitResultLeaseConflict(t *testing.T) {
	q, _ := newTestQueue(t, Options{})
	ctx := context.Background()
	res, _ := q.Enqueue(ctx, payloads("a"), "golang")
	before, _ := q.Stats(ctx)

	// pending item: nobody holds a lease
	if _, err := q.SubmitResult(ctx, res.Keys[0], Result{Confidence: 0.5}, "w1"); !errors.Is(err, ErrLeaseConflict) {
		t.Fatalf("pending item: %v", err)
	}

	item, _ := q.ClaimNext(ctx, "w1")
	// wrong worker
	if _, err := q.SubmitResult(ctx, item.Key, Result{Confidence: 0.5}, "w2"); !errors.Is(err, ErrLeaseConflict) {
		t.Fatalf("wrong worker: %v", err)
	}
	after, _ := q.Stats(ctx)
	if after.Completed != before.Completed {
		t.Fatalf("rejected submit touched stats: %+v", after)
	}

	// rightful holder still succeeds afterwards
	if _, err := q.SubmitResult(ctx, item.Key, Result{Confidence: 0.5}, "w1"); err != nil {
		t.Fatalf("holder submit: %v", err)
	}
	// duplicate submit from the same worker now conflicts (item completed)
	if _, err := q.SubmitResult(ctx, item.Key, Result{Confidence: 0.5}, "w1"); !errors.Is(err, ErrLeaseConflict) {
		t.Fatalf("duplicate submit: %v", err)
	}
}

func TestSubmitResultValidation(t *testing.T) {
	q, _ := newTestQueue(t, Options{})
	ctx := context.Background()

	if _, err := q.SubmitResult(ctx, "", Result{Confidence: 0.5}, "w1"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("missing key: %v", err)
	}
	if _, err := q.SubmitResult(ctx, "q/item/x/y", Result{Confidence: 1.5}, "w1"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("confidence out of range: %v", err)
	}
}

func TestResultSurvivesCompletion(t *testing.T) {
	q, _ := newTestQueue(t, Options{})
	ctx := context.Background()
	_, _ = q.Enqueue(ctx, payloads("a"), "golang")
	item, _ := q.ClaimNext(ctx, "w1")
	_, _ = q.SubmitResult(ctx, item.Key, Result{Relevant: false, Reasoning: "off topic", Confidence: 0.2}, "w1")

	// purge everything, then the verdict must still resolve
	if _, err := q.Cleanup(ctx, 0); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	rec, err := q.Result(ctx, "a")
	if err != nil {
		t.Fatalf("result after cleanup: %v", err)
	}
	if rec.Relevant {
		t.Fatalf("record: %+v", rec)
	}
}

func TestEndToEndScenario(t *testing.T) {
	q, _ := newTestQueue(t, Options{})
	ctx := context.Background()

	res, err := q.Enqueue(ctx, payloads("p1", "p2"), "javascript")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if res.Count != 2 {
		t.Fatalf("count: %d", res.Count)
	}

	item, err := q.ClaimNext(ctx, "w1")
	if err != nil || item == nil {
		t.Fatalf("claim: %+v err=%v", item, err)
	}
	if item.Status != StatusLeased {
		t.Fatalf("status: %s", item.Status)
	}

	if _, err := q.SubmitResult(ctx, item.Key, Result{Relevant: true, Reasoning: "x", Confidence: 0.9}, "w1"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	stats, _ := q.Stats(ctx)
	if stats.Pending != 1 || stats.Completed != 1 {
		t.Fatalf("stats: %+v", stats)
	}
	rec, err := q.Result(ctx, item.PostID)
	if err != nil || !rec.Relevant {
		t.Fatalf("record: %+v err=%v", rec, err)
	}
}
