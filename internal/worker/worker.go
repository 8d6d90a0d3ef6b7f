// Package worker runs the claim/classify/submit loop. A worker talks to
// the queue through the QueueClient interface, so the same loop runs
// in-process against the queue directly or in a separate process over the
// HTTP transport.
package worker

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/redscout/redscout/internal/classify"
	"github.com/redscout/redscout/internal/queue"
	"github.com/redscout/redscout/pkg/log"
)

// QueueClient is the slice of the queue a worker needs.
type QueueClient interface {
	ClaimNext(ctx context.Context, workerID string) (*queue.Item, error)
	SubmitResult(ctx context.Context, key string, res queue.Result, workerID string) (*queue.Item, error)
}

// Classifier produces a verdict for one post.
type Classifier interface {
	Classify(ctx context.Context, keyword, title, body string) (classify.Verdict, error)
	Ping(ctx context.Context) error
}

// Options tunes a worker loop.
type Options struct {
	// ID identifies this worker in leases. Defaults to a random uuid.
	ID string
	// PollInterval is how long to sleep when the queue is empty.
	PollInterval time.Duration
	// MaxConsecutiveErrors triggers the extended backoff and a classifier
	// health check once this many item attempts fail in a row.
	MaxConsecutiveErrors int
	// Backoff is the extended pause after MaxConsecutiveErrors.
	Backoff time.Duration
}

// Worker claims items, classifies them, and submits verdicts until its
// context is cancelled. Errors never stop the loop; an item whose attempt
// fails stays leased and the sweeper returns it to rotation.
type Worker struct {
	queue      QueueClient
	classifier Classifier
	logger     log.Logger
	opts       Options

	consecutiveErrors int
}

// New constructs a Worker.
func New(q QueueClient, c Classifier, logger log.Logger, opts Options) *Worker {
	if opts.ID == "" {
		opts.ID = "worker-" + uuid.NewString()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	if opts.MaxConsecutiveErrors <= 0 {
		opts.MaxConsecutiveErrors = 5
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 30 * time.Second
	}
	if logger == nil {
		logger = log.NewLogger(log.WithLevel(log.InfoLevel))
	}
	return &Worker{
		queue:      q,
		classifier: c,
		logger:     logger.WithComponent("worker").With(log.Str("worker", opts.ID)),
		opts:       opts,
	}
}

// ID returns the worker's lease identity.
func (w *Worker) ID() string { return w.opts.ID }

// Run processes items until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("worker started")
	for {
		if ctx.Err() != nil {
			w.logger.Info("worker stopped")
			return
		}

		worked, err := w.processOne(ctx)
		switch {
		case err != nil:
			w.consecutiveErrors++
			w.logger.Warn("item attempt failed",
				log.Err(err),
				log.Int("consecutiveErrors", w.consecutiveErrors),
			)
			if w.consecutiveErrors >= w.opts.MaxConsecutiveErrors {
				w.backoff(ctx)
			}
		case worked:
			w.consecutiveErrors = 0
			// brief pause between items so a single worker cannot
			// monopolize the claim mutex
			w.sleep(ctx, 100*time.Millisecond)
		default:
			w.consecutiveErrors = 0
			w.sleep(ctx, w.opts.PollInterval)
		}
	}
}

// processOne claims and finishes at most one item. Returns (false, nil)
// when the queue is empty.
func (w *Worker) processOne(ctx context.Context) (bool, error) {
	item, err := w.queue.ClaimNext(ctx, w.opts.ID)
	if err != nil {
		return false, err
	}
	if item == nil {
		return false, nil
	}

	verdict, err := w.classifier.Classify(ctx, item.Keyword, item.Title, item.Body)
	if err != nil {
		// item stays leased; the sweeper reclaims it
		return false, err
	}

	res := queue.Result{
		Relevant:   verdict.Relevant,
		Reasoning:  verdict.Reasoning,
		Confidence: verdict.Confidence,
	}
	if _, err := w.queue.SubmitResult(ctx, item.Key, res, w.opts.ID); err != nil {
		return false, err
	}

	w.logger.Debug("item classified",
		log.Str("key", item.Key),
		log.Str("keyword", item.Keyword),
		log.Bool("relevant", verdict.Relevant),
	)
	return true, nil
}

// backoff pauses after a run of failures, then waits for the classifier
// to answer a health check before resuming. The error counter resets so a
// single post-backoff failure does not immediately re-trigger it.
func (w *Worker) backoff(ctx context.Context) {
	w.logger.Warn("too many consecutive errors, backing off",
		log.Int("count", w.consecutiveErrors),
	)
	w.sleep(ctx, w.opts.Backoff)
	for ctx.Err() == nil {
		if err := w.classifier.Ping(ctx); err == nil {
			break
		} else {
			w.logger.Warn("classifier still unhealthy", log.Err(err))
		}
		w.sleep(ctx, w.opts.Backoff)
	}
	w.consecutiveErrors = 0
}

func (w *Worker) sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
