package queue

import "errors"

// Status is the lifecycle state of a queue item.
type Status string

const (
	// StatusPending marks an item eligible for leasing.
	StatusPending Status = "pending"
	// StatusLeased marks an item owned by a worker.
	StatusLeased Status = "leased"
	// StatusCompleted marks an item with a submitted result. Terminal.
	StatusCompleted Status = "completed"
	// StatusFailed marks an item that exhausted its attempt budget without
	// a result. Terminal; retained for inspection.
	StatusFailed Status = "failed"
)

// Sentinel errors surfaced by queue operations.
var (
	ErrInvalid       = errors.New("invalid input")
	ErrNotFound      = errors.New("queue item not found")
	ErrLeaseConflict = errors.New("lease conflict")
)

// Payload is one candidate unit of work handed to Enqueue. The queue
// carries Title and Body through opaquely.
type Payload struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Item is one unit of work and its full lifecycle state.
type Item struct {
	Key     string `json:"key"`
	PostID  string `json:"postId"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	Keyword string `json:"keyword"`

	Status   Status `json:"status"`
	Attempts int    `json:"attempts"`

	LeaseHolder      string `json:"leaseHolder,omitempty"`
	LeaseStartedAtMs int64  `json:"leaseStartedAtMs,omitempty"`

	CreatedAtMs   int64   `json:"createdAtMs"`
	CompletedAtMs int64   `json:"completedAtMs,omitempty"`
	Result        *Result `json:"result,omitempty"`
}

// Result is a classifier verdict for one item. A result always completes
// its item; classification failure is expressed inside the payload (e.g.
// relevant=false with low confidence), never as a queue status.
type Result struct {
	Relevant   bool    `json:"relevant"`
	Reasoning  string  `json:"reasoning"`
	Confidence float64 `json:"confidence"`
}

// ResultRecord is the durable verdict keyed by post id. It survives item
// pruning so "what was the verdict for post X" stays answerable.
type ResultRecord struct {
	PostID        string  `json:"postId"`
	Keyword       string  `json:"keyword"`
	Relevant      bool    `json:"relevant"`
	Reasoning     string  `json:"reasoning"`
	Confidence    float64 `json:"confidence"`
	CompletedAtMs int64   `json:"completedAtMs"`
}

// LeaseMarker indexes an active lease by worker, letting status reporting
// enumerate in-flight work without scanning every item.
type LeaseMarker struct {
	WorkerID         string `json:"workerId"`
	PostID           string `json:"postId"`
	ItemKey          string `json:"itemKey"`
	Keyword          string `json:"keyword"`
	LeaseStartedAtMs int64  `json:"leaseStartedAtMs"`
}

// Stats is the aggregate counters record. Maintained by increment and
// decrement (floor-clamped), not recomputed, so drift under crashes is
// possible and accepted; treat as advisory.
type Stats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
}
